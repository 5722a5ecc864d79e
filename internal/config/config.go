package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"predictionScope/internal/model"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Networks             []NetworkConfig
	Only                 []string
	Lookback             time.Duration
	LookbackMode         string
	BatchSize            uint64
	MaxRetries           int
	RetryBackoff         time.Duration
	RetryMaxBackoff      time.Duration
	TimestampConcurrency int
	Out                  string
	PGDSN                string
	Timeframe            string
	Top                  int
	User                 string
	Interval             time.Duration
	MetricsAddr          string
	TokenDecimals        int32
	LogLevel             string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("lookback", 21*24*time.Hour)
	v.SetDefault("lookback-mode", "blocks")
	v.SetDefault("batch-size", uint64(5000))
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("retry-max-backoff", 10*time.Second)
	v.SetDefault("timestamp-concurrency", 8)
	v.SetDefault("timeframe", string(model.TimeframeAll))
	v.SetDefault("top", 10)
	v.SetDefault("interval", 5*time.Minute)
	v.SetDefault("token-decimals", 18)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	networks, err := loadNetworks(v)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Networks:             networks,
		Only:                 getStringSlice(v, "network"),
		Lookback:             v.GetDuration("lookback"),
		LookbackMode:         v.GetString("lookback-mode"),
		BatchSize:            v.GetUint64("batch-size"),
		MaxRetries:           v.GetInt("max-retries"),
		RetryBackoff:         v.GetDuration("retry-backoff"),
		RetryMaxBackoff:      v.GetDuration("retry-max-backoff"),
		TimestampConcurrency: v.GetInt("timestamp-concurrency"),
		Out:                  v.GetString("out"),
		PGDSN:                v.GetString("pg-dsn"),
		Timeframe:            v.GetString("timeframe"),
		Top:                  v.GetInt("top"),
		User:                 strings.ToLower(strings.TrimSpace(v.GetString("user"))),
		Interval:             v.GetDuration("interval"),
		MetricsAddr:          v.GetString("metrics-addr"),
		TokenDecimals:        v.GetInt32("token-decimals"),
		LogLevel:             v.GetString("log-level"),
	}

	return cfg, nil
}

// Selected returns the configured networks, narrowed to Only when set.
func (c Config) Selected() ([]NetworkConfig, error) {
	if len(c.Only) == 0 {
		return c.Networks, nil
	}
	want := make(map[model.Network]struct{}, len(c.Only))
	for _, name := range c.Only {
		network, err := model.ParseNetwork(name)
		if err != nil {
			return nil, err
		}
		want[network] = struct{}{}
	}
	out := make([]NetworkConfig, 0, len(want))
	for _, network := range c.Networks {
		parsed, err := model.ParseNetwork(network.Name)
		if err != nil {
			return nil, err
		}
		if _, ok := want[parsed]; ok {
			out = append(out, network)
		}
	}
	return out, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
