package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"predictionScope/internal/model"
)

// NetworkConfig describes one chain endpoint and its deployments.
type NetworkConfig struct {
	Name      string            `mapstructure:"name"`
	RPC       string            `mapstructure:"rpc"`
	BlockTime time.Duration     `mapstructure:"block-time"`
	Contracts map[string]string `mapstructure:"contracts"`
	RPS       float64           `mapstructure:"rps"`
	Burst     int               `mapstructure:"burst"`
	Timeout   time.Duration     `mapstructure:"timeout"`
}

// DefaultNetworks are public endpoints with contracts not yet deployed.
func DefaultNetworks() []NetworkConfig {
	return []NetworkConfig{
		{
			Name:      string(model.CeloMainnet),
			RPC:       "https://forno.celo.org",
			BlockTime: time.Second,
			Contracts: map[string]string{model.ContractMarketCore: "", model.ContractClaims: ""},
			RPS:       10,
			Burst:     5,
			Timeout:   30 * time.Second,
		},
		{
			Name:      string(model.BaseMainnet),
			RPC:       "https://mainnet.base.org",
			BlockTime: 2 * time.Second,
			Contracts: map[string]string{model.ContractMarketCore: "", model.ContractClaims: ""},
			RPS:       10,
			Burst:     5,
			Timeout:   30 * time.Second,
		},
	}
}

// loadNetworks reads the networks list, then applies per-network
// overrides such as celo-rpc or base-market-core.
func loadNetworks(v *viper.Viper) ([]NetworkConfig, error) {
	networks := DefaultNetworks()
	if v.IsSet("networks") {
		var fromFile []NetworkConfig
		if err := v.UnmarshalKey("networks", &fromFile); err != nil {
			return nil, fmt.Errorf("parse networks: %w", err)
		}
		networks = fromFile
	}

	for i := range networks {
		network, err := model.ParseNetwork(networks[i].Name)
		if err != nil {
			return nil, err
		}
		networks[i].Name = string(network)
		if networks[i].Contracts == nil {
			networks[i].Contracts = make(map[string]string)
		}

		alias := networkAlias(network)
		if val := strings.TrimSpace(v.GetString(alias + "-rpc")); val != "" {
			networks[i].RPC = val
		}
		for _, contract := range []string{model.ContractMarketCore, model.ContractClaims} {
			if val := strings.TrimSpace(v.GetString(alias + "-" + contract)); val != "" {
				networks[i].Contracts[contract] = val
			}
		}
		if networks[i].RPC == "" {
			return nil, fmt.Errorf("rpc url is required for %s", network)
		}
		if networks[i].BlockTime <= 0 {
			return nil, fmt.Errorf("block-time must be positive for %s", network)
		}
	}
	return networks, nil
}

func networkAlias(network model.Network) string {
	switch network {
	case model.CeloMainnet:
		return "celo"
	case model.BaseMainnet:
		return "base"
	default:
		return strings.ToLower(string(network))
	}
}
