package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Prediction market event indexer for Celo and Base",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch recent contract logs from every network",
		RunE:  runFetch,
	}
	addChainFlags(fetchCmd)
	fetchCmd.Flags().String("out", "./data/logs.jsonl", "output JSONL path")
	root.AddCommand(fetchCmd)

	activityCmd := &cobra.Command{
		Use:   "activity",
		Short: "Derive user activities from fetched logs",
		RunE:  runActivity,
	}
	addChainFlags(activityCmd)
	activityCmd.Flags().String("out", "./data/activities.jsonl", "output JSONL path")
	activityCmd.Flags().String("user", "", "only keep activities of this address")
	root.AddCommand(activityCmd)

	leaderboardCmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank users by P&L",
		RunE:  runLeaderboard,
	}
	addChainFlags(leaderboardCmd)
	leaderboardCmd.Flags().String("timeframe", "all", "timeframe (daily, weekly, monthly, all)")
	leaderboardCmd.Flags().Int("top", 10, "rows to print")
	leaderboardCmd.Flags().String("pg-dsn", "", "optional Postgres DSN to persist the snapshot")
	leaderboardCmd.Flags().Int32("token-decimals", 18, "decimals used to display amounts")
	root.AddCommand(leaderboardCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics and rank for one address",
		RunE:  runStats,
	}
	addChainFlags(statsCmd)
	statsCmd.Flags().String("user", "", "wallet address")
	statsCmd.Flags().Int32("token-decimals", 18, "decimals used to display amounts")
	root.AddCommand(statsCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh periodically and report the leaderboard",
		RunE:  runWatch,
	}
	addChainFlags(watchCmd)
	watchCmd.Flags().Duration("interval", 5*time.Minute, "refresh interval")
	watchCmd.Flags().Int("top", 3, "leaderboard rows to log per refresh")
	watchCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9102)")
	watchCmd.Flags().String("pg-dsn", "", "optional Postgres DSN to persist snapshots")
	root.AddCommand(watchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("network", nil, "networks to scan (celo, base); empty means all")
	cmd.Flags().String("celo-rpc", "", "Celo RPC URL override")
	cmd.Flags().String("base-rpc", "", "Base RPC URL override")
	cmd.Flags().String("celo-market-core", "", "Celo market-core contract address")
	cmd.Flags().String("celo-claims", "", "Celo claims contract address")
	cmd.Flags().String("base-market-core", "", "Base market-core contract address")
	cmd.Flags().String("base-claims", "", "Base claims contract address")
	cmd.Flags().Duration("lookback", 21*24*time.Hour, "lookback window")
	cmd.Flags().String("lookback-mode", "blocks", "lookback strategy (blocks, timestamp)")
	cmd.Flags().Uint64("batch-size", 5000, "blocks per eth_getLogs request")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts per RPC request")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().Int("timestamp-concurrency", 8, "parallel block timestamp lookups")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
