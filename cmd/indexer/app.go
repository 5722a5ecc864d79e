package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"predictionScope/internal/activity"
	"predictionScope/internal/chain"
	"predictionScope/internal/config"
	"predictionScope/internal/contracts"
	"predictionScope/internal/eventstore"
	"predictionScope/internal/indexer"
	"predictionScope/internal/model"
	"predictionScope/internal/stats"
)

// app wires the store, processor and aggregator for one command run.
type app struct {
	cfg        config.Config
	logger     *zap.Logger
	store      *eventstore.Store
	processor  *activity.Processor
	aggregator *stats.Aggregator
	clients    []*chain.Client
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	for _, client := range a.clients {
		client.Close()
	}
	_ = a.logger.Sync()
}

// setup loads config, builds the logger and a signal-aware context.
func setup(cmd *cobra.Command) (context.Context, context.CancelFunc, *app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		stop()
		_ = logger.Sync()
		return nil, nil, nil, err
	}
	return ctx, stop, a, nil
}

func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	networks, err := cfg.Selected()
	if err != nil {
		return nil, err
	}
	if len(networks) == 0 {
		return nil, fmt.Errorf("no networks selected")
	}

	mode := indexer.LookbackMode(cfg.LookbackMode)
	if mode != indexer.LookbackByBlocks && mode != indexer.LookbackByTimestamp {
		return nil, fmt.Errorf("unsupported lookback mode: %s", cfg.LookbackMode)
	}

	schemas, err := contracts.EventSchemas()
	if err != nil {
		return nil, fmt.Errorf("load event schemas: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	sources := make([]eventstore.LogSource, 0, len(networks))
	targets := make(map[model.Network]activity.LookupTarget, len(networks))

	for _, nc := range networks {
		network, err := model.ParseNetwork(nc.Name)
		if err != nil {
			a.Close()
			return nil, err
		}
		addresses, err := indexer.ParseContracts(nc.Contracts)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("%s contracts: %w", network, err)
		}

		client, err := chain.NewClient(ctx, nc.RPC, chain.Options{
			Network: string(network),
			Timeout: nc.Timeout,
			RPS:     nc.RPS,
			Burst:   nc.Burst,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect %s rpc: %w", network, err)
		}
		a.clients = append(a.clients, client)

		sources = append(sources, indexer.NewReader(indexer.ReaderConfig{
			Network:      network,
			Contracts:    addresses,
			Lookback:     cfg.Lookback,
			LookbackMode: mode,
			BlockTime:    nc.BlockTime,
			BatchSize:    cfg.BatchSize,
			Retry: indexer.RetryPolicy{
				MaxRetries: cfg.MaxRetries,
				BaseDelay:  cfg.RetryBackoff,
				MaxDelay:   cfg.RetryMaxBackoff,
			},
			TimestampConcurrency: cfg.TimestampConcurrency,
		}, client, schemas, logger))

		targets[network] = activity.LookupTarget{
			Caller: client,
			Market: addresses[model.ContractMarketCore],
		}

		logger.Info("network configured",
			zap.String("network", string(network)),
			zap.String("rpc", nc.RPC),
			zap.Duration("block_time", nc.BlockTime),
			zap.String("market_core", addresses[model.ContractMarketCore].Hex()),
			zap.String("claims", addresses[model.ContractClaims].Hex()),
		)
	}

	a.store = eventstore.New(sources, eventstore.WithLogger(logger))
	a.processor = activity.NewProcessor(a.store, activity.NewChainLookup(targets), logger)
	a.aggregator = stats.NewAggregator(a.processor, stats.WithLogger(logger))
	return a, nil
}

// fetch runs one store fetch and logs per-network failures.
func (a *app) fetch(ctx context.Context) ([]model.ContractLog, error) {
	logs, err := a.store.FetchAllLogs(ctx)
	if err != nil {
		return nil, err
	}
	for network, netErr := range a.store.Snapshot().NetworkErrors {
		a.logger.Warn("network skipped", zap.String("network", string(network)), zap.Error(netErr))
	}
	return logs, nil
}
