package indexer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"predictionScope/internal/contracts"
	"predictionScope/internal/metrics"
	"predictionScope/internal/model"
)

// DefaultLookback is the recent window scanned on every fetch.
const DefaultLookback = 21 * 24 * time.Hour

// LookbackMode selects how the scan start block is derived.
type LookbackMode string

const (
	// LookbackByBlocks assumes a constant block time.
	LookbackByBlocks LookbackMode = "blocks"
	// LookbackByTimestamp binary-searches block timestamps for the cutoff.
	LookbackByTimestamp LookbackMode = "timestamp"
)

// ChainClient is the subset of chain.Client the reader needs.
type ChainClient interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// ReaderConfig holds per-network scan settings.
type ReaderConfig struct {
	Network model.Network
	// Contracts maps a logical contract name to its deployed address.
	Contracts    map[string]common.Address
	Lookback     time.Duration
	LookbackMode LookbackMode
	BlockTime    time.Duration
	BatchSize    uint64
	Retry        RetryPolicy
	// TimestampConcurrency bounds parallel block header lookups.
	TimestampConcurrency int
	Now                  func() time.Time
}

// Reader scans one network's contracts for known events.
type Reader struct {
	cfg     ReaderConfig
	client  ChainClient
	schemas []abi.Event
	logger  *zap.Logger
}

// NewReader builds a Reader for one network.
func NewReader(cfg ReaderConfig, client ChainClient, schemas []abi.Event, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.LookbackMode == "" {
		cfg.LookbackMode = LookbackByBlocks
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 5000
	}
	if cfg.TimestampConcurrency <= 0 {
		cfg.TimestampConcurrency = 8
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Reader{
		cfg:     cfg,
		client:  client,
		schemas: schemas,
		logger:  logger.With(zap.String("network", string(cfg.Network))),
	}
}

// Network returns the network this reader scans.
func (r *Reader) Network() model.Network {
	return r.cfg.Network
}

type pendingLog struct {
	raw          types.Log
	contractName string
	eventName    model.EventName
	args         map[string]any
}

// FetchNetworkLogs scans the lookback window of every deployed contract
// for every event schema. A failing event scan is logged and skipped; only
// a failure to determine the scan range aborts the network. Output order
// is unspecified.
func (r *Reader) FetchNetworkLogs(ctx context.Context) ([]model.ContractLog, error) {
	if r.client == nil {
		return nil, fmt.Errorf("chain client is nil")
	}

	names := r.deployedContracts()
	if len(names) == 0 {
		r.logger.Info("no deployed contracts, skipping scan")
		return []model.ContractLog{}, nil
	}

	head, err := retryValue(ctx, r.cfg.Retry, r.client.LatestBlockNumber)
	if err != nil {
		return nil, fmt.Errorf("get latest block: %w", err)
	}

	from, err := r.startBlock(ctx, head)
	if err != nil {
		return nil, fmt.Errorf("resolve lookback start: %w", err)
	}

	ranges, err := SplitRange(from, head, r.cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	r.logger.Info("scan start",
		zap.Uint64("from", from),
		zap.Uint64("to", head),
		zap.Int("contracts", len(names)),
		zap.Int("events", len(r.schemas)),
		zap.Int("ranges", len(ranges)),
	)

	pending := make([]pendingLog, 0)
	for _, name := range names {
		address := r.cfg.Contracts[name]
		for _, event := range r.schemas {
			logs, err := r.scanEvent(ctx, address, event, ranges)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				metrics.ReaderEventErrors.WithLabelValues(string(r.cfg.Network), event.Name).Inc()
				r.logger.Warn("event scan failed",
					zap.String("contract", name),
					zap.String("event", event.Name),
					zap.Error(err),
				)
			}
			for _, raw := range logs {
				if raw.Removed {
					continue
				}
				args, err := contracts.DecodeLog(event, raw)
				if err != nil {
					r.logger.Warn("decode log failed",
						zap.String("contract", name),
						zap.String("event", event.Name),
						zap.String("tx_hash", raw.TxHash.Hex()),
						zap.Uint("log_index", raw.Index),
						zap.Error(err),
					)
					continue
				}
				pending = append(pending, pendingLog{
					raw:          raw,
					contractName: name,
					eventName:    model.EventName(event.Name),
					args:         args,
				})
			}
		}
	}

	timestamps := r.resolveTimestamps(ctx, pending)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	out := make([]model.ContractLog, 0, len(pending))
	for _, p := range pending {
		var ts *uint64
		if val, ok := timestamps[p.raw.BlockNumber]; ok {
			ts = &val
		}
		out = append(out, Normalize(r.cfg.Network, p.contractName, p.eventName, p.raw, p.args, ts))
	}

	metrics.ReaderLogsFetched.WithLabelValues(string(r.cfg.Network)).Add(float64(len(out)))
	r.logger.Info("scan complete", zap.Int("logs", len(out)), zap.Int("blocks", len(timestamps)))
	return out, nil
}

// scanEvent pages through ranges for one contract and event. On error it
// returns the logs gathered from earlier pages.
func (r *Reader) scanEvent(ctx context.Context, address common.Address, event abi.Event, ranges []BlockRange) ([]types.Log, error) {
	var out []types.Log
	topics := []common.Hash{event.ID}
	addresses := []common.Address{address}
	for _, blockRange := range ranges {
		logs, err := retryValue(ctx, r.cfg.Retry, func(ctx context.Context) ([]types.Log, error) {
			return r.client.FilterLogs(ctx, blockRange.From, blockRange.To, addresses, topics)
		})
		if err != nil {
			return out, fmt.Errorf("filter logs %d-%d: %w", blockRange.From, blockRange.To, err)
		}
		out = append(out, logs...)
	}
	return out, nil
}

// resolveTimestamps looks up each unique block once. Failed lookups are
// absent from the result.
func (r *Reader) resolveTimestamps(ctx context.Context, pending []pendingLog) map[uint64]uint64 {
	unique := make(map[uint64]struct{})
	for _, p := range pending {
		unique[p.raw.BlockNumber] = struct{}{}
	}

	var (
		mu  sync.Mutex
		out = make(map[uint64]uint64, len(unique))
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.TimestampConcurrency)
	for block := range unique {
		block := block
		g.Go(func() error {
			ts, err := retryValue(gCtx, r.cfg.Retry, func(ctx context.Context) (uint64, error) {
				return r.client.BlockTimestamp(ctx, block)
			})
			if err != nil {
				r.logger.Warn("block timestamp fetch failed", zap.Uint64("block_number", block), zap.Error(err))
				return nil
			}
			mu.Lock()
			out[block] = ts
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *Reader) startBlock(ctx context.Context, head uint64) (uint64, error) {
	switch r.cfg.LookbackMode {
	case LookbackByTimestamp:
		cutoff := r.cfg.Now().Add(-r.cfg.Lookback).Unix()
		if cutoff <= 0 {
			return 0, nil
		}
		return FindBlockByTimestamp(ctx, head, uint64(cutoff), func(ctx context.Context, number uint64) (uint64, error) {
			return retryValue(ctx, r.cfg.Retry, func(ctx context.Context) (uint64, error) {
				return r.client.BlockTimestamp(ctx, number)
			})
		})
	case LookbackByBlocks:
		if r.cfg.BlockTime <= 0 {
			return 0, fmt.Errorf("block time must be positive")
		}
		return StartBlockByCount(head, LookbackBlocks(r.cfg.Lookback, r.cfg.BlockTime)), nil
	default:
		return 0, fmt.Errorf("unsupported lookback mode: %s", r.cfg.LookbackMode)
	}
}

func (r *Reader) deployedContracts() []string {
	names := make([]string, 0, len(r.cfg.Contracts))
	for name, address := range r.cfg.Contracts {
		if IsZeroAddress(address) {
			r.logger.Debug("contract not deployed", zap.String("contract", name))
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
