package stats

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"predictionScope/internal/activity"
	"predictionScope/internal/model"
)

// ResultSource provides derived activities for the current snapshot.
type ResultSource interface {
	Result(ctx context.Context) activity.Result
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithClock sets the clock used for timeframe windows.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the aggregator logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Aggregator computes per-user statistics and leaderboards.
type Aggregator struct {
	source ResultSource
	now    func() time.Time
	logger *zap.Logger

	mu      sync.Mutex
	memoKey common.Hash
	memoRev uint64
	memoAll []model.UserLeaderboardStats
	ready   bool
}

// NewAggregator builds an aggregator over source.
func NewAggregator(source ResultSource, opts ...Option) *Aggregator {
	a := &Aggregator{
		source: source,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CalculateUserStats returns the all-time stats of address, or nil when the
// address has no activity.
func (a *Aggregator) CalculateUserStats(ctx context.Context, address string) *model.UserLeaderboardStats {
	address = normalizeAddress(address)
	if address == "" {
		return nil
	}
	for _, row := range a.allTime(ctx) {
		if row.Address == address {
			out := copyRow(row)
			return &out
		}
	}
	return nil
}

// GenerateLeaderboard ranks every active address by P&L within timeframe.
// Unknown timeframes are treated as all.
func (a *Aggregator) GenerateLeaderboard(ctx context.Context, timeframe model.Timeframe) []model.UserLeaderboardStats {
	period := timeframe.Period()
	if period <= 0 {
		return copyRows(a.allTime(ctx))
	}

	result := a.source.Result(ctx)
	cutoff := a.now().Add(-period).Unix()
	windowed := make([]model.UserActivity, 0, len(result.Activities))
	for _, act := range result.Activities {
		if act.Timestamp == nil || int64(*act.Timestamp) < cutoff {
			continue
		}
		windowed = append(windowed, act)
	}
	rows := build(windowed, outcomes(result.Markets), result.Usernames)
	a.logger.Debug("leaderboard built",
		zap.String("timeframe", string(timeframe)),
		zap.Int("activities", len(windowed)),
		zap.Int("users", len(rows)),
	)
	return rows
}

// GetUserRank returns the 1-based all-time rank of address, 0 when absent.
func (a *Aggregator) GetUserRank(ctx context.Context, address string) int {
	address = normalizeAddress(address)
	for _, row := range a.allTime(ctx) {
		if row.Address == address {
			return row.Rank
		}
	}
	return 0
}

// GetTopUsers returns the first n all-time rows.
func (a *Aggregator) GetTopUsers(ctx context.Context, n int) []model.UserLeaderboardStats {
	if n <= 0 {
		return []model.UserLeaderboardStats{}
	}
	rows := a.allTime(ctx)
	if n > len(rows) {
		n = len(rows)
	}
	return copyRows(rows[:n])
}

func (a *Aggregator) allTime(ctx context.Context) []model.UserLeaderboardStats {
	result := a.source.Result(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready && a.memoKey == result.Fingerprint && a.memoRev == result.Revision {
		return a.memoAll
	}
	a.memoAll = build(result.Activities, outcomes(result.Markets), result.Usernames)
	a.memoKey = result.Fingerprint
	a.memoRev = result.Revision
	a.ready = true
	return a.memoAll
}

// outcomes collects the resolved side of every resolved market.
func outcomes(markets map[model.MarketKey]model.MarketInfo) map[model.MarketKey]bool {
	out := make(map[model.MarketKey]bool)
	for key, info := range markets {
		if info.Resolved {
			out[key] = info.Outcome
		}
	}
	return out
}

func build(activities []model.UserActivity, resolved map[model.MarketKey]bool, usernames map[string]string) []model.UserLeaderboardStats {
	accs := make(map[string]*accumulator)
	for _, act := range activities {
		acc, ok := accs[act.User]
		if !ok {
			acc = newAccumulator(act.User)
			accs[act.User] = acc
		}
		acc.add(act)
	}

	rows := make([]model.UserLeaderboardStats, 0, len(accs))
	for address, acc := range accs {
		rows = append(rows, acc.finalize(resolved, usernames[address]))
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].TotalPnL.Cmp(rows[j].TotalPnL); c != 0 {
			return c > 0
		}
		return rows[i].Address < rows[j].Address
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func copyRows(rows []model.UserLeaderboardStats) []model.UserLeaderboardStats {
	out := make([]model.UserLeaderboardStats, len(rows))
	for i, row := range rows {
		out[i] = copyRow(row)
	}
	return out
}

func copyRow(row model.UserLeaderboardStats) model.UserLeaderboardStats {
	if row.LastActivity != nil {
		ts := *row.LastActivity
		row.LastActivity = &ts
	}
	return row
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
