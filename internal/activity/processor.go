package activity

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"predictionScope/internal/eventstore"
	"predictionScope/internal/model"
)

// SnapshotSource exposes the event store state.
type SnapshotSource interface {
	Snapshot() eventstore.Snapshot
}

type resetter interface {
	Reset()
}

// actorFields maps each activity-bearing event to its actor arg.
var actorFields = map[model.EventName]struct {
	kind  model.ActivityType
	field string
}{
	model.EventMarketCreated:   {model.ActivityMarketCreated, "creator"},
	model.EventSharesBought:    {model.ActivitySharesBought, "buyer"},
	model.EventMarketResolved:  {model.ActivityMarketResolved, "resolver"},
	model.EventWinningsClaimed: {model.ActivityWinningsClaimed, "claimant"},
}

// Processor derives user activities from the current store snapshot.
type Processor struct {
	source SnapshotSource
	lookup MarketLookup
	logger *zap.Logger

	mu       sync.Mutex
	memo     Result
	ready    bool
	revision uint64
	fetched  time.Time
	// incomplete is set when a market lookup failed for the memoized result.
	incomplete bool
}

// Result is everything derived from one snapshot.
type Result struct {
	Fingerprint common.Hash
	// Revision increases on every derivation, including retries of the
	// same snapshot.
	Revision   uint64
	Activities []model.UserActivity
	Markets    map[model.MarketKey]model.MarketInfo
	// Usernames maps a lower-case address to its latest username.
	Usernames map[string]string
}

// NewProcessor builds a processor. lookup may be nil.
func NewProcessor(source SnapshotSource, lookup MarketLookup, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{source: source, lookup: lookup, logger: logger}
}

// ProcessUserActivities returns the activities of the current snapshot,
// newest first. The result is reused until the snapshot changes and must
// not be modified.
func (p *Processor) ProcessUserActivities(ctx context.Context) []model.UserActivity {
	return p.Result(ctx).Activities
}

// UserActivities returns the activities of one address.
func (p *Processor) UserActivities(ctx context.Context, address string) []model.UserActivity {
	address = strings.ToLower(strings.TrimSpace(address))
	out := make([]model.UserActivity, 0)
	for _, activity := range p.ProcessUserActivities(ctx) {
		if activity.User == address {
			out = append(out, activity)
		}
	}
	return out
}

// Result derives, or returns the memoized, result of the current snapshot.
// A result with failed market lookups is derived again once the store has
// completed a newer fetch, even when the logs are unchanged.
func (p *Processor) Result(ctx context.Context) Result {
	snap := p.source.Snapshot()

	p.mu.Lock()
	defer p.mu.Unlock()
	sameSnapshot := p.ready && p.memo.Fingerprint == snap.Fingerprint
	retry := p.incomplete && snap.LastFetched.After(p.fetched)
	if sameSnapshot && !retry {
		return p.memo
	}

	if r, ok := p.lookup.(resetter); ok && !sameSnapshot {
		r.Reset()
	}
	activities, markets, failed := derive(ctx, snap.Logs, p.lookup, p.logger)
	p.revision++
	p.memo = Result{
		Fingerprint: snap.Fingerprint,
		Revision:    p.revision,
		Activities:  activities,
		Markets:     markets,
		Usernames:   Usernames(snap.Logs),
	}
	p.ready = true
	p.fetched = snap.LastFetched
	p.incomplete = failed > 0
	p.logger.Debug("activities derived",
		zap.Int("logs", len(snap.Logs)),
		zap.Int("activities", len(activities)),
		zap.Int("failed_lookups", failed),
	)
	return p.memo
}

// Usernames returns the latest username per address. logs must be in
// store order, newest first.
func Usernames(logs []model.ContractLog) map[string]string {
	out := make(map[string]string)
	for _, log := range logs {
		var name string
		switch log.EventName {
		case model.EventUsernameSet:
			name = log.ArgString("username")
		case model.EventUsernameChanged:
			name = log.ArgString("newUsername")
		default:
			continue
		}
		user := log.ArgAddress("user")
		if user == "" {
			continue
		}
		if _, ok := out[user]; !ok {
			out[user] = name
		}
	}
	return out
}

// Derive maps logs to activities. It is deterministic for a given log set
// and lookup.
func Derive(ctx context.Context, logs []model.ContractLog, lookup MarketLookup, logger *zap.Logger) ([]model.UserActivity, map[model.MarketKey]model.MarketInfo) {
	activities, markets, _ := derive(ctx, logs, lookup, logger)
	return activities, markets
}

func derive(ctx context.Context, logs []model.ContractLog, lookup MarketLookup, logger *zap.Logger) ([]model.UserActivity, map[model.MarketKey]model.MarketInfo, int) {
	if logger == nil {
		logger = zap.NewNop()
	}

	activities := make([]model.UserActivity, 0)
	needed := make([]model.MarketKey, 0)
	seenMarkets := make(map[model.MarketKey]struct{})
	seenIDs := make(map[string]struct{})

	for _, log := range logs {
		actor, ok := actorFields[log.EventName]
		if !ok {
			continue
		}
		user := log.ArgAddress(actor.field)
		marketID := log.MarketID()
		if user == "" || marketID == "" || common.HexToAddress(user) == (common.Address{}) {
			logger.Debug("activity log without user actor or market",
				zap.String("event", string(log.EventName)),
				zap.String("tx_hash", log.TransactionHash),
			)
			continue
		}

		id := model.ActivityID(actor.kind, log.Network, marketID, log.TransactionHash, log.LogIndex)
		if _, dup := seenIDs[id]; dup {
			continue
		}
		seenIDs[id] = struct{}{}

		activity := model.UserActivity{
			ID:              id,
			Type:            actor.kind,
			Network:         log.Network,
			User:            user,
			MarketID:        marketID,
			Timestamp:       copyTimestamp(log.Timestamp),
			BlockNumber:     log.BlockNumber,
			TransactionHash: log.TransactionHash,
			Details:         details(log),
		}
		activities = append(activities, activity)

		key := activity.MarketKey()
		if _, ok := seenMarkets[key]; !ok {
			seenMarkets[key] = struct{}{}
			needed = append(needed, key)
		}
	}

	markets, failed := resolveMarkets(ctx, marketsFromLogs(logs), needed, lookup, logger)
	for i := range activities {
		info := markets[activities[i].MarketKey()]
		activities[i].MarketQuestion = info.Question
		activities[i].MarketCategory = info.Category
	}

	SortActivities(activities)
	return activities, markets, failed
}

func details(log model.ContractLog) model.ActivityDetails {
	var out model.ActivityDetails
	switch log.EventName {
	case model.EventSharesBought:
		amount := amountArg(log, "amount")
		out.Amount = &amount
		if side, ok := log.ArgBool("side"); ok {
			out.Side = &side
		}
	case model.EventMarketResolved:
		if outcome, ok := log.ArgBool("outcome"); ok {
			out.Outcome = &outcome
		}
	case model.EventWinningsClaimed:
		winnings := amountArg(log, "amount")
		out.Winnings = &winnings
	}
	return out
}

// amountArg parses an integer amount; malformed values become zero.
func amountArg(log model.ContractLog, key string) decimal.Decimal {
	val, ok := log.ArgBigInt(key)
	if !ok || val.Sign() < 0 {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(val, 0)
}

func copyTimestamp(ts *uint64) *uint64 {
	if ts == nil {
		return nil
	}
	val := *ts
	return &val
}

// SortActivities orders activities newest first with unknown timestamps
// last, then block desc and id asc.
func SortActivities(activities []model.UserActivity) {
	sort.SliceStable(activities, func(i, j int) bool {
		a, b := activities[i], activities[j]
		if (a.Timestamp != nil) != (b.Timestamp != nil) {
			return a.Timestamp != nil
		}
		if a.Timestamp != nil && *a.Timestamp != *b.Timestamp {
			return *a.Timestamp > *b.Timestamp
		}
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber > b.BlockNumber
		}
		return a.ID < b.ID
	})
}
