package activity

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"predictionScope/internal/eventstore"
	"predictionScope/internal/model"
)

type staticSource struct {
	mu   sync.Mutex
	snap eventstore.Snapshot
}

func newStaticSource(logs []model.ContractLog) *staticSource {
	s := &staticSource{}
	s.set(logs)
	return s
}

func (s *staticSource) set(logs []model.ContractLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = eventstore.Snapshot{Logs: logs, Fingerprint: eventstore.Fingerprint(logs)}
}

// refetch simulates a completed fetch that returned the same logs.
func (s *staticSource) refetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.LastFetched = s.snap.LastFetched.Add(time.Minute)
}

func (s *staticSource) Snapshot() eventstore.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

type countingLookup struct {
	mu     sync.Mutex
	calls  int
	resets int
	info   map[model.MarketKey]model.MarketInfo
}

func (l *countingLookup) LookupMarket(_ context.Context, key model.MarketKey) (model.MarketInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	info, ok := l.info[key]
	if !ok {
		return model.MarketInfo{}, errors.New("execution reverted")
	}
	return info, nil
}

func (l *countingLookup) Reset() {
	l.mu.Lock()
	l.resets++
	l.mu.Unlock()
}

func ts(v uint64) *uint64 { return &v }

func testLog(network model.Network, event model.EventName, block, index uint64, timestamp *uint64, args map[string]any) model.ContractLog {
	return model.ContractLog{
		Network:         network,
		ContractName:    model.ContractMarketCore,
		EventName:       event,
		BlockNumber:     block,
		TransactionHash: "0xtx",
		LogIndex:        index,
		Args:            args,
		Timestamp:       timestamp,
	}
}

func sampleLogs() []model.ContractLog {
	return eventstore.SortLogs([]model.ContractLog{
		testLog(model.CeloMainnet, model.EventMarketCreated, 1, 0, ts(100), map[string]any{
			"marketId": "1", "creator": "0xaaaa", "question": "Rain tomorrow?", "category": "weather",
		}),
		testLog(model.CeloMainnet, model.EventSharesBought, 2, 0, ts(200), map[string]any{
			"marketId": "1", "buyer": "0xbbbb", "side": true, "amount": "10",
		}),
		testLog(model.CeloMainnet, model.EventSharesBought, 2, 1, ts(200), map[string]any{
			"marketId": "1", "buyer": "0xbbbb", "side": true, "amount": "5",
		}),
		testLog(model.BaseMainnet, model.EventSharesBought, 3, 0, nil, map[string]any{
			"marketId": "7", "buyer": "0xcccc", "side": false, "amount": "3",
		}),
		testLog(model.CeloMainnet, model.EventMarketResolved, 4, 0, ts(300), map[string]any{
			"marketId": "1", "resolver": "0xaaaa", "outcome": true,
		}),
		testLog(model.CeloMainnet, model.EventWinningsClaimed, 5, 0, ts(400), map[string]any{
			"marketId": "1", "claimant": "0xbbbb", "amount": "14",
		}),
		testLog(model.CeloMainnet, model.EventUsernameSet, 6, 0, ts(500), map[string]any{
			"user": "0xbbbb", "username": "bob",
		}),
	})
}

func TestProcessUserActivities(t *testing.T) {
	lookup := &countingLookup{}
	processor := NewProcessor(newStaticSource(sampleLogs()), lookup, nil)

	activities := processor.ProcessUserActivities(context.Background())
	if len(activities) != 6 {
		t.Fatalf("expected 6 activities, got %d", len(activities))
	}

	if activities[0].Type != model.ActivityWinningsClaimed || activities[0].Details.Winnings.String() != "14" {
		t.Fatalf("newest activity mismatch: %+v", activities[0])
	}
	last := activities[len(activities)-1]
	if last.Timestamp != nil || last.Network != model.BaseMainnet {
		t.Fatalf("unknown timestamp should sort last: %+v", last)
	}
	if last.MarketQuestion != "Market #7" {
		t.Fatalf("failed lookup should fall back to placeholder, got %q", last.MarketQuestion)
	}
	if lookup.calls != 1 {
		t.Fatalf("only the market without a creation log should be looked up, got %d", lookup.calls)
	}

	ids := make(map[string]struct{})
	for _, activity := range activities {
		if activity.MarketID == "1" && activity.MarketQuestion != "Rain tomorrow?" {
			t.Fatalf("question should come from the creation log: %+v", activity)
		}
		if _, dup := ids[activity.ID]; dup {
			t.Fatalf("duplicate id %s", activity.ID)
		}
		ids[activity.ID] = struct{}{}
	}
}

func TestProcessUserActivitiesMemoized(t *testing.T) {
	lookup := &countingLookup{}
	source := newStaticSource(sampleLogs())
	processor := NewProcessor(source, lookup, nil)

	first := processor.ProcessUserActivities(context.Background())
	second := processor.ProcessUserActivities(context.Background())
	if &first[0] != &second[0] {
		t.Fatalf("same snapshot should reuse the memoized slice")
	}
	if lookup.calls != 1 || lookup.resets != 1 {
		t.Fatalf("memoized call should not look up again: calls=%d resets=%d", lookup.calls, lookup.resets)
	}

	// dropping the username log changes the snapshot but no activity
	source.set(sampleLogs()[1:])
	third := processor.ProcessUserActivities(context.Background())
	if lookup.resets != 2 {
		t.Fatalf("new snapshot should re-derive, resets=%d", lookup.resets)
	}
	if !reflect.DeepEqual(first, third) {
		t.Fatalf("re-deriving should yield the same activities")
	}
}

// flakyLookup times out on its first fails calls, then answers with info.
type flakyLookup struct {
	mu     sync.Mutex
	calls  int
	resets int
	fails  int
	info   model.MarketInfo
}

func (l *flakyLookup) LookupMarket(ctx context.Context, _ model.MarketKey) (model.MarketInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.calls <= l.fails {
		return model.MarketInfo{}, context.DeadlineExceeded
	}
	return l.info, nil
}

func (l *flakyLookup) Reset() {
	l.mu.Lock()
	l.resets++
	l.mu.Unlock()
}

func marketQuestion(activities []model.UserActivity, key model.MarketKey) string {
	for _, activity := range activities {
		if activity.MarketKey() == key {
			return activity.MarketQuestion
		}
	}
	return ""
}

func TestFailedLookupRetriedAfterRefetch(t *testing.T) {
	key := model.MarketKey{Network: model.BaseMainnet, ID: "7"}
	lookup := &flakyLookup{fails: 1, info: model.MarketInfo{Question: "ETH flips BTC?"}}
	source := newStaticSource(sampleLogs())
	processor := NewProcessor(source, lookup, nil)

	first := processor.Result(context.Background())
	if got := marketQuestion(first.Activities, key); got != "Market #7" {
		t.Fatalf("failed lookup should fall back to placeholder, got %q", got)
	}

	// no newer fetch: the memo is kept
	if again := processor.Result(context.Background()); again.Revision != first.Revision || lookup.calls != 1 {
		t.Fatalf("retry without a newer fetch: revision=%d calls=%d", again.Revision, lookup.calls)
	}

	source.refetch()
	second := processor.Result(context.Background())
	if got := marketQuestion(second.Activities, key); got != "ETH flips BTC?" {
		t.Fatalf("lookup should be retried after refetch, got %q", got)
	}
	if second.Fingerprint != first.Fingerprint || second.Revision == first.Revision {
		t.Fatalf("retry should keep fingerprint and bump revision: %+v", second)
	}
	if lookup.calls != 2 || lookup.resets != 1 {
		t.Fatalf("expected one retry without reset: calls=%d resets=%d", lookup.calls, lookup.resets)
	}

	// complete result is memoized even after further fetches
	source.refetch()
	if third := processor.Result(context.Background()); third.Revision != second.Revision || lookup.calls != 2 {
		t.Fatalf("complete result should be reused: revision=%d calls=%d", third.Revision, lookup.calls)
	}
}

func TestZeroAddressActorSkippedOutcomeKept(t *testing.T) {
	logs := eventstore.SortLogs([]model.ContractLog{
		testLog(model.CeloMainnet, model.EventSharesBought, 1, 0, ts(10), map[string]any{
			"marketId": "3", "buyer": "0xbbbb", "side": true, "amount": "1",
		}),
		testLog(model.CeloMainnet, model.EventMarketResolved, 2, 0, ts(20), map[string]any{
			"marketId": "3", "resolver": "0x0000000000000000000000000000000000000000", "outcome": true,
		}),
	})

	activities, markets := Derive(context.Background(), logs, nil, nil)
	if len(activities) != 1 || activities[0].Type != model.ActivitySharesBought {
		t.Fatalf("zero-address resolver should not yield an activity: %+v", activities)
	}
	info := markets[model.MarketKey{Network: model.CeloMainnet, ID: "3"}]
	if !info.Resolved || !info.Outcome {
		t.Fatalf("outcome should be kept: %+v", info)
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	logs := sampleLogs()
	a, _ := Derive(context.Background(), logs, nil, nil)
	b, _ := Derive(context.Background(), logs, nil, nil)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("derive should be deterministic")
	}
}

func TestDeriveUsesLookup(t *testing.T) {
	key := model.MarketKey{Network: model.BaseMainnet, ID: "7"}
	lookup := &countingLookup{info: map[model.MarketKey]model.MarketInfo{
		key: {Question: "ETH flips BTC?", Category: "crypto", Resolved: true, Outcome: false},
	}}

	activities, markets := Derive(context.Background(), sampleLogs(), lookup, nil)
	for _, activity := range activities {
		if activity.MarketKey() == key && activity.MarketQuestion != "ETH flips BTC?" {
			t.Fatalf("lookup question not applied: %+v", activity)
		}
	}
	if !markets[key].Resolved {
		t.Fatalf("lookup resolution should be kept")
	}
	if !markets[model.MarketKey{Network: model.CeloMainnet, ID: "1"}].Outcome {
		t.Fatalf("resolution from logs should be recorded")
	}
}

func TestUsernamesLatestWins(t *testing.T) {
	logs := eventstore.SortLogs([]model.ContractLog{
		testLog(model.CeloMainnet, model.EventUsernameSet, 1, 0, ts(1), map[string]any{"user": "0xbbbb", "username": "bob"}),
		testLog(model.CeloMainnet, model.EventUsernameChanged, 2, 0, ts(2), map[string]any{
			"user": "0xbbbb", "oldUsername": "bob", "newUsername": "bobby",
		}),
	})
	got := Usernames(logs)
	if got["0xbbbb"] != "bobby" {
		t.Fatalf("latest username should win, got %q", got["0xbbbb"])
	}
}

func TestUserActivitiesCaseInsensitive(t *testing.T) {
	processor := NewProcessor(newStaticSource(sampleLogs()), nil, nil)
	if got := len(processor.UserActivities(context.Background(), "0xBBBB")); got != 3 {
		t.Fatalf("expected 3 activities for 0xbbbb, got %d", got)
	}
}

func TestChainLookupCachesAndSkipsZeroAddress(t *testing.T) {
	caller := &fakeCaller{}
	lookup := NewChainLookup(map[model.Network]LookupTarget{
		model.CeloMainnet: {Caller: caller, Market: common.HexToAddress("0x4444444444444444444444444444444444444444")},
		model.BaseMainnet: {Caller: caller},
	})
	caller.respond(t, "Will it snow?", "weather")

	key := model.MarketKey{Network: model.CeloMainnet, ID: "3"}
	for i := 0; i < 3; i++ {
		info, err := lookup.LookupMarket(context.Background(), key)
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		if info.Question != "Will it snow?" {
			t.Fatalf("question mismatch: %+v", info)
		}
	}
	if caller.count() != 1 {
		t.Fatalf("expected one contract call, got %d", caller.count())
	}

	lookup.Reset()
	if _, err := lookup.LookupMarket(context.Background(), key); err != nil {
		t.Fatalf("lookup after reset: %v", err)
	}
	if caller.count() != 2 {
		t.Fatalf("reset should drop the cache, got %d calls", caller.count())
	}

	if _, err := lookup.LookupMarket(context.Background(), model.MarketKey{Network: model.BaseMainnet, ID: "3"}); err == nil {
		t.Fatalf("expected error for network without market contract")
	}
}
