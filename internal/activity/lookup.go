package activity

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/singleflight"

	"predictionScope/internal/contracts"
	"predictionScope/internal/indexer"
	"predictionScope/internal/model"
)

// MarketLookup resolves market info that the logs do not carry.
type MarketLookup interface {
	LookupMarket(ctx context.Context, key model.MarketKey) (model.MarketInfo, error)
}

// LookupTarget is the market-core contract of one network.
type LookupTarget struct {
	Caller contracts.Caller
	Market common.Address
}

// ChainLookup reads getMarket from each network's market-core contract.
// Concurrent lookups of one market share a call; results are cached until
// Reset.
type ChainLookup struct {
	targets map[model.Network]LookupTarget
	group   singleflight.Group

	mu    sync.RWMutex
	cache map[model.MarketKey]model.MarketInfo
}

// NewChainLookup builds a lookup over targets. Networks with a zero market
// address are left out.
func NewChainLookup(targets map[model.Network]LookupTarget) *ChainLookup {
	kept := make(map[model.Network]LookupTarget, len(targets))
	for network, target := range targets {
		if target.Caller == nil || indexer.IsZeroAddress(target.Market) {
			continue
		}
		kept[network] = target
	}
	return &ChainLookup{
		targets: kept,
		cache:   make(map[model.MarketKey]model.MarketInfo),
	}
}

// LookupMarket returns the cached or freshly read info of key.
func (l *ChainLookup) LookupMarket(ctx context.Context, key model.MarketKey) (model.MarketInfo, error) {
	l.mu.RLock()
	info, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return info, nil
	}

	target, ok := l.targets[key.Network]
	if !ok {
		return model.MarketInfo{}, fmt.Errorf("no market contract for %s", key.Network)
	}

	val, err, _ := l.group.Do(key.String(), func() (any, error) {
		info, err := contracts.FetchMarketInfo(ctx, target.Caller, target.Market, key.ID)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[key] = info
		l.mu.Unlock()
		return info, nil
	})
	if err != nil {
		return model.MarketInfo{}, err
	}
	return val.(model.MarketInfo), nil
}

// Reset drops cached market info.
func (l *ChainLookup) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[model.MarketKey]model.MarketInfo)
}
