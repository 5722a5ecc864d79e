package activity

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"predictionScope/internal/model"
)

const lookupConcurrency = 4

// marketsFromLogs collects question and category from MarketCreated logs
// and outcomes from MarketResolved logs.
func marketsFromLogs(logs []model.ContractLog) map[model.MarketKey]model.MarketInfo {
	out := make(map[model.MarketKey]model.MarketInfo)
	for _, log := range logs {
		id := log.MarketID()
		if id == "" {
			continue
		}
		key := model.MarketKey{Network: log.Network, ID: id}
		switch log.EventName {
		case model.EventMarketCreated:
			info := out[key]
			info.Question = log.ArgString("question")
			info.Category = log.ArgString("category")
			out[key] = info
		case model.EventMarketResolved:
			if outcome, ok := log.ArgBool("outcome"); ok {
				info := out[key]
				info.Resolved = true
				info.Outcome = outcome
				out[key] = info
			}
		}
	}
	return out
}

// resolveMarkets fills in markets referenced by activities whose question
// is not in the logs. Failed lookups get the placeholder question and are
// reported in failed.
func resolveMarkets(
	ctx context.Context,
	known map[model.MarketKey]model.MarketInfo,
	needed []model.MarketKey,
	lookup MarketLookup,
	logger *zap.Logger,
) (out map[model.MarketKey]model.MarketInfo, failed int) {
	out = make(map[model.MarketKey]model.MarketInfo, len(known)+len(needed))
	for key, info := range known {
		out[key] = info
	}

	missing := make([]model.MarketKey, 0)
	for _, key := range needed {
		if out[key].Question == "" {
			missing = append(missing, key)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		return missing[i].String() < missing[j].String()
	})

	if lookup != nil && len(missing) > 0 {
		var mu sync.Mutex
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(lookupConcurrency)
		for _, key := range missing {
			key := key
			g.Go(func() error {
				info, err := lookup.LookupMarket(gCtx, key)
				if err != nil {
					logger.Debug("market lookup failed",
						zap.String("network", string(key.Network)),
						zap.String("market_id", key.ID),
						zap.Error(err),
					)
					mu.Lock()
					failed++
					mu.Unlock()
					return nil
				}
				mu.Lock()
				current := out[key]
				current.Question = info.Question
				current.Category = info.Category
				if !current.Resolved && info.Resolved {
					current.Resolved = true
					current.Outcome = info.Outcome
				}
				out[key] = current
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	for _, key := range missing {
		info := out[key]
		if info.Question == "" {
			info.Question = model.PlaceholderQuestion(key.ID)
			out[key] = info
		}
	}
	return out, failed
}
