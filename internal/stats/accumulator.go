package stats

import (
	"math"

	"github.com/shopspring/decimal"

	"predictionScope/internal/model"
)

// position is one user's footprint in one market.
type position struct {
	invested decimal.Decimal
	claimed  decimal.Decimal
	bought   bool
	claims   bool
	sides    [2]bool // [no, yes]
}

// accumulator holds running totals for one address.
type accumulator struct {
	address      string
	invested     decimal.Decimal
	winnings     decimal.Decimal
	markets      map[model.MarketKey]*position
	lastActivity *uint64
}

func newAccumulator(address string) *accumulator {
	return &accumulator{
		address:  address,
		invested: decimal.Zero,
		winnings: decimal.Zero,
		markets:  make(map[model.MarketKey]*position),
	}
}

func (a *accumulator) market(key model.MarketKey) *position {
	pos, ok := a.markets[key]
	if !ok {
		pos = &position{invested: decimal.Zero, claimed: decimal.Zero}
		a.markets[key] = pos
	}
	return pos
}

func (a *accumulator) add(activity model.UserActivity) {
	if activity.Timestamp != nil && (a.lastActivity == nil || *activity.Timestamp > *a.lastActivity) {
		ts := *activity.Timestamp
		a.lastActivity = &ts
	}

	pos := a.market(activity.MarketKey())
	switch activity.Type {
	case model.ActivitySharesBought:
		amount := decimal.Zero
		if activity.Details.Amount != nil {
			amount = *activity.Details.Amount
		}
		a.invested = a.invested.Add(amount)
		pos.invested = pos.invested.Add(amount)
		pos.bought = true
		if activity.Details.Side != nil {
			pos.sides[sideIndex(*activity.Details.Side)] = true
		}
	case model.ActivityWinningsClaimed:
		pos.claims = true
		if activity.Details.Winnings != nil {
			a.winnings = a.winnings.Add(*activity.Details.Winnings)
			pos.claimed = pos.claimed.Add(*activity.Details.Winnings)
		}
	}
}

// finalize builds the stats row. outcomes holds the resolved side of every
// resolved market in the full snapshot.
func (a *accumulator) finalize(outcomes map[model.MarketKey]bool, username string) model.UserLeaderboardStats {
	var (
		markets  int
		resolved int
		won      int
		returns  []float64
	)
	for key, pos := range a.markets {
		if pos.bought || pos.claims {
			markets++
		}
		outcome, ok := outcomes[key]
		if !ok || !pos.bought {
			continue
		}
		resolved++
		if pos.sides[sideIndex(outcome)] {
			won++
		}
		if pos.invested.IsPositive() {
			r, _ := pos.claimed.Sub(pos.invested).Div(pos.invested).Float64()
			returns = append(returns, r)
		}
	}

	winRate := 0.0
	if resolved > 0 {
		winRate = float64(won) / float64(resolved) * 100
	}

	return model.UserLeaderboardStats{
		Address:            a.address,
		Username:           username,
		TotalInvested:      a.invested,
		TotalWinnings:      a.winnings,
		TotalPnL:           a.winnings.Sub(a.invested),
		TotalVolume:        a.invested.Add(a.winnings),
		TotalMarkets:       markets,
		ResolvedMarkets:    resolved,
		WonMarkets:         won,
		WinRate:            winRate,
		RiskAdjustedReturn: riskAdjusted(returns),
		LastActivity:       a.lastActivity,
	}
}

func sideIndex(side bool) int {
	if side {
		return 1
	}
	return 0
}

// riskAdjusted is mean/stddev of per-market returns, or the mean when the
// spread is undefined.
func riskAdjusted(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))
	if len(returns) < 2 {
		return mean
	}
	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	stddev := math.Sqrt(variance / float64(len(returns)))
	if stddev == 0 {
		return mean
	}
	return mean / stddev
}
