package model

import "github.com/shopspring/decimal"

// UserLeaderboardStats aggregates one wallet's activity.
type UserLeaderboardStats struct {
	Address            string          `json:"address"`
	Username           string          `json:"username,omitempty"`
	TotalInvested      decimal.Decimal `json:"total_invested"`
	TotalWinnings      decimal.Decimal `json:"total_winnings"`
	TotalPnL           decimal.Decimal `json:"total_pnl"`
	TotalVolume        decimal.Decimal `json:"total_volume"`
	TotalMarkets       int             `json:"total_markets"`
	ResolvedMarkets    int             `json:"resolved_markets"`
	WonMarkets         int             `json:"won_markets"`
	WinRate            float64         `json:"win_rate"`
	RiskAdjustedReturn float64         `json:"risk_adjusted_return"`
	LastActivity       *uint64         `json:"last_activity,omitempty"`
	Rank               int             `json:"rank"`
}
