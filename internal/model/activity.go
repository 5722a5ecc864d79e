package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ActivityType is the kind of user activity derived from a log.
type ActivityType string

const (
	ActivityMarketCreated   ActivityType = "market_created"
	ActivitySharesBought    ActivityType = "shares_bought"
	ActivityMarketResolved  ActivityType = "market_resolved"
	ActivityWinningsClaimed ActivityType = "winnings_claimed"
)

// ActivityDetails holds the type-specific payload of an activity.
type ActivityDetails struct {
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Side     *bool            `json:"side,omitempty"`
	Outcome  *bool            `json:"outcome,omitempty"`
	Winnings *decimal.Decimal `json:"winnings,omitempty"`
}

// UserActivity is one qualifying log from a user's point of view.
type UserActivity struct {
	ID              string          `json:"id"`
	Type            ActivityType    `json:"type"`
	Network         Network         `json:"network"`
	User            string          `json:"user"`
	MarketID        string          `json:"market_id"`
	MarketQuestion  string          `json:"market_question"`
	MarketCategory  string          `json:"market_category,omitempty"`
	Timestamp       *uint64         `json:"timestamp,omitempty"`
	BlockNumber     uint64          `json:"block_number"`
	TransactionHash string          `json:"transaction_hash"`
	Details         ActivityDetails `json:"details"`
}

// ActivityID derives the stable id of an activity. The log index keeps two
// purchases of the same market in one transaction apart.
func ActivityID(kind ActivityType, network Network, marketID, txHash string, logIndex uint64) string {
	return fmt.Sprintf("%s-%s-%s-%s-%d", kind, network, marketID, txHash, logIndex)
}

// MarketKey identifies a market across deployments.
func (a UserActivity) MarketKey() MarketKey {
	return MarketKey{Network: a.Network, ID: a.MarketID}
}
