package model

// MarketKey identifies a market; ids are only unique per network deployment.
type MarketKey struct {
	Network Network `json:"network"`
	ID      string  `json:"id"`
}

func (k MarketKey) String() string {
	return string(k.Network) + ":" + k.ID
}

// MarketInfo is the human-readable context of a market.
type MarketInfo struct {
	Question string `json:"question"`
	Category string `json:"category,omitempty"`
	Resolved bool   `json:"resolved"`
	Outcome  bool   `json:"outcome"`
}

// PlaceholderQuestion is shown when a market's question cannot be resolved.
func PlaceholderQuestion(marketID string) string {
	return "Market #" + marketID
}
