package model

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// EventName is one of the fixed event vocabulary.
type EventName string

const (
	EventMarketCreated        EventName = "MarketCreated"
	EventSharesBought         EventName = "SharesBought"
	EventSharesSold           EventName = "SharesSold"
	EventMarketResolved       EventName = "MarketResolved"
	EventWinningsClaimed      EventName = "WinningsClaimed"
	EventUsernameSet          EventName = "UsernameSet"
	EventUsernameChanged      EventName = "UsernameChanged"
	EventReferralRecorded     EventName = "ReferralRecorded"
	EventAdminAdded           EventName = "AdminAdded"
	EventAdminRemoved         EventName = "AdminRemoved"
	EventOwnershipTransferred EventName = "OwnershipTransferred"
	EventPlatformFeeUpdated   EventName = "PlatformFeeUpdated"
)

// AddressFields lists every arg key that can carry a wallet address.
var AddressFields = []string{
	"creator",
	"buyer",
	"seller",
	"resolver",
	"user",
	"claimant",
	"referrer",
	"referee",
	"admin",
	"previousOwner",
	"newOwner",
}

// ContractLog is the canonical record of one emitted event.
// Args values are canonical: lower-case hex addresses, base-10 integer
// strings, bools and plain strings.
type ContractLog struct {
	Network         Network        `json:"network"`
	ContractName    string         `json:"contract_name"`
	ContractAddress string         `json:"contract_address"`
	EventName       EventName      `json:"event_name"`
	BlockNumber     uint64         `json:"block_number"`
	TransactionHash string         `json:"transaction_hash"`
	LogIndex        uint64         `json:"log_index"`
	Args            map[string]any `json:"args"`
	Timestamp       *uint64        `json:"timestamp,omitempty"`
}

// Key is the dedup key of a log.
func (l ContractLog) Key() string {
	return fmt.Sprintf("%s|%s|%d|%s", l.Network, l.TransactionHash, l.LogIndex, l.EventName)
}

// HasTimestamp reports whether the block timestamp was resolved.
func (l ContractLog) HasTimestamp() bool {
	return l.Timestamp != nil
}

// ArgString returns a string arg, formatting non-string values.
func (l ContractLog) ArgString(key string) string {
	val, ok := l.Args[key]
	if !ok || val == nil {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ArgAddress returns a lower-cased address arg.
func (l ContractLog) ArgAddress(key string) string {
	return strings.ToLower(l.ArgString(key))
}

// ArgBool returns a bool arg and whether it was present and boolean.
func (l ContractLog) ArgBool(key string) (bool, bool) {
	val, ok := l.Args[key]
	if !ok {
		return false, false
	}
	switch v := val.(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

// ArgBigInt parses an integer arg.
func (l ContractLog) ArgBigInt(key string) (*big.Int, bool) {
	raw := l.ArgString(key)
	if raw == "" {
		return nil, false
	}
	val, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, false
	}
	return val, true
}

// MarketID returns the marketId arg, empty when the event carries none.
func (l ContractLog) MarketID() string {
	return l.ArgString("marketId")
}

// InvolvesAddress reports whether any address-bearing arg matches address.
func (l ContractLog) InvolvesAddress(address string) bool {
	if address == "" {
		return false
	}
	for _, field := range AddressFields {
		if val := l.ArgString(field); val != "" && strings.EqualFold(val, address) {
			return true
		}
	}
	return false
}

// MarshalJSON ensures ContractLog is encoded with stable field names.
func (l ContractLog) MarshalJSON() ([]byte, error) {
	type Alias ContractLog
	return json.Marshal(Alias(l))
}

// UnmarshalJSON decodes a ContractLog from JSON.
func (l *ContractLog) UnmarshalJSON(data []byte) error {
	type Alias ContractLog
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*l = ContractLog(a)
	return nil
}
