package indexer

import (
	"strings"

	"github.com/ethereum/go-ethereum/core/types"

	"predictionScope/internal/model"
)

// Normalize maps a raw chain log and its decoded args into a ContractLog.
// A nil timestamp means the block lookup failed.
func Normalize(
	network model.Network,
	contractName string,
	eventName model.EventName,
	log types.Log,
	args map[string]any,
	timestamp *uint64,
) model.ContractLog {
	copied := make(map[string]any, len(args))
	for key, value := range args {
		copied[key] = value
	}
	for _, field := range model.AddressFields {
		if s, ok := copied[field].(string); ok {
			copied[field] = strings.ToLower(s)
		}
	}

	var ts *uint64
	if timestamp != nil {
		val := *timestamp
		ts = &val
	}

	return model.ContractLog{
		Network:         network,
		ContractName:    contractName,
		ContractAddress: strings.ToLower(log.Address.Hex()),
		EventName:       eventName,
		BlockNumber:     log.BlockNumber,
		TransactionHash: strings.ToLower(log.TxHash.Hex()),
		LogIndex:        uint64(log.Index),
		Args:            copied,
		Timestamp:       ts,
	}
}
