package eventstore

import (
	"sort"

	"predictionScope/internal/model"
)

// Dedup drops logs whose Key was already seen, keeping the first.
func Dedup(logs []model.ContractLog) []model.ContractLog {
	seen := make(map[string]struct{}, len(logs))
	out := make([]model.ContractLog, 0, len(logs))
	for _, log := range logs {
		key := log.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, log)
	}
	return out
}

// SortLogs orders logs newest first. Unknown timestamps sort last, then
// block, log index and network break ties.
func SortLogs(logs []model.ContractLog) []model.ContractLog {
	sort.SliceStable(logs, func(i, j int) bool {
		return Less(logs[i], logs[j])
	})
	return logs
}

// Less reports whether a sorts before b in store order.
func Less(a, b model.ContractLog) bool {
	if a.HasTimestamp() != b.HasTimestamp() {
		return a.HasTimestamp()
	}
	if a.HasTimestamp() && *a.Timestamp != *b.Timestamp {
		return *a.Timestamp > *b.Timestamp
	}
	if a.BlockNumber != b.BlockNumber {
		return a.BlockNumber > b.BlockNumber
	}
	if a.LogIndex != b.LogIndex {
		return a.LogIndex > b.LogIndex
	}
	if a.Network != b.Network {
		return a.Network < b.Network
	}
	if a.TransactionHash != b.TransactionHash {
		return a.TransactionHash < b.TransactionHash
	}
	return a.EventName < b.EventName
}
