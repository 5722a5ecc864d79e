package eventstore

import (
	"predictionScope/internal/model"
)

// LogsByEvent returns logs with the given event name.
func (s *Store) LogsByEvent(name model.EventName) []model.ContractLog {
	return filter(s.Logs(), func(log model.ContractLog) bool {
		return log.EventName == name
	})
}

// LogsByNetwork returns logs from one network.
func (s *Store) LogsByNetwork(network model.Network) []model.ContractLog {
	return filter(s.Logs(), func(log model.ContractLog) bool {
		return log.Network == network
	})
}

// UserLogs returns logs where address appears in any role field,
// compared case-insensitively.
func (s *Store) UserLogs(address string) []model.ContractLog {
	return filter(s.Logs(), func(log model.ContractLog) bool {
		return log.InvolvesAddress(address)
	})
}

// MarketLogs returns logs for marketID on every network.
func (s *Store) MarketLogs(marketID string) []model.ContractLog {
	return filter(s.Logs(), func(log model.ContractLog) bool {
		return marketID != "" && log.MarketID() == marketID
	})
}

// MarketLogsOn narrows MarketLogs to one network.
func (s *Store) MarketLogsOn(network model.Network, marketID string) []model.ContractLog {
	return filter(s.Logs(), func(log model.ContractLog) bool {
		return log.Network == network && marketID != "" && log.MarketID() == marketID
	})
}

func filter(logs []model.ContractLog, keep func(model.ContractLog) bool) []model.ContractLog {
	out := make([]model.ContractLog, 0)
	for _, log := range logs {
		if keep(log) {
			out = append(out, log)
		}
	}
	return out
}
