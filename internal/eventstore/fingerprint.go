package eventstore

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"predictionScope/internal/model"
)

// Fingerprint hashes the ordered log keys and their timestamps. Derived
// views memoize on it.
func Fingerprint(logs []model.ContractLog) common.Hash {
	buf := make([]byte, 0, len(logs)*96)
	for _, log := range logs {
		buf = append(buf, log.Key()...)
		buf = append(buf, '@')
		if log.Timestamp != nil {
			buf = strconv.AppendUint(buf, *log.Timestamp, 10)
		} else {
			buf = append(buf, '-')
		}
		buf = append(buf, '\n')
	}
	return crypto.Keccak256Hash(buf)
}
