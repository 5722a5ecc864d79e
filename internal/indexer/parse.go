package indexer

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseContracts converts a logical name -> address map into common.Address
// values. An empty address is kept as the zero address, which means the
// contract is not deployed on that network.
func ParseContracts(inputs map[string]string) (map[string]common.Address, error) {
	contracts := make(map[string]common.Address, len(inputs))
	for name, input := range inputs {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			contracts[name] = common.Address{}
			continue
		}
		if !common.IsHexAddress(input) {
			return nil, fmt.Errorf("invalid address for %s: %s", name, input)
		}
		contracts[name] = common.HexToAddress(input)
	}
	return contracts, nil
}

// IsZeroAddress reports whether addr signals "not deployed".
func IsZeroAddress(addr common.Address) bool {
	return addr == (common.Address{})
}
