package model

import (
	"fmt"
	"strings"
)

// Network identifies a supported chain.
type Network string

const (
	CeloMainnet Network = "CELO_MAINNET"
	BaseMainnet Network = "BASE_MAINNET"
)

// Networks lists all supported networks in fetch order.
var Networks = []Network{CeloMainnet, BaseMainnet}

// ParseNetwork accepts the canonical name or a short alias (celo, base).
func ParseNetwork(input string) (Network, error) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case string(CeloMainnet), "CELO":
		return CeloMainnet, nil
	case string(BaseMainnet), "BASE":
		return BaseMainnet, nil
	default:
		return "", fmt.Errorf("unsupported network: %s", input)
	}
}

// Contract names used to tag logs with their emitting contract.
const (
	ContractMarketCore = "market-core"
	ContractClaims     = "claims"
)
