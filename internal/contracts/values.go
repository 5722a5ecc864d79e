package contracts

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// canonicalValue converts a decoded ABI value into its stored form.
func canonicalValue(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case common.Address:
		return strings.ToLower(v.Hex()), nil
	case *common.Address:
		return strings.ToLower(v.Hex()), nil
	case common.Hash:
		return strings.ToLower(v.Hex()), nil
	case [32]byte:
		return hexutil.Encode(v[:]), nil
	case []byte:
		return hexutil.Encode(v), nil
	case string:
		return v, nil
	case bool:
		return v, nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case int8, int16, int32, int64:
		n, err := asBigInt(v)
		if err != nil {
			return nil, err
		}
		return n.String(), nil
	case *big.Int:
		if v == nil {
			return "0", nil
		}
		return v.String(), nil
	default:
		return nil, fmt.Errorf("unsupported arg type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}
