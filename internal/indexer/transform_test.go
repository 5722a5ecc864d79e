package indexer

import (
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"predictionScope/internal/model"
)

func TestNormalizeLowercasesAddressFields(t *testing.T) {
	raw := types.Log{
		Address:     common.HexToAddress("0x00000000000000000000000000000000000000AA"),
		BlockNumber: 12,
		TxHash:      common.HexToHash("0xABCDEF"),
		Index:       3,
	}
	args := map[string]any{
		"buyer":    "0xABCDEF0000000000000000000000000000000001",
		"username": "0xAlice",
		"amount":   "100",
	}
	ts := uint64(1700000000)

	got := Normalize(model.CeloMainnet, model.ContractMarketCore, model.EventSharesBought, raw, args, &ts)

	if got.Args["buyer"] != "0xabcdef0000000000000000000000000000000001" {
		t.Fatalf("buyer not lower-cased: %v", got.Args["buyer"])
	}
	if got.Args["username"] != "0xAlice" {
		t.Fatalf("non-address field altered: %v", got.Args["username"])
	}
	if got.ContractAddress != "0x00000000000000000000000000000000000000aa" {
		t.Fatalf("contract address mismatch: %s", got.ContractAddress)
	}
	if got.LogIndex != 3 || got.BlockNumber != 12 {
		t.Fatalf("position mismatch: %+v", got)
	}
	if args["buyer"] != "0xABCDEF0000000000000000000000000000000001" {
		t.Fatalf("input args must not be mutated")
	}

	ts = 1
	if *got.Timestamp != 1700000000 {
		t.Fatalf("timestamp should be copied, got %d", *got.Timestamp)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	raw := types.Log{
		Address: common.HexToAddress("0x01"),
		TxHash:  common.HexToHash("0x02"),
	}
	args := map[string]any{"user": "0xAAAA000000000000000000000000000000000000", "username": "bob"}

	first := Normalize(model.BaseMainnet, model.ContractMarketCore, model.EventUsernameSet, raw, args, nil)
	second := Normalize(model.BaseMainnet, model.ContractMarketCore, model.EventUsernameSet, raw, first.Args, nil)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalization not idempotent: %+v != %+v", first, second)
	}
	if first.Timestamp != nil {
		t.Fatalf("nil timestamp should stay nil")
	}
}
