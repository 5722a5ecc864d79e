package contracts

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"predictionScope/internal/model"
)

func TestDecodeSharesBought(t *testing.T) {
	parsed, err := PredictionMarketABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	event := parsed.Events["SharesBought"]

	buyer := common.HexToAddress("0xABCdef0000000000000000000000000000000123")
	data, err := event.Inputs.NonIndexed().Pack(true, big.NewInt(1000))
	if err != nil {
		t.Fatalf("pack shares bought: %v", err)
	}

	log := types.Log{
		Topics: []common.Hash{event.ID, common.BigToHash(big.NewInt(7)), topicFromAddress(buyer)},
		Data:   data,
	}

	args, err := DecodeLog(event, log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if args["marketId"] != "7" {
		t.Fatalf("market id mismatch: %v", args["marketId"])
	}
	if args["buyer"] != "0xabcdef0000000000000000000000000000000123" {
		t.Fatalf("buyer should be lower-cased: %v", args["buyer"])
	}
	if args["side"] != true {
		t.Fatalf("side mismatch: %v", args["side"])
	}
	if args["amount"] != "1000" {
		t.Fatalf("amount mismatch: %v", args["amount"])
	}
}

func TestDecodeMarketCreatedEmbedsQuestion(t *testing.T) {
	parsed, err := PredictionMarketABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	event := parsed.Events["MarketCreated"]

	creator := common.HexToAddress("0x1111111111111111111111111111111111111111")
	data, err := event.Inputs.NonIndexed().Pack("Will it rain?", "weather", big.NewInt(1700000000))
	if err != nil {
		t.Fatalf("pack market created: %v", err)
	}

	args, err := DecodeLog(event, types.Log{
		Topics: []common.Hash{event.ID, common.BigToHash(big.NewInt(1)), topicFromAddress(creator)},
		Data:   data,
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if args["question"] != "Will it rain?" || args["category"] != "weather" {
		t.Fatalf("question mismatch: %+v", args)
	}
	if args["endTime"] != "1700000000" {
		t.Fatalf("end time mismatch: %v", args["endTime"])
	}
}

func TestDecodeIndexedOnlyEvent(t *testing.T) {
	parsed, err := PredictionMarketABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	event := parsed.Events["ReferralRecorded"]

	referrer := common.HexToAddress("0x2222222222222222222222222222222222222222")
	referee := common.HexToAddress("0x3333333333333333333333333333333333333333")
	args, err := DecodeLog(event, types.Log{
		Topics: []common.Hash{event.ID, topicFromAddress(referrer), topicFromAddress(referee)},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if args["referrer"] != "0x2222222222222222222222222222222222222222" {
		t.Fatalf("referrer mismatch: %v", args["referrer"])
	}
	if args["referee"] != "0x3333333333333333333333333333333333333333" {
		t.Fatalf("referee mismatch: %v", args["referee"])
	}
}

func TestDecodeRejectsMismatchedTopics(t *testing.T) {
	parsed, err := PredictionMarketABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	bought := parsed.Events["SharesBought"]
	claimed := parsed.Events["WinningsClaimed"]

	if _, err := DecodeLog(bought, types.Log{}); err == nil {
		t.Fatalf("expected error for missing topics")
	}
	if _, err := DecodeLog(bought, types.Log{Topics: []common.Hash{claimed.ID}}); err == nil {
		t.Fatalf("expected error for wrong topic0")
	}
	if _, err := DecodeLog(bought, types.Log{Topics: []common.Hash{bought.ID}}); err == nil {
		t.Fatalf("expected error for missing indexed topics")
	}
	if _, err := DecodeLog(bought, types.Log{
		Topics: []common.Hash{bought.ID, common.BigToHash(big.NewInt(1)), common.Hash{}},
		Data:   []byte{0x01},
	}); err == nil {
		t.Fatalf("expected error for malformed data")
	}
}

func TestEventSchemasSorted(t *testing.T) {
	events, err := EventSchemas()
	if err != nil {
		t.Fatalf("schemas: %v", err)
	}
	if len(events) != 12 {
		t.Fatalf("expected 12 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i-1].Name >= events[i].Name {
			t.Fatalf("schemas not sorted: %s >= %s", events[i-1].Name, events[i].Name)
		}
	}
	for _, name := range []model.EventName{model.EventMarketCreated, model.EventSharesBought, model.EventMarketResolved, model.EventWinningsClaimed} {
		found := false
		for _, event := range events {
			if event.Name == string(name) {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing schema %s", name)
		}
	}
}

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}
