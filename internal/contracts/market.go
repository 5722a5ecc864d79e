package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"predictionScope/internal/model"
)

// Caller performs read-only contract calls.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// FetchMarketInfo reads getMarket(marketId) from the market-core contract.
func FetchMarketInfo(ctx context.Context, caller Caller, market common.Address, marketID string) (model.MarketInfo, error) {
	if caller == nil {
		return model.MarketInfo{}, fmt.Errorf("chain client is nil")
	}
	id, ok := new(big.Int).SetString(marketID, 10)
	if !ok {
		return model.MarketInfo{}, fmt.Errorf("invalid market id: %s", marketID)
	}

	parsed, err := PredictionMarketABI()
	if err != nil {
		return model.MarketInfo{}, fmt.Errorf("parse market abi: %w", err)
	}

	data, err := parsed.Pack("getMarket", id)
	if err != nil {
		return model.MarketInfo{}, fmt.Errorf("pack getMarket: %w", err)
	}
	resp, err := caller.CallContract(ctx, ethereum.CallMsg{To: &market, Data: data}, nil)
	if err != nil {
		return model.MarketInfo{}, fmt.Errorf("call getMarket: %w", err)
	}
	values, err := parsed.Unpack("getMarket", resp)
	if err != nil {
		return model.MarketInfo{}, fmt.Errorf("unpack getMarket: %w", err)
	}
	if len(values) != 5 {
		return model.MarketInfo{}, fmt.Errorf("getMarket return size %d", len(values))
	}

	question, ok := values[0].(string)
	if !ok {
		return model.MarketInfo{}, fmt.Errorf("getMarket question type %T", values[0])
	}
	category, _ := values[1].(string)
	resolved, _ := values[3].(bool)
	outcome, _ := values[4].(bool)

	return model.MarketInfo{
		Question: question,
		Category: category,
		Resolved: resolved,
		Outcome:  outcome,
	}, nil
}
