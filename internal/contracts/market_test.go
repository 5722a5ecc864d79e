package contracts

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

type fakeCaller struct {
	resp []byte
	err  error
	msgs []ethereum.CallMsg
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.msgs = append(f.msgs, msg)
	return f.resp, f.err
}

func TestFetchMarketInfo(t *testing.T) {
	parsed, err := PredictionMarketABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	resp, err := parsed.Methods["getMarket"].Outputs.Pack("Will BTC close above 100k?", "crypto", big.NewInt(1800000000), true, false)
	if err != nil {
		t.Fatalf("pack outputs: %v", err)
	}

	caller := &fakeCaller{resp: resp}
	market := common.HexToAddress("0x4444444444444444444444444444444444444444")
	info, err := FetchMarketInfo(context.Background(), caller, market, "9")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if info.Question != "Will BTC close above 100k?" || info.Category != "crypto" {
		t.Fatalf("info mismatch: %+v", info)
	}
	if !info.Resolved || info.Outcome {
		t.Fatalf("resolution mismatch: %+v", info)
	}
	if len(caller.msgs) != 1 || *caller.msgs[0].To != market {
		t.Fatalf("call target mismatch")
	}
}

func TestFetchMarketInfoErrors(t *testing.T) {
	market := common.HexToAddress("0x4444444444444444444444444444444444444444")
	if _, err := FetchMarketInfo(context.Background(), nil, market, "1"); err == nil {
		t.Fatalf("expected error for nil caller")
	}
	if _, err := FetchMarketInfo(context.Background(), &fakeCaller{}, market, "abc"); err == nil {
		t.Fatalf("expected error for invalid id")
	}
	if _, err := FetchMarketInfo(context.Background(), &fakeCaller{err: errors.New("execution reverted")}, market, "1"); err == nil {
		t.Fatalf("expected call error")
	}
}
