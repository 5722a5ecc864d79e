package activity

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"

	"predictionScope/internal/contracts"
)

type fakeCaller struct {
	mu    sync.Mutex
	resp  []byte
	calls int
}

func (f *fakeCaller) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.resp, nil
}

func (f *fakeCaller) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeCaller) respond(t *testing.T, question, category string) {
	t.Helper()
	parsed, err := contracts.PredictionMarketABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	resp, err := parsed.Methods["getMarket"].Outputs.Pack(question, category, big.NewInt(0), false, false)
	if err != nil {
		t.Fatalf("pack outputs: %v", err)
	}
	f.mu.Lock()
	f.resp = resp
	f.mu.Unlock()
}
