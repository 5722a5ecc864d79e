package chain

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestBlockTimestampServedFromCache(t *testing.T) {
	client := &Client{tsCache: map[uint64]uint64{5: 1700000000}}
	ts, err := client.BlockTimestamp(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != 1700000000 {
		t.Fatalf("timestamp mismatch: %d", ts)
	}
}

func TestWaitHonorsRateLimit(t *testing.T) {
	client := &Client{network: "CELO_MAINNET", limiter: rate.NewLimiter(rate.Every(time.Hour), 1)}
	if err := client.wait(context.Background()); err != nil {
		t.Fatalf("first token should be free: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := client.wait(ctx); err == nil {
		t.Fatalf("expected wait to stop on context deadline")
	}
}

func TestWaitWithoutLimiter(t *testing.T) {
	client := &Client{}
	for i := 0; i < 10; i++ {
		if err := client.wait(context.Background()); err != nil {
			t.Fatalf("unlimited client should not wait: %v", err)
		}
	}
}
