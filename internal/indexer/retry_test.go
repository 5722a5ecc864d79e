package indexer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetryStopsAfterBudget(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond}, func(context.Context) error {
		calls++
		return errors.New("timeout")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestRetryValueSucceedsAfterFailure(t *testing.T) {
	calls := 0
	got, err := retryValue(context.Background(), RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}, func(context.Context) (uint64, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("502 bad gateway")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 || calls != 2 {
		t.Fatalf("got %d after %d calls", got, calls)
	}
}

func TestWithRetryHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := withRetry(ctx, RetryPolicy{MaxRetries: 5, BaseDelay: time.Second}, func(context.Context) error {
		calls++
		return errors.New("boom")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("cancelled context should stop retries, got %d calls", calls)
	}
}
