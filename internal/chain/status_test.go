package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyRPCError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("429 Too Many Requests"), "rate_limited"},
		{errors.New("502 Bad Gateway"), "server_error"},
		{fmt.Errorf("post: %w", errors.New("connection refused")), "network_error"},
		{errors.New("query returned more than 10000 results"), "client_error"},
	}
	for _, tc := range cases {
		if got := ClassifyRPCError(tc.err); got != tc.want {
			t.Fatalf("classify %v: got %s want %s", tc.err, got, tc.want)
		}
	}
}
