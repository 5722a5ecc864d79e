package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"predictionScope/internal/model"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		raw      string
		decimals int32
		want     string
	}{
		{"1500000000000000000", 18, "1.5"},
		{"-2000000000000000000", 18, "-2"},
		{"10", 0, "10"},
		{"1", 18, "0"},
	}
	for _, tc := range cases {
		got := formatAmount(decimal.RequireFromString(tc.raw), tc.decimals)
		if got != tc.want {
			t.Fatalf("formatAmount(%s, %d) = %s, want %s", tc.raw, tc.decimals, got, tc.want)
		}
	}
}

func TestPrintLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	printLeaderboard(&buf, []model.UserLeaderboardStats{
		{Rank: 1, Address: "0xbbbb", Username: "bob", TotalPnL: decimal.NewFromInt(4), WinRate: 100, TotalMarkets: 1},
	}, 0)
	out := buf.String()
	if !strings.Contains(out, "RANK") || !strings.Contains(out, "0xbbbb") || !strings.Contains(out, "100.0%") {
		t.Fatalf("unexpected table: %s", out)
	}
}
