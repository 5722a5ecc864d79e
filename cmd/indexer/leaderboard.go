package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"predictionScope/internal/model"
	"predictionScope/internal/storage/postgres"
)

func runLeaderboard(cmd *cobra.Command, _ []string) error {
	ctx, stop, a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer stop()
	defer a.Close()

	timeframe, err := model.ParseTimeframe(a.cfg.Timeframe)
	if err != nil {
		return err
	}

	if _, err := a.fetch(ctx); err != nil {
		return err
	}

	rows := a.aggregator.GenerateLeaderboard(ctx, timeframe)
	if a.cfg.PGDSN != "" {
		if err := persistLeaderboard(ctx, a, timeframe, rows); err != nil {
			return err
		}
	}

	top := rows
	if a.cfg.Top > 0 && len(top) > a.cfg.Top {
		top = top[:a.cfg.Top]
	}
	printLeaderboard(cmd.OutOrStdout(), top, a.cfg.TokenDecimals)
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx, stop, a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer stop()
	defer a.Close()

	if a.cfg.User == "" {
		return fmt.Errorf("user address is required")
	}

	if _, err := a.fetch(ctx); err != nil {
		return err
	}

	userStats := a.aggregator.CalculateUserStats(ctx, a.cfg.User)
	if userStats == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "no activity for %s\n", a.cfg.User)
		return nil
	}

	view := struct {
		Address            string  `json:"address"`
		Username           string  `json:"username,omitempty"`
		Rank               int     `json:"rank"`
		TotalInvested      string  `json:"total_invested"`
		TotalWinnings      string  `json:"total_winnings"`
		TotalPnL           string  `json:"total_pnl"`
		TotalVolume        string  `json:"total_volume"`
		TotalMarkets       int     `json:"total_markets"`
		ResolvedMarkets    int     `json:"resolved_markets"`
		WinRate            float64 `json:"win_rate"`
		RiskAdjustedReturn float64 `json:"risk_adjusted_return"`
		LastActivity       string  `json:"last_activity,omitempty"`
		Activities         int     `json:"activities"`
	}{
		Address:            userStats.Address,
		Username:           userStats.Username,
		Rank:               userStats.Rank,
		TotalInvested:      formatAmount(userStats.TotalInvested, a.cfg.TokenDecimals),
		TotalWinnings:      formatAmount(userStats.TotalWinnings, a.cfg.TokenDecimals),
		TotalPnL:           formatAmount(userStats.TotalPnL, a.cfg.TokenDecimals),
		TotalVolume:        formatAmount(userStats.TotalVolume, a.cfg.TokenDecimals),
		TotalMarkets:       userStats.TotalMarkets,
		ResolvedMarkets:    userStats.ResolvedMarkets,
		WinRate:            userStats.WinRate,
		RiskAdjustedReturn: userStats.RiskAdjustedReturn,
		LastActivity:       formatTimestamp(userStats.LastActivity),
		Activities:         len(a.processor.UserActivities(ctx, a.cfg.User)),
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func persistLeaderboard(ctx context.Context, a *app, timeframe model.Timeframe, rows []model.UserLeaderboardStats) error {
	pg, err := postgres.NewStore(ctx, a.cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if err := pg.EnsureSchema(ctx); err != nil {
		return err
	}
	fingerprint := a.store.Snapshot().Fingerprint.Hex()
	id, err := pg.SaveLeaderboard(ctx, postgres.LeaderboardSnapshot{
		Timeframe:   timeframe,
		Fingerprint: fingerprint,
		TakenAt:     time.Now().UTC(),
		Rows:        rows,
	})
	if err != nil {
		return fmt.Errorf("save leaderboard: %w", err)
	}
	a.logger.Info("leaderboard persisted",
		zap.Int64("snapshot_id", id),
		zap.String("timeframe", string(timeframe)),
		zap.Int("rows", len(rows)),
	)
	return nil
}

func printLeaderboard(w io.Writer, rows []model.UserLeaderboardStats, decimals int32) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tADDRESS\tUSERNAME\tPNL\tINVESTED\tWINNINGS\tWIN RATE\tMARKETS")
	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%.1f%%\t%d\n",
			row.Rank,
			row.Address,
			row.Username,
			formatAmount(row.TotalPnL, decimals),
			formatAmount(row.TotalInvested, decimals),
			formatAmount(row.TotalWinnings, decimals),
			row.WinRate,
			row.TotalMarkets,
		)
	}
	_ = tw.Flush()
}

// formatAmount renders a raw integer amount in whole token units.
func formatAmount(amount decimal.Decimal, decimals int32) string {
	if decimals <= 0 {
		return amount.String()
	}
	out := amount.Shift(-decimals).StringFixed(4)
	if strings.Contains(out, ".") {
		out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	}
	return out
}

func formatTimestamp(ts *uint64) string {
	if ts == nil {
		return ""
	}
	return time.Unix(int64(*ts), 0).UTC().Format(time.RFC3339)
}
