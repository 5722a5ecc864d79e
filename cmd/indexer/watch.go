package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"predictionScope/internal/eventstore"
	"predictionScope/internal/model"
	"predictionScope/internal/storage/postgres"
)

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop, a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer stop()
	defer a.Close()

	if a.cfg.Interval <= 0 {
		a.cfg.Interval = 5 * time.Minute
	}

	if a.cfg.MetricsAddr != "" {
		server := &http.Server{Addr: a.cfg.MetricsAddr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
		a.logger.Info("metrics server start", zap.String("addr", a.cfg.MetricsAddr))
	}

	var pg *postgres.Store
	if a.cfg.PGDSN != "" {
		pg, err = postgres.NewStore(ctx, a.cfg.PGDSN)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	a.logger.Info("watch start", zap.Duration("interval", a.cfg.Interval), zap.Int("top", a.cfg.Top))

	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()
	for {
		watchTick(ctx, a, pg)
		select {
		case <-ctx.Done():
			a.logger.Info("watch stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func watchTick(ctx context.Context, a *app, pg *postgres.Store) {
	if _, err := a.store.Refresh(ctx); err != nil {
		if errors.Is(err, eventstore.ErrAllNetworksFailed) {
			a.logger.Warn("refresh failed, serving cached logs", zap.Error(err))
		} else if ctx.Err() == nil {
			a.logger.Error("refresh failed", zap.Error(err))
		}
		return
	}

	snap := a.store.Snapshot()
	rows := a.aggregator.GetTopUsers(ctx, a.cfg.Top)
	for _, row := range rows {
		a.logger.Info("leaderboard",
			zap.Int("rank", row.Rank),
			zap.String("address", row.Address),
			zap.String("username", row.Username),
			zap.String("pnl", formatAmount(row.TotalPnL, a.cfg.TokenDecimals)),
			zap.Float64("win_rate", row.WinRate),
		)
	}
	a.logger.Info("refresh complete",
		zap.Int("logs", len(snap.Logs)),
		zap.Int("failed_networks", len(snap.NetworkErrors)),
		zap.String("fingerprint", snap.Fingerprint.Hex()),
	)

	if pg == nil {
		return
	}
	fingerprint := snap.Fingerprint.Hex()
	latest, ok, err := pg.LatestFingerprint(ctx, model.TimeframeAll)
	if err != nil {
		a.logger.Warn("load latest snapshot failed", zap.Error(err))
		return
	}
	if ok && latest == fingerprint {
		return
	}
	if _, err := pg.SaveLeaderboard(ctx, postgres.LeaderboardSnapshot{
		Timeframe:   model.TimeframeAll,
		Fingerprint: fingerprint,
		TakenAt:     time.Now().UTC(),
		Rows:        a.aggregator.GenerateLeaderboard(ctx, model.TimeframeAll),
	}); err != nil {
		a.logger.Warn("persist leaderboard failed", zap.Error(err))
	}
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
