package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"predictionScope/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS leaderboard_snapshots (
	id          BIGSERIAL PRIMARY KEY,
	timeframe   TEXT        NOT NULL,
	fingerprint TEXT        NOT NULL,
	taken_at    TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (timeframe, fingerprint)
);
CREATE TABLE IF NOT EXISTS leaderboard_entries (
	snapshot_id          BIGINT  NOT NULL REFERENCES leaderboard_snapshots(id) ON DELETE CASCADE,
	rank                 INTEGER NOT NULL,
	address              TEXT    NOT NULL,
	username             TEXT    NOT NULL DEFAULT '',
	total_invested       NUMERIC NOT NULL,
	total_winnings       NUMERIC NOT NULL,
	total_pnl            NUMERIC NOT NULL,
	total_volume         NUMERIC NOT NULL,
	total_markets        INTEGER NOT NULL,
	resolved_markets     INTEGER NOT NULL,
	won_markets          INTEGER NOT NULL,
	win_rate             DOUBLE PRECISION NOT NULL,
	risk_adjusted_return DOUBLE PRECISION NOT NULL,
	last_activity        BIGINT,
	PRIMARY KEY (snapshot_id, address)
);
`

// LeaderboardSnapshot is one persisted leaderboard.
type LeaderboardSnapshot struct {
	Timeframe   model.Timeframe
	Fingerprint string
	TakenAt     time.Time
	Rows        []model.UserLeaderboardStats
}

// Store persists leaderboard snapshots to Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the leaderboard tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveLeaderboard writes a snapshot and its rows. A snapshot with the same
// timeframe and fingerprint replaces the earlier rows. It returns the
// snapshot id.
func (s *Store) SaveLeaderboard(ctx context.Context, snap LeaderboardSnapshot) (int64, error) {
	if snap.Timeframe == "" || snap.Fingerprint == "" {
		return 0, fmt.Errorf("timeframe and fingerprint required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO leaderboard_snapshots (timeframe, fingerprint, taken_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (timeframe, fingerprint)
		DO UPDATE SET taken_at = EXCLUDED.taken_at
		RETURNING id
	`, string(snap.Timeframe), snap.Fingerprint, snap.TakenAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM leaderboard_entries WHERE snapshot_id = $1`, id); err != nil {
		return 0, fmt.Errorf("clear entries: %w", err)
	}

	if len(snap.Rows) > 0 {
		batch := &pgx.Batch{}
		for _, row := range snap.Rows {
			var lastActivity *int64
			if row.LastActivity != nil {
				val := int64(*row.LastActivity)
				lastActivity = &val
			}
			batch.Queue(`
				INSERT INTO leaderboard_entries (
					snapshot_id, rank, address, username, total_invested, total_winnings,
					total_pnl, total_volume, total_markets, resolved_markets, won_markets,
					win_rate, risk_adjusted_return, last_activity
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			`,
				id,
				row.Rank,
				row.Address,
				row.Username,
				row.TotalInvested.String(),
				row.TotalWinnings.String(),
				row.TotalPnL.String(),
				row.TotalVolume.String(),
				row.TotalMarkets,
				row.ResolvedMarkets,
				row.WonMarkets,
				row.WinRate,
				row.RiskAdjustedReturn,
				lastActivity,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for range snap.Rows {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return 0, fmt.Errorf("insert entry: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// LatestFingerprint returns the fingerprint of the newest snapshot for a
// timeframe.
func (s *Store) LatestFingerprint(ctx context.Context, timeframe model.Timeframe) (string, bool, error) {
	var fingerprint string
	row := s.pool.QueryRow(ctx, `
		SELECT fingerprint FROM leaderboard_snapshots
		WHERE timeframe = $1
		ORDER BY taken_at DESC, id DESC
		LIMIT 1
	`, string(timeframe))
	if err := row.Scan(&fingerprint); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return fingerprint, true, nil
}
