// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/statmill/nfldw/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers the statements the load and status
// paths use on every request. Prepared statements eliminate parse overhead
// on repeated execution.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Run state
		"run_state_get":  "SELECT pipeline_name, last_run_at, last_game_date, last_season FROM meta_run_state WHERE pipeline_name = $1",
		"run_state_list": "SELECT pipeline_name, last_run_at, last_game_date, last_season FROM meta_run_state ORDER BY pipeline_name",
		"run_state_upsert": `
			INSERT INTO meta_run_state (pipeline_name, last_run_at, last_game_date, last_season)
			VALUES ($1, NOW(), $2, $3)
			ON CONFLICT (pipeline_name) DO UPDATE SET
				last_run_at = NOW(),
				last_game_date = COALESCE(EXCLUDED.last_game_date, meta_run_state.last_game_date),
				last_season = COALESCE(EXCLUDED.last_season, meta_run_state.last_season)`,

		// Load validation
		"check_fact_player_game_season": "SELECT 1 FROM fact_player_game fpg JOIN dim_game g ON g.game_id = fpg.game_id WHERE g.season = $1 LIMIT 1",
		"check_fact_team_game_season":   "SELECT 1 FROM fact_team_game ftg JOIN dim_game g ON g.game_id = ftg.game_id WHERE g.season = $1 LIMIT 1",

		// Incremental loads
		"max_loaded_date_key": "SELECT COALESCE(MAX(date_key), 0) FROM fact_player_game",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
