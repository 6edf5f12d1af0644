package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RunState is one meta_run_state row: the incremental watermark for a named
// pipeline.
type RunState struct {
	Pipeline     string
	LastRunAt    time.Time
	LastGameDate *time.Time
	LastSeason   *int
}

// GetRunState returns the run state for a pipeline, or nil if the pipeline
// has never run.
func GetRunState(ctx context.Context, pool *pgxpool.Pool, pipeline string) (*RunState, error) {
	var rs RunState
	err := pool.QueryRow(ctx, "run_state_get", pipeline).Scan(
		&rs.Pipeline, &rs.LastRunAt, &rs.LastGameDate, &rs.LastSeason)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run state %q: %w", pipeline, err)
	}
	return &rs, nil
}

// ListRunStates returns all pipeline run states.
func ListRunStates(ctx context.Context, pool *pgxpool.Pool) ([]RunState, error) {
	rows, err := pool.Query(ctx, "run_state_list")
	if err != nil {
		return nil, fmt.Errorf("list run states: %w", err)
	}
	defer rows.Close()

	var states []RunState
	for rows.Next() {
		var rs RunState
		if err := rows.Scan(&rs.Pipeline, &rs.LastRunAt, &rs.LastGameDate, &rs.LastSeason); err != nil {
			return nil, fmt.Errorf("scan run state: %w", err)
		}
		states = append(states, rs)
	}
	return states, rows.Err()
}

// UpdateRunState records a successful pipeline run. A nil lastGameDate or
// season keeps the previously stored value.
func UpdateRunState(ctx context.Context, pool *pgxpool.Pool, pipeline string, lastGameDate *time.Time, season *int) error {
	if _, err := pool.Exec(ctx, "run_state_upsert", pipeline, lastGameDate, season); err != nil {
		return fmt.Errorf("update run state %q: %w", pipeline, err)
	}
	return nil
}

// SeasonLoaded reports whether any fact rows exist for a season.
func SeasonLoaded(ctx context.Context, pool *pgxpool.Pool, season int) (bool, error) {
	for _, stmt := range []string{"check_fact_player_game_season", "check_fact_team_game_season"} {
		var one int
		err := pool.QueryRow(ctx, stmt, season).Scan(&one)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("check season %d: %w", season, err)
		}
	}
	return false, nil
}

// MaxLoadedDateKey returns the latest date key present in fact_player_game,
// or 0 when the warehouse holds no facts. It recovers the incremental
// watermark when meta_run_state has been cleared.
func MaxLoadedDateKey(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	var key int
	if err := pool.QueryRow(ctx, "max_loaded_date_key").Scan(&key); err != nil {
		return 0, fmt.Errorf("max loaded date key: %w", err)
	}
	return key, nil
}
