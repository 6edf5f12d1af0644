package etl

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/statmill/nfldw/internal/config"
)

// --------------------------------------------------------------------------
// Dimension seeds
// --------------------------------------------------------------------------

// UpsertTeams writes the static franchise registry to dim_team.
func UpsertTeams(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	count := 0
	for _, t := range Franchises {
		_, err := pool.Exec(ctx, `
			INSERT INTO `+config.DimTeamTable+` (
				team_id, name, city, abbreviation, conference, division, active
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (team_id) DO UPDATE SET
				name = EXCLUDED.name,
				city = EXCLUDED.city,
				conference = EXCLUDED.conference,
				division = EXCLUDED.division,
				active = EXCLUDED.active,
				updated_at = NOW()`,
			t.TeamID, t.Name, t.City, t.TeamID, t.Conference, t.Division, t.Active,
		)
		if err != nil {
			return count, fmt.Errorf("upsert team %s: %w", t.TeamID, err)
		}
		count++
	}
	return count, nil
}

// EnsureDates generates and inserts the calendar dimension for a year range.
// Existing date keys are left untouched; returns the number of new rows.
func EnsureDates(ctx context.Context, pool *pgxpool.Pool, fromYear, toYear int) (int, error) {
	rows := GenerateDates(fromYear, toYear)

	batch := &pgx.Batch{}
	for _, d := range rows {
		batch.Queue(`
			INSERT INTO `+config.DimDateTable+` (
				date_key, full_date, year, month, day, day_of_week, day_name,
				is_weekend, season, season_label, is_playoff_window
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (date_key) DO NOTHING`,
			d.DateKey, d.FullDate, d.Year, d.Month, d.Day, d.DayOfWeek, d.DayName,
			d.IsWeekend, d.Season, d.SeasonLabel, d.IsPlayoffWindow,
		)
	}

	br := pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range rows {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert dim_date: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// --------------------------------------------------------------------------
// Staging
// --------------------------------------------------------------------------

// stageCSV replaces a staging table's contents with a transformed CSV file,
// streamed in via COPY. Columns are matched to the staging table by CSV
// header name.
func stageCSV(ctx context.Context, pool *pgxpool.Pool, table string, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read header %s: %w", path, err)
	}
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	if _, err := pool.Exec(ctx, "TRUNCATE "+table); err != nil {
		return 0, fmt.Errorf("truncate %s: %w", table, err)
	}

	source := pgx.CopyFromFunc(func() ([]any, error) {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		values := make([]any, len(columns))
		for i := range columns {
			if i < len(rec) {
				values[i] = rec[i]
			}
		}
		return values, nil
	})

	n, err := pool.CopyFrom(ctx, pgx.Identifier{table}, columns, source)
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// StageRawPBP copies a season's play-by-play rows into the raw JSONB landing
// table, replacing any previous load of the same season. Each play is stored
// as a flat JSON object of its non-empty columns.
func StageRawPBP(ctx context.Context, pool *pgxpool.Pool, season int, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read header %s: %w", path, err)
	}
	names := make([]string, len(header))
	copy(names, header)
	gameIdx := -1
	for i, name := range names {
		if name == "game_id" {
			gameIdx = i
		}
	}

	if _, err := pool.Exec(ctx,
		"DELETE FROM "+config.StgPBPRawTable+" WHERE season = $1", season); err != nil {
		return 0, fmt.Errorf("clear stg_pbp_raw season %d: %w", season, err)
	}

	source := pgx.CopyFromFunc(func() ([]any, error) {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		payload := make(map[string]string, len(names))
		gameID := ""
		for i, name := range names {
			if i >= len(rec) {
				continue
			}
			v := rec[i]
			if v == "" || v == "NA" {
				continue
			}
			payload[name] = v
			if i == gameIdx {
				gameID = v
			}
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		return []any{season, gameID, string(body)}, nil
	})

	n, err := pool.CopyFrom(ctx, pgx.Identifier{config.StgPBPRawTable},
		[]string{"season", "game_id", "payload"}, source)
	if err != nil {
		return 0, fmt.Errorf("copy into stg_pbp_raw: %w", err)
	}
	return n, nil
}

// --------------------------------------------------------------------------
// Staging -> typed upserts
// --------------------------------------------------------------------------

// UpsertPlayersFromStg moves staged roster rows into dim_player. Existing
// attributes are only overwritten by non-null incoming values — a sparse
// roster feed must not erase known biography.
func UpsertPlayersFromStg(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	tag, err := pool.Exec(ctx, `
		INSERT INTO `+config.DimPlayerTable+` (
			player_id, first_name, last_name, full_name, position,
			birth_date, height, weight, college, current_team_id, active
		)
		SELECT DISTINCT ON (player_id)
			player_id,
			NULLIF(first_name, ''),
			NULLIF(last_name, ''),
			NULLIF(full_name, ''),
			NULLIF(position, ''),
			NULLIF(birth_date, '')::date,
			NULLIF(height, ''),
			NULLIF(weight, ''),
			NULLIF(college, ''),
			NULLIF(team_id, ''),
			status IS DISTINCT FROM 'RET'
		FROM `+config.StgPlayersTable+`
		WHERE player_id <> ''
		ON CONFLICT (player_id) DO UPDATE SET
			first_name = COALESCE(EXCLUDED.first_name, dim_player.first_name),
			last_name = COALESCE(EXCLUDED.last_name, dim_player.last_name),
			full_name = COALESCE(EXCLUDED.full_name, dim_player.full_name),
			position = COALESCE(EXCLUDED.position, dim_player.position),
			birth_date = COALESCE(EXCLUDED.birth_date, dim_player.birth_date),
			height = COALESCE(EXCLUDED.height, dim_player.height),
			weight = COALESCE(EXCLUDED.weight, dim_player.weight),
			college = COALESCE(EXCLUDED.college, dim_player.college),
			current_team_id = COALESCE(EXCLUDED.current_team_id, dim_player.current_team_id),
			active = EXCLUDED.active,
			updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("upsert dim_player from staging: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpsertGamesFromStg moves staged schedule rows into dim_game. The date key
// is derived from the game date; scores and status refresh on every load so
// in-progress seasons converge to finals. Rows naming a team outside dim_team
// are dropped by the joins rather than failing the whole statement.
func UpsertGamesFromStg(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	tag, err := pool.Exec(ctx, `
		INSERT INTO `+config.DimGameTable+` (
			game_id, season, game_type, week, date_key,
			home_team_id, away_team_id, home_score, away_score, status, venue
		)
		SELECT
			s.game_id,
			s.season::int,
			COALESCE(NULLIF(s.game_type, ''), 'REG'),
			s.week::int,
			REPLACE(s.game_date, '-', '')::int,
			s.home_team_id,
			s.away_team_id,
			NULLIF(s.home_score, '')::int,
			NULLIF(s.away_score, '')::int,
			CASE WHEN s.home_score <> '' AND s.away_score <> '' THEN 'final' ELSE 'scheduled' END,
			NULLIF(s.venue, '')
		FROM `+config.StgGamesTable+` s
		JOIN `+config.DimTeamTable+` h ON h.team_id = s.home_team_id
		JOIN `+config.DimTeamTable+` a ON a.team_id = s.away_team_id
		WHERE s.game_id <> '' AND s.game_date <> ''
		ON CONFLICT (game_id) DO UPDATE SET
			week = EXCLUDED.week,
			date_key = EXCLUDED.date_key,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			status = EXCLUDED.status,
			venue = COALESCE(EXCLUDED.venue, dim_game.venue),
			updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("upsert dim_game from staging: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpsertPlayerGamesFromStg moves staged player-game aggregates into
// fact_player_game. Rows at or before sinceKey are skipped (incremental
// loads); pass 0 to load everything staged. Rows referencing unknown players
// or games are dropped by the joins rather than tripping foreign keys.
func UpsertPlayerGamesFromStg(ctx context.Context, pool *pgxpool.Pool, sinceKey int) (int64, error) {
	tag, err := pool.Exec(ctx, `
		INSERT INTO `+config.FactPlayerGameTable+` (
			game_id, player_id, team_id, opponent_team_id, date_key,
			pass_attempts, pass_completions, pass_yards, pass_tds, interceptions,
			rush_attempts, rush_yards, rush_tds,
			receptions, rec_yards, rec_tds,
			fumbles, fantasy_points
		)
		SELECT
			s.game_id, s.player_id,
			NULLIF(s.team_id, ''), NULLIF(s.opponent_team_id, ''), s.date_key::int,
			s.pass_attempts::int, s.pass_completions::int, s.pass_yards::int,
			s.pass_tds::int, s.interceptions::int,
			s.rush_attempts::int, s.rush_yards::int, s.rush_tds::int,
			s.receptions::int, s.rec_yards::int, s.rec_tds::int,
			s.fumbles::int, s.fantasy_points::numeric
		FROM `+config.StgPlayerGameTable+` s
		JOIN `+config.DimPlayerTable+` p ON p.player_id = s.player_id
		JOIN `+config.DimGameTable+` g ON g.game_id = s.game_id
		WHERE s.date_key::int > $1
		ON CONFLICT (game_id, player_id) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			opponent_team_id = EXCLUDED.opponent_team_id,
			date_key = EXCLUDED.date_key,
			pass_attempts = EXCLUDED.pass_attempts,
			pass_completions = EXCLUDED.pass_completions,
			pass_yards = EXCLUDED.pass_yards,
			pass_tds = EXCLUDED.pass_tds,
			interceptions = EXCLUDED.interceptions,
			rush_attempts = EXCLUDED.rush_attempts,
			rush_yards = EXCLUDED.rush_yards,
			rush_tds = EXCLUDED.rush_tds,
			receptions = EXCLUDED.receptions,
			rec_yards = EXCLUDED.rec_yards,
			rec_tds = EXCLUDED.rec_tds,
			fumbles = EXCLUDED.fumbles,
			fantasy_points = EXCLUDED.fantasy_points,
			loaded_at = NOW()`, sinceKey)
	if err != nil {
		return 0, fmt.Errorf("upsert fact_player_game from staging: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpsertTeamGamesFromStg moves staged team-game aggregates into
// fact_team_game with the same incremental semantics as the player facts.
func UpsertTeamGamesFromStg(ctx context.Context, pool *pgxpool.Pool, sinceKey int) (int64, error) {
	tag, err := pool.Exec(ctx, `
		INSERT INTO `+config.FactTeamGameTable+` (
			game_id, team_id, opponent_team_id, date_key,
			points, total_yards, pass_yards, rush_yards,
			turnovers, touchdowns, time_of_possession_seconds, win
		)
		SELECT
			s.game_id, s.team_id,
			NULLIF(s.opponent_team_id, ''), s.date_key::int,
			s.points::int, s.total_yards::int, s.pass_yards::int, s.rush_yards::int,
			s.turnovers::int, s.touchdowns::int, s.time_of_possession_seconds::int,
			NULLIF(s.win, '')::boolean
		FROM `+config.StgTeamGameTable+` s
		JOIN `+config.DimTeamTable+` t ON t.team_id = s.team_id
		JOIN `+config.DimGameTable+` g ON g.game_id = s.game_id
		WHERE s.date_key::int > $1
		ON CONFLICT (game_id, team_id) DO UPDATE SET
			opponent_team_id = EXCLUDED.opponent_team_id,
			date_key = EXCLUDED.date_key,
			points = EXCLUDED.points,
			total_yards = EXCLUDED.total_yards,
			pass_yards = EXCLUDED.pass_yards,
			rush_yards = EXCLUDED.rush_yards,
			turnovers = EXCLUDED.turnovers,
			touchdowns = EXCLUDED.touchdowns,
			time_of_possession_seconds = EXCLUDED.time_of_possession_seconds,
			win = EXCLUDED.win,
			loaded_at = NOW()`, sinceKey)
	if err != nil {
		return 0, fmt.Errorf("upsert fact_team_game from staging: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ReplaceInjuriesFromStg reloads a season's injury log from staging. The log
// is append-only within a season (duplicate player/week entries survive), so
// a reload replaces the season wholesale instead of upserting.
func ReplaceInjuriesFromStg(ctx context.Context, pool *pgxpool.Pool, season int) (int64, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin injuries load: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"DELETE FROM "+config.FactPlayerInjuryTable+" WHERE season = $1", season); err != nil {
		return 0, fmt.Errorf("clear injuries season %d: %w", season, err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO `+config.FactPlayerInjuryTable+` (
			player_id, team_id, season, week, injury_type, practice_status, status
		)
		SELECT
			s.player_id,
			NULLIF(s.team_id, ''),
			s.season::int, s.week::int,
			NULLIF(s.injury_type, ''),
			NULLIF(s.practice_status, ''),
			NULLIF(s.status, '')
		FROM `+config.StgInjuriesTable+` s
		JOIN `+config.DimPlayerTable+` p ON p.player_id = s.player_id
		WHERE s.season::int = $1`, season)
	if err != nil {
		return 0, fmt.Errorf("insert fact_player_injury from staging: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit injuries load: %w", err)
	}
	return tag.RowsAffected(), nil
}
