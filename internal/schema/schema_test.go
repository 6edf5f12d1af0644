package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesDeclared(t *testing.T) {
	want := []string{
		"dim_date", "dim_game", "dim_player", "dim_team",
		"fact_player_game", "fact_player_injury", "fact_team_game",
		"meta_run_state",
		"stg_games", "stg_injuries", "stg_pbp_raw", "stg_player_game",
		"stg_players", "stg_team_game",
	}
	assert.Equal(t, want, Tables())
}

func TestCompositeFactKeys(t *testing.T) {
	// The grain of the fact tables: at most one row per team per game and
	// per player per game.
	assert.Contains(t, ddl, "PRIMARY KEY (game_id, team_id)")
	assert.Contains(t, ddl, "PRIMARY KEY (game_id, player_id)")
}

func TestInjuryLogHasNoNaturalKey(t *testing.T) {
	// fact_player_injury is append-only: its only key is the surrogate.
	start := strings.Index(ddl, "CREATE TABLE IF NOT EXISTS fact_player_injury")
	require.GreaterOrEqual(t, start, 0)
	end := strings.Index(ddl[start:], ";")
	require.Greater(t, end, 0)
	block := ddl[start : start+end]

	assert.Contains(t, block, "BIGSERIAL PRIMARY KEY")
	assert.NotContains(t, block, "UNIQUE")
}

func TestEveryStatementIsIdempotent(t *testing.T) {
	for _, line := range strings.Split(ddl, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "CREATE TABLE") || strings.HasPrefix(trimmed, "CREATE INDEX") {
			assert.Contains(t, trimmed, "IF NOT EXISTS", "statement: %s", trimmed)
		}
	}
}
