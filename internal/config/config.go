// Package config provides centralized configuration loaded from environment
// variables. Shared by every nfldw-etl subcommand.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// --------------------------------------------------------------------------
// Pipeline names — keys into meta_run_state
// --------------------------------------------------------------------------

const (
	PipelinePBP      = "pbp"
	PipelineRosters  = "rosters"
	PipelineInjuries = "injuries"
)

// --------------------------------------------------------------------------
// Table names — single source of truth, matches internal/schema/ddl.sql
// --------------------------------------------------------------------------

const (
	DimDateTable          = "dim_date"
	DimTeamTable          = "dim_team"
	DimPlayerTable        = "dim_player"
	DimGameTable          = "dim_game"
	FactTeamGameTable     = "fact_team_game"
	FactPlayerGameTable   = "fact_player_game"
	FactPlayerInjuryTable = "fact_player_injury"
	StgPBPRawTable        = "stg_pbp_raw"
	StgPlayersTable       = "stg_players"
	StgGamesTable         = "stg_games"
	StgPlayerGameTable    = "stg_player_game"
	StgTeamGameTable      = "stg_team_game"
	StgInjuriesTable      = "stg_injuries"
	MetaRunStateTable     = "meta_run_state"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Local working directories
	RawDir         string
	TransformedDir string

	// nflverse downloads
	NFLverseBaseURL   string
	HTTPTimeout       time.Duration
	RequestsPerMinute int

	// Staging retention for the prune command
	StagingRetention time.Duration

	Environment string // development, staging, production
	Debug       bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("NFLDW_DATABASE_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or NFLDW_DATABASE_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		RawDir:         envOr("RAW_DIR", "raw"),
		TransformedDir: envOr("TRANSFORMED_DIR", "transformed"),

		NFLverseBaseURL:   envOr("NFLVERSE_BASE_URL", "https://github.com/nflverse/nflverse-data/releases/download"),
		HTTPTimeout:       time.Duration(envInt("HTTP_TIMEOUT_SECONDS", 120)) * time.Second,
		RequestsPerMinute: envInt("REQUESTS_PER_MINUTE", 60),

		StagingRetention: time.Duration(envInt("STAGING_RETENTION_DAYS", 7)) * 24 * time.Hour,

		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CurrentSeason returns the NFL season year for a given date. Seasons are
// labeled by their starting year; weeks played in January and February
// belong to the prior year's season.
func CurrentSeason(now time.Time) int {
	if now.Month() < time.March {
		return now.Year() - 1
	}
	return now.Year()
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}
