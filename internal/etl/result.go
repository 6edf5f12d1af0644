// Package etl implements the warehouse pipeline: extract raw nflverse
// datasets, transform them into dimension and fact record sets, and load
// them through staging tables into the typed star schema.
package etl

import (
	"fmt"
	"time"
)

// Result tracks counts and errors from a pipeline run.
type Result struct {
	Season int

	TeamsUpserted       int
	DatesInserted       int
	PlayersUpserted     int
	GamesUpserted       int
	PlayerGamesUpserted int
	TeamGamesUpserted   int
	InjuriesInserted    int
	RawPlaysStaged      int

	Duration time.Duration
	Errors   []string
}

// Add merges another Result into this one.
func (r *Result) Add(other Result) {
	r.TeamsUpserted += other.TeamsUpserted
	r.DatesInserted += other.DatesInserted
	r.PlayersUpserted += other.PlayersUpserted
	r.GamesUpserted += other.GamesUpserted
	r.PlayerGamesUpserted += other.PlayerGamesUpserted
	r.TeamGamesUpserted += other.TeamGamesUpserted
	r.InjuriesInserted += other.InjuriesInserted
	r.RawPlaysStaged += other.RawPlaysStaged
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"teams=%d dates=%d players=%d games=%d player_games=%d team_games=%d injuries=%d raw_plays=%d errors=%d",
		r.TeamsUpserted, r.DatesInserted, r.PlayersUpserted, r.GamesUpserted,
		r.PlayerGamesUpserted, r.TeamGamesUpserted, r.InjuriesInserted,
		r.RawPlaysStaged, len(r.Errors),
	)
}
