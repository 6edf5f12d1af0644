package etl

// PlayerDim is one dim_player row produced by the roster transform.
type PlayerDim struct {
	PlayerID  string
	FirstName string
	LastName  string
	FullName  string
	Position  string
	BirthDate string // YYYY-MM-DD, empty if unknown
	Height    string
	Weight    string
	College   string
	TeamID    string
	Status    string
}

// GameDim is one dim_game row produced by the schedule transform.
type GameDim struct {
	GameID    string
	Season    int
	GameType  string
	Week      int
	GameDate  string // YYYY-MM-DD
	DateKey   int
	HomeTeam  string
	AwayTeam  string
	HomeScore *int
	AwayScore *int
	Status    string
	Venue     string
}

// Final reports whether the game has a recorded result.
func (g GameDim) Final() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// PlayerGameFact is one fact_player_game row: a player's aggregate line for
// a single game.
type PlayerGameFact struct {
	GameID         string
	PlayerID       string
	TeamID         string
	OpponentTeamID string
	DateKey        int

	PassAttempts    int
	PassCompletions int
	PassYards       int
	PassTDs         int
	Interceptions   int

	RushAttempts int
	RushYards    int
	RushTDs      int

	Receptions int
	RecYards   int
	RecTDs     int

	Fumbles       int
	FantasyPoints float64
}

// TeamGameFact is one fact_team_game row: a team's aggregate line for a
// single game.
type TeamGameFact struct {
	GameID         string
	TeamID         string
	OpponentTeamID string
	DateKey        int

	Points            int
	TotalYards        int
	PassYards         int
	RushYards         int
	Turnovers         int
	Touchdowns        int
	PossessionSeconds int
	Win               *bool
}

// InjuryFact is one fact_player_injury row. The injury log is append-only:
// duplicate (player, season, week) entries are expected and retained.
type InjuryFact struct {
	PlayerID       string
	TeamID         string
	Season         int
	Week           int
	InjuryType     string
	PracticeStatus string
	Status         string
}
