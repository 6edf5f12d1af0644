package etl

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/statmill/nfldw/internal/nflverse"
)

// --------------------------------------------------------------------------
// Rosters -> dim_player
// --------------------------------------------------------------------------

// TransformRosters shapes a seasonal roster file into dim_player rows,
// deduplicated by player identifier (a player traded mid-season appears on
// multiple rosters; the first row wins, matching feed order).
func TransformRosters(path string) ([]PlayerDim, error) {
	var players []PlayerDim
	seen := make(map[string]bool)

	err := nflverse.ForEachFile(path, func(row nflverse.Row) error {
		id := row.Get("gsis_id")
		if id == "" {
			id = row.Get("player_id")
		}
		if id == "" || seen[id] {
			return nil
		}
		seen[id] = true

		first := row.Get("first_name")
		last := row.Get("last_name")
		full := row.Get("full_name")
		if full == "" {
			full = strings.TrimSpace(first + " " + last)
		}

		team := row.Get("team")
		if !KnownTeam(team) {
			team = ""
		}

		players = append(players, PlayerDim{
			PlayerID:  id,
			FirstName: first,
			LastName:  last,
			FullName:  full,
			Position:  row.Get("position"),
			BirthDate: row.Get("birth_date"),
			Height:    row.Get("height"),
			Weight:    row.Get("weight"),
			College:   row.Get("college"),
			TeamID:    team,
			Status:    row.Get("status"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("transform rosters: %w", err)
	}
	return players, nil
}

// --------------------------------------------------------------------------
// Schedules -> dim_game
// --------------------------------------------------------------------------

// TransformSchedules shapes a season schedule file into dim_game rows.
func TransformSchedules(path string) ([]GameDim, error) {
	var games []GameDim

	err := nflverse.ForEachFile(path, func(row nflverse.Row) error {
		id := row.Get("game_id")
		if id == "" {
			return nil
		}
		// Games against teams outside the franchise registry (preseason
		// exhibitions, feed glitches) can't satisfy the dim_game team keys.
		if !KnownTeam(row.Get("home_team")) || !KnownTeam(row.Get("away_team")) {
			return nil
		}

		g := GameDim{
			GameID:   id,
			Season:   row.Int("season"),
			GameType: row.Get("game_type"),
			Week:     row.Int("week"),
			GameDate: row.Get("gameday"),
			DateKey:  DateKeyFromISO(row.Get("gameday")),
			HomeTeam: row.Get("home_team"),
			AwayTeam: row.Get("away_team"),
			Venue:    row.Get("stadium"),
			Status:   "scheduled",
		}
		if hs := row.Get("home_score"); hs != "" {
			n := row.Int("home_score")
			g.HomeScore = &n
		}
		if as := row.Get("away_score"); as != "" {
			n := row.Int("away_score")
			g.AwayScore = &n
		}
		if g.Final() {
			g.Status = "final"
		}

		games = append(games, g)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("transform schedules: %w", err)
	}
	return games, nil
}

// GameIndex builds a game_id lookup over dim_game rows.
func GameIndex(games []GameDim) map[string]GameDim {
	idx := make(map[string]GameDim, len(games))
	for _, g := range games {
		idx[g.GameID] = g
	}
	return idx
}

// --------------------------------------------------------------------------
// Play-by-play -> fact_player_game + fact_team_game
// --------------------------------------------------------------------------

type playerKey struct {
	gameID   string
	playerID string
}

type teamKey struct {
	gameID string
	teamID string
}

// TransformPBP aggregates a play-by-play file into per-player and per-team
// game facts. Credit per play goes to the passer, rusher, and receiver
// independently; team turnovers are charged to the possession team.
//
// Only plays for games present in the schedule index are kept — the index
// supplies date keys, opponents, final scores, and the win flag.
func TransformPBP(path string, games map[string]GameDim) ([]PlayerGameFact, []TeamGameFact, error) {
	players := make(map[playerKey]*PlayerGameFact)
	teams := make(map[teamKey]*TeamGameFact)
	// Drive-level time of possession must be counted once per drive, not
	// once per play.
	drivesSeen := make(map[teamKey]map[int]bool)

	playerFor := func(gameID, playerID, team, opponent string, dateKey int) *PlayerGameFact {
		k := playerKey{gameID, playerID}
		f, ok := players[k]
		if !ok {
			f = &PlayerGameFact{
				GameID: gameID, PlayerID: playerID,
				TeamID: team, OpponentTeamID: opponent, DateKey: dateKey,
			}
			players[k] = f
		}
		return f
	}

	err := nflverse.ForEachFile(path, func(row nflverse.Row) error {
		gameID := row.Get("game_id")
		game, ok := games[gameID]
		if !ok {
			return nil
		}
		posteam := row.Get("posteam")
		defteam := row.Get("defteam")
		if posteam == "" {
			return nil // kickoffs, timeouts, end-of-quarter rows
		}

		// Team aggregate for the possession team
		tk := teamKey{gameID, posteam}
		t, ok := teams[tk]
		if !ok {
			t = &TeamGameFact{
				GameID: gameID, TeamID: posteam,
				OpponentTeamID: defteam, DateKey: game.DateKey,
			}
			teams[tk] = t
			drivesSeen[tk] = make(map[int]bool)
		}

		passYards := row.Int("passing_yards")
		rushYards := row.Int("rushing_yards")
		recYards := row.Int("receiving_yards")
		passTD := row.Flag("pass_touchdown")
		rushTD := row.Flag("rush_touchdown")
		intercepted := row.Flag("interception")
		complete := row.Flag("complete_pass")
		fumbleLost := row.Flag("fumble_lost")

		t.PassYards += passYards
		t.RushYards += rushYards
		t.TotalYards += passYards + rushYards
		if passTD || rushTD {
			t.Touchdowns++
		}
		if intercepted {
			t.Turnovers++
		}
		if fumbleLost {
			t.Turnovers++
		}
		if drive := row.Int("drive"); drive > 0 && !drivesSeen[tk][drive] {
			drivesSeen[tk][drive] = true
			t.PossessionSeconds += parseClock(row.Get("drive_time_of_possession"))
		}

		// Passer line
		if id := row.Get("passer_player_id"); id != "" {
			f := playerFor(gameID, id, posteam, defteam, game.DateKey)
			if row.Flag("pass_attempt") {
				f.PassAttempts++
			}
			if complete {
				f.PassCompletions++
			}
			f.PassYards += passYards
			if passTD {
				f.PassTDs++
			}
			if intercepted {
				f.Interceptions++
			}
		}

		// Rusher line
		if id := row.Get("rusher_player_id"); id != "" {
			f := playerFor(gameID, id, posteam, defteam, game.DateKey)
			if row.Flag("rush_attempt") {
				f.RushAttempts++
			}
			f.RushYards += rushYards
			if rushTD {
				f.RushTDs++
			}
		}

		// Receiver line
		if id := row.Get("receiver_player_id"); id != "" {
			f := playerFor(gameID, id, posteam, defteam, game.DateKey)
			if complete {
				f.Receptions++
				f.RecYards += recYards
			}
			if passTD && complete {
				f.RecTDs++
			}
		}

		// Fumble charged to the player who lost it
		if fumbleLost {
			if id := row.Get("fumbled_1_player_id"); id != "" {
				team := row.Get("fumbled_1_team")
				opp := defteam
				if team == "" {
					team = posteam
				} else if team != posteam {
					opp = posteam
				}
				f := playerFor(gameID, id, team, opp, game.DateKey)
				f.Fumbles++
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("transform pbp: %w", err)
	}

	playerFacts := make([]PlayerGameFact, 0, len(players))
	for _, f := range players {
		f.FantasyPoints = fantasyPoints(*f)
		playerFacts = append(playerFacts, *f)
	}
	sort.Slice(playerFacts, func(i, j int) bool {
		if playerFacts[i].GameID != playerFacts[j].GameID {
			return playerFacts[i].GameID < playerFacts[j].GameID
		}
		return playerFacts[i].PlayerID < playerFacts[j].PlayerID
	})

	teamFacts := make([]TeamGameFact, 0, len(teams))
	for _, t := range teams {
		if game, ok := games[t.GameID]; ok && game.Final() {
			t.Points, t.Win = finalScore(game, t.TeamID)
		}
		teamFacts = append(teamFacts, *t)
	}
	sort.Slice(teamFacts, func(i, j int) bool {
		if teamFacts[i].GameID != teamFacts[j].GameID {
			return teamFacts[i].GameID < teamFacts[j].GameID
		}
		return teamFacts[i].TeamID < teamFacts[j].TeamID
	})

	return playerFacts, teamFacts, nil
}

// finalScore returns a team's points and win flag from a final game.
// Ties produce win=false for both teams.
func finalScore(g GameDim, teamID string) (int, *bool) {
	var us, them int
	switch teamID {
	case g.HomeTeam:
		us, them = *g.HomeScore, *g.AwayScore
	case g.AwayTeam:
		us, them = *g.AwayScore, *g.HomeScore
	default:
		return 0, nil
	}
	win := us > them
	return us, &win
}

// fantasyPoints applies standard (non-PPR) fantasy scoring.
func fantasyPoints(f PlayerGameFact) float64 {
	pts := 0.04*float64(f.PassYards) +
		4*float64(f.PassTDs) -
		2*float64(f.Interceptions) +
		0.1*float64(f.RushYards) +
		6*float64(f.RushTDs) +
		0.1*float64(f.RecYards) +
		6*float64(f.RecTDs) -
		2*float64(f.Fumbles)
	return math.Round(pts*100) / 100
}

// parseClock converts a "MM:SS" possession clock into seconds.
func parseClock(s string) int {
	if s == "" {
		return 0
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	m, err1 := strconv.Atoi(parts[0])
	sec, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0
	}
	return m*60 + sec
}

// --------------------------------------------------------------------------
// Injuries -> fact_player_injury
// --------------------------------------------------------------------------

// TransformInjuries shapes an injury report file into append-only injury
// facts. Rows without a player identifier are dropped; duplicates are kept.
func TransformInjuries(path string) ([]InjuryFact, error) {
	var injuries []InjuryFact

	err := nflverse.ForEachFile(path, func(row nflverse.Row) error {
		id := row.Get("gsis_id")
		if id == "" {
			id = row.Get("player_id")
		}
		if id == "" {
			return nil
		}
		team := row.Get("team")
		if !KnownTeam(team) {
			team = ""
		}
		injuries = append(injuries, InjuryFact{
			PlayerID:       id,
			TeamID:         team,
			Season:         row.Int("season"),
			Week:           row.Int("week"),
			InjuryType:     row.Get("report_primary_injury"),
			PracticeStatus: row.Get("practice_status"),
			Status:         row.Get("report_status"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("transform injuries: %w", err)
	}
	return injuries, nil
}
