package etl

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Transformed set filenames, per season. Headers match the stg_* column
// names so the load stage can map columns by name.
func playersFile(dir string, season int) string {
	return filepath.Join(dir, fmt.Sprintf("dim_players_%d.csv", season))
}

func gamesFile(dir string, season int) string {
	return filepath.Join(dir, fmt.Sprintf("dim_games_%d.csv", season))
}

func playerGameFile(dir string, season int) string {
	return filepath.Join(dir, fmt.Sprintf("fact_player_game_%d.csv", season))
}

func teamGameFile(dir string, season int) string {
	return filepath.Join(dir, fmt.Sprintf("fact_team_game_%d.csv", season))
}

func injuriesFile(dir string, season int) string {
	return filepath.Join(dir, fmt.Sprintf("fact_player_injury_%d.csv", season))
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create transformed dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func writePlayers(path string, players []PlayerDim) error {
	header := []string{"player_id", "first_name", "last_name", "full_name", "position",
		"birth_date", "height", "weight", "college", "team_id", "status"}
	rows := make([][]string, len(players))
	for i, p := range players {
		rows[i] = []string{p.PlayerID, p.FirstName, p.LastName, p.FullName, p.Position,
			p.BirthDate, p.Height, p.Weight, p.College, p.TeamID, p.Status}
	}
	return writeCSV(path, header, rows)
}

func writeGames(path string, games []GameDim) error {
	header := []string{"game_id", "season", "game_type", "week", "game_date",
		"home_team_id", "away_team_id", "home_score", "away_score", "venue"}
	rows := make([][]string, len(games))
	for i, g := range games {
		rows[i] = []string{g.GameID, strconv.Itoa(g.Season), g.GameType, strconv.Itoa(g.Week),
			g.GameDate, g.HomeTeam, g.AwayTeam, optInt(g.HomeScore), optInt(g.AwayScore), g.Venue}
	}
	return writeCSV(path, header, rows)
}

func writePlayerGames(path string, facts []PlayerGameFact) error {
	header := []string{"game_id", "player_id", "team_id", "opponent_team_id", "date_key",
		"pass_attempts", "pass_completions", "pass_yards", "pass_tds", "interceptions",
		"rush_attempts", "rush_yards", "rush_tds",
		"receptions", "rec_yards", "rec_tds",
		"fumbles", "fantasy_points"}
	rows := make([][]string, len(facts))
	for i, f := range facts {
		rows[i] = []string{f.GameID, f.PlayerID, f.TeamID, f.OpponentTeamID, strconv.Itoa(f.DateKey),
			strconv.Itoa(f.PassAttempts), strconv.Itoa(f.PassCompletions), strconv.Itoa(f.PassYards),
			strconv.Itoa(f.PassTDs), strconv.Itoa(f.Interceptions),
			strconv.Itoa(f.RushAttempts), strconv.Itoa(f.RushYards), strconv.Itoa(f.RushTDs),
			strconv.Itoa(f.Receptions), strconv.Itoa(f.RecYards), strconv.Itoa(f.RecTDs),
			strconv.Itoa(f.Fumbles), strconv.FormatFloat(f.FantasyPoints, 'f', 2, 64)}
	}
	return writeCSV(path, header, rows)
}

func writeTeamGames(path string, facts []TeamGameFact) error {
	header := []string{"game_id", "team_id", "opponent_team_id", "date_key",
		"points", "total_yards", "pass_yards", "rush_yards", "turnovers", "touchdowns",
		"time_of_possession_seconds", "win"}
	rows := make([][]string, len(facts))
	for i, f := range facts {
		win := ""
		if f.Win != nil {
			win = strconv.FormatBool(*f.Win)
		}
		rows[i] = []string{f.GameID, f.TeamID, f.OpponentTeamID, strconv.Itoa(f.DateKey),
			strconv.Itoa(f.Points), strconv.Itoa(f.TotalYards), strconv.Itoa(f.PassYards),
			strconv.Itoa(f.RushYards), strconv.Itoa(f.Turnovers), strconv.Itoa(f.Touchdowns),
			strconv.Itoa(f.PossessionSeconds), win}
	}
	return writeCSV(path, header, rows)
}

func writeInjuries(path string, injuries []InjuryFact) error {
	header := []string{"player_id", "team_id", "season", "week",
		"injury_type", "practice_status", "status"}
	rows := make([][]string, len(injuries))
	for i, f := range injuries {
		rows[i] = []string{f.PlayerID, f.TeamID, strconv.Itoa(f.Season), strconv.Itoa(f.Week),
			f.InjuryType, f.PracticeStatus, f.Status}
	}
	return writeCSV(path, header, rows)
}

func optInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
