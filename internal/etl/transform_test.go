package etl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const scheduleCSV = `game_id,season,game_type,week,gameday,home_team,away_team,home_score,away_score,stadium
2025_01_BUF_KC,2025,REG,1,2025-09-07,KC,BUF,27,24,GEHA Field at Arrowhead Stadium
2025_02_KC_NYG,2025,REG,2,2025-09-14,NYG,KC,,,MetLife Stadium
`

func TestTransformSchedules(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "sched.csv", scheduleCSV)

	games, err := TransformSchedules(path)
	require.NoError(t, err)
	require.Len(t, games, 2)

	final := games[0]
	assert.Equal(t, "2025_01_BUF_KC", final.GameID)
	assert.Equal(t, 2025, final.Season)
	assert.Equal(t, 1, final.Week)
	assert.Equal(t, 20250907, final.DateKey)
	assert.Equal(t, "KC", final.HomeTeam)
	assert.Equal(t, "BUF", final.AwayTeam)
	require.True(t, final.Final())
	assert.Equal(t, 27, *final.HomeScore)
	assert.Equal(t, "final", final.Status)

	upcoming := games[1]
	assert.False(t, upcoming.Final())
	assert.Equal(t, "scheduled", upcoming.Status)
	assert.Nil(t, upcoming.HomeScore)
}

func TestTransformSchedulesDropsUnregisteredTeams(t *testing.T) {
	dir := t.TempDir()
	// dim_game requires both teams to resolve in dim_team; games against
	// unregistered opponents never make it out of the transform.
	path := writeFixture(t, dir, "sched.csv", `game_id,season,game_type,week,gameday,home_team,away_team,home_score,away_score,stadium
2025_01_BUF_KC,2025,REG,1,2025-09-07,KC,BUF,27,24,GEHA Field at Arrowhead Stadium
2025_00_XFL_KC,2025,PRE,0,2025-08-10,KC,XFL,,,GEHA Field at Arrowhead Stadium
2024_10_OAK_SD,2024,REG,10,2024-11-10,SD,OAK,17,13,Qualcomm Stadium
`)

	games, err := TransformSchedules(path)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "2025_01_BUF_KC", games[0].GameID)
	assert.Equal(t, "2024_10_OAK_SD", games[1].GameID, "historical abbreviations still resolve")
}

func TestTransformRostersDedupes(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "roster.csv", `season,team,position,status,full_name,first_name,last_name,birth_date,height,weight,college,gsis_id
2025,KC,QB,ACT,Patrick Mahomes,Patrick,Mahomes,1995-09-17,75,225,Texas Tech,00-0033873
2025,XXX,WR,ACT,,Road,Runner,1999-01-01,70,180,,00-0099999
2025,KC,QB,ACT,Patrick Mahomes,Patrick,Mahomes,1995-09-17,75,225,Texas Tech,00-0033873
2025,BUF,QB,ACT,Josh Allen,Josh,Allen,NA,77,237,Wyoming,00-0034857
`)

	players, err := TransformRosters(path)
	require.NoError(t, err)
	require.Len(t, players, 3, "duplicate roster rows collapse by player id")

	assert.Equal(t, "00-0033873", players[0].PlayerID)
	assert.Equal(t, "Patrick Mahomes", players[0].FullName)
	assert.Equal(t, "KC", players[0].TeamID)

	// Unregistered team abbreviations are dropped, and a missing full_name
	// is derived from the name parts.
	assert.Equal(t, "", players[1].TeamID)
	assert.Equal(t, "Road Runner", players[1].FullName)

	// NA normalizes to empty
	assert.Equal(t, "", players[2].BirthDate)
}

const pbpCSV = `game_id,posteam,defteam,drive,drive_time_of_possession,passer_player_id,rusher_player_id,receiver_player_id,pass_attempt,complete_pass,passing_yards,receiving_yards,rushing_yards,pass_touchdown,rush_touchdown,interception,fumble_lost,fumbled_1_player_id,fumbled_1_team
2025_01_BUF_KC,KC,BUF,1,2:30,QB1,,WR1,1,1,25,25,0,0,0,0,0,,
2025_01_BUF_KC,KC,BUF,1,2:30,QB1,,,1,0,0,0,0,0,0,0,0,,
2025_01_BUF_KC,KC,BUF,1,2:30,,RB1,,0,0,0,0,5,0,1,0,0,,
2025_01_BUF_KC,BUF,KC,2,1:00,QB2,,,1,0,0,0,0,0,0,1,0,,
2025_01_BUF_KC,BUF,KC,3,0:45,,RB2,,0,0,0,0,10,0,0,0,1,RB2,BUF
2025_01_BUF_KC,,,0,,,,,0,0,0,0,0,0,0,0,0,,
2099_01_AAA_BBB,AAA,BBB,1,1:00,QB9,,,1,0,0,0,0,0,0,0,0,,
`

func testGames() map[string]GameDim {
	home, away := 27, 24
	return map[string]GameDim{
		"2025_01_BUF_KC": {
			GameID: "2025_01_BUF_KC", Season: 2025, Week: 1, DateKey: 20250907,
			HomeTeam: "KC", AwayTeam: "BUF",
			HomeScore: &home, AwayScore: &away, Status: "final",
		},
	}
}

func TestTransformPBPPlayerLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "pbp.csv", pbpCSV)

	players, _, err := TransformPBP(path, testGames())
	require.NoError(t, err)
	require.Len(t, players, 5, "unscheduled games and dead plays are dropped")

	byID := make(map[string]PlayerGameFact)
	for _, f := range players {
		byID[f.PlayerID] = f
	}

	qb1 := byID["QB1"]
	assert.Equal(t, 2, qb1.PassAttempts)
	assert.Equal(t, 1, qb1.PassCompletions)
	assert.Equal(t, 25, qb1.PassYards)
	assert.Equal(t, 0, qb1.Interceptions)
	assert.Equal(t, "KC", qb1.TeamID)
	assert.Equal(t, "BUF", qb1.OpponentTeamID)
	assert.Equal(t, 20250907, qb1.DateKey)
	assert.InDelta(t, 1.0, qb1.FantasyPoints, 0.001)

	wr1 := byID["WR1"]
	assert.Equal(t, 1, wr1.Receptions)
	assert.Equal(t, 25, wr1.RecYards)
	assert.InDelta(t, 2.5, wr1.FantasyPoints, 0.001)

	rb1 := byID["RB1"]
	assert.Equal(t, 1, rb1.RushAttempts)
	assert.Equal(t, 5, rb1.RushYards)
	assert.Equal(t, 1, rb1.RushTDs)
	assert.InDelta(t, 6.5, rb1.FantasyPoints, 0.001)

	qb2 := byID["QB2"]
	assert.Equal(t, 1, qb2.Interceptions)
	assert.InDelta(t, -2.0, qb2.FantasyPoints, 0.001)

	rb2 := byID["RB2"]
	assert.Equal(t, 1, rb2.Fumbles)
	assert.Equal(t, 10, rb2.RushYards)
	assert.Equal(t, "BUF", rb2.TeamID)
	assert.InDelta(t, -1.0, rb2.FantasyPoints, 0.001)
}

func TestTransformPBPTeamLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "pbp.csv", pbpCSV)

	_, teams, err := TransformPBP(path, testGames())
	require.NoError(t, err)
	require.Len(t, teams, 2)

	byTeam := make(map[string]TeamGameFact)
	for _, f := range teams {
		byTeam[f.TeamID] = f
	}

	kc := byTeam["KC"]
	assert.Equal(t, 25, kc.PassYards)
	assert.Equal(t, 5, kc.RushYards)
	assert.Equal(t, 30, kc.TotalYards)
	assert.Equal(t, 1, kc.Touchdowns)
	assert.Equal(t, 0, kc.Turnovers)
	// Drive 1 possession counted once across its three plays.
	assert.Equal(t, 150, kc.PossessionSeconds)
	assert.Equal(t, 27, kc.Points)
	require.NotNil(t, kc.Win)
	assert.True(t, *kc.Win)

	buf := byTeam["BUF"]
	assert.Equal(t, 2, buf.Turnovers, "interception plus lost fumble")
	assert.Equal(t, 105, buf.PossessionSeconds)
	assert.Equal(t, 24, buf.Points)
	require.NotNil(t, buf.Win)
	assert.False(t, *buf.Win)
}

func TestTransformInjuries(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "injuries.csv", `season,week,team,gsis_id,report_primary_injury,report_status,practice_status
2025,3,KC,00-0033873,Ankle,Questionable,Limited Participation in Practice
2025,3,KC,00-0033873,Ankle,Questionable,Limited Participation in Practice
2025,3,BUF,,Knee,Out,Did Not Participate in Practice
`)

	injuries, err := TransformInjuries(path)
	require.NoError(t, err)
	require.Len(t, injuries, 2, "rows without a player id drop; duplicates are retained")

	assert.Equal(t, "00-0033873", injuries[0].PlayerID)
	assert.Equal(t, 3, injuries[0].Week)
	assert.Equal(t, "Ankle", injuries[0].InjuryType)
	assert.Equal(t, "Questionable", injuries[0].Status)
	assert.Equal(t, injuries[0], injuries[1])
}

func TestFantasyPointsScoring(t *testing.T) {
	f := PlayerGameFact{
		PassYards: 300, PassTDs: 3, Interceptions: 1,
		RushYards: 20, RushTDs: 1,
		RecYards: 0, RecTDs: 0, Fumbles: 1,
	}
	// 12 + 12 - 2 + 2 + 6 - 2
	assert.InDelta(t, 28.0, fantasyPoints(f), 0.001)
}

func TestParseClock(t *testing.T) {
	assert.Equal(t, 150, parseClock("2:30"))
	assert.Equal(t, 60, parseClock("1:00"))
	assert.Equal(t, 0, parseClock(""))
	assert.Equal(t, 0, parseClock("bogus"))
}

func TestKnownTeam(t *testing.T) {
	assert.True(t, KnownTeam("KC"))
	assert.True(t, KnownTeam("OAK"), "historical abbreviations resolve")
	assert.False(t, KnownTeam("XXX"))
}
