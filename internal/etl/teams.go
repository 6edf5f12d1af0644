package etl

// TeamDim is one dim_team row.
type TeamDim struct {
	TeamID     string
	Name       string
	City       string
	Conference string
	Division   string
	Active     bool
}

// Franchises is the static dim_team seed. Relocated or rebranded franchises
// keep their historical abbreviation as an inactive row so old fact rows
// still resolve.
var Franchises = []TeamDim{
	{TeamID: "ARI", Name: "Cardinals", City: "Arizona", Conference: "NFC", Division: "West", Active: true},
	{TeamID: "ATL", Name: "Falcons", City: "Atlanta", Conference: "NFC", Division: "South", Active: true},
	{TeamID: "BAL", Name: "Ravens", City: "Baltimore", Conference: "AFC", Division: "North", Active: true},
	{TeamID: "BUF", Name: "Bills", City: "Buffalo", Conference: "AFC", Division: "East", Active: true},
	{TeamID: "CAR", Name: "Panthers", City: "Carolina", Conference: "NFC", Division: "South", Active: true},
	{TeamID: "CHI", Name: "Bears", City: "Chicago", Conference: "NFC", Division: "North", Active: true},
	{TeamID: "CIN", Name: "Bengals", City: "Cincinnati", Conference: "AFC", Division: "North", Active: true},
	{TeamID: "CLE", Name: "Browns", City: "Cleveland", Conference: "AFC", Division: "North", Active: true},
	{TeamID: "DAL", Name: "Cowboys", City: "Dallas", Conference: "NFC", Division: "East", Active: true},
	{TeamID: "DEN", Name: "Broncos", City: "Denver", Conference: "AFC", Division: "West", Active: true},
	{TeamID: "DET", Name: "Lions", City: "Detroit", Conference: "NFC", Division: "North", Active: true},
	{TeamID: "GB", Name: "Packers", City: "Green Bay", Conference: "NFC", Division: "North", Active: true},
	{TeamID: "HOU", Name: "Texans", City: "Houston", Conference: "AFC", Division: "South", Active: true},
	{TeamID: "IND", Name: "Colts", City: "Indianapolis", Conference: "AFC", Division: "South", Active: true},
	{TeamID: "JAX", Name: "Jaguars", City: "Jacksonville", Conference: "AFC", Division: "South", Active: true},
	{TeamID: "KC", Name: "Chiefs", City: "Kansas City", Conference: "AFC", Division: "West", Active: true},
	{TeamID: "LA", Name: "Rams", City: "Los Angeles", Conference: "NFC", Division: "West", Active: true},
	{TeamID: "LAC", Name: "Chargers", City: "Los Angeles", Conference: "AFC", Division: "West", Active: true},
	{TeamID: "LV", Name: "Raiders", City: "Las Vegas", Conference: "AFC", Division: "West", Active: true},
	{TeamID: "MIA", Name: "Dolphins", City: "Miami", Conference: "AFC", Division: "East", Active: true},
	{TeamID: "MIN", Name: "Vikings", City: "Minnesota", Conference: "NFC", Division: "North", Active: true},
	{TeamID: "NE", Name: "Patriots", City: "New England", Conference: "AFC", Division: "East", Active: true},
	{TeamID: "NO", Name: "Saints", City: "New Orleans", Conference: "NFC", Division: "South", Active: true},
	{TeamID: "NYG", Name: "Giants", City: "New York", Conference: "NFC", Division: "East", Active: true},
	{TeamID: "NYJ", Name: "Jets", City: "New York", Conference: "AFC", Division: "East", Active: true},
	{TeamID: "PHI", Name: "Eagles", City: "Philadelphia", Conference: "NFC", Division: "East", Active: true},
	{TeamID: "PIT", Name: "Steelers", City: "Pittsburgh", Conference: "AFC", Division: "North", Active: true},
	{TeamID: "SEA", Name: "Seahawks", City: "Seattle", Conference: "NFC", Division: "West", Active: true},
	{TeamID: "SF", Name: "49ers", City: "San Francisco", Conference: "NFC", Division: "West", Active: true},
	{TeamID: "TB", Name: "Buccaneers", City: "Tampa Bay", Conference: "NFC", Division: "South", Active: true},
	{TeamID: "TEN", Name: "Titans", City: "Tennessee", Conference: "AFC", Division: "South", Active: true},
	{TeamID: "WAS", Name: "Commanders", City: "Washington", Conference: "NFC", Division: "East", Active: true},

	// Historical abbreviations still present in older feeds.
	{TeamID: "OAK", Name: "Raiders", City: "Oakland", Conference: "AFC", Division: "West", Active: false},
	{TeamID: "SD", Name: "Chargers", City: "San Diego", Conference: "AFC", Division: "West", Active: false},
	{TeamID: "STL", Name: "Rams", City: "St. Louis", Conference: "NFC", Division: "West", Active: false},
}

// KnownTeam reports whether abbr is a registered franchise abbreviation.
func KnownTeam(abbr string) bool {
	for _, t := range Franchises {
		if t.TeamID == abbr {
			return true
		}
	}
	return false
}
