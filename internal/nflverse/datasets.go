package nflverse

import "fmt"

// Dataset identifies one nflverse release asset family.
type Dataset string

const (
	DatasetPBP       Dataset = "pbp"
	DatasetRosters   Dataset = "rosters"
	DatasetSchedules Dataset = "schedules"
	DatasetInjuries  Dataset = "injuries"
)

// All lists every dataset the extract stage pulls for a season.
var All = []Dataset{DatasetPBP, DatasetRosters, DatasetSchedules, DatasetInjuries}

// Path returns the release-relative path of the dataset CSV for a season.
func (d Dataset) Path(season int) string {
	switch d {
	case DatasetPBP:
		return fmt.Sprintf("pbp/play_by_play_%d.csv", season)
	case DatasetRosters:
		return fmt.Sprintf("rosters/roster_%d.csv", season)
	case DatasetSchedules:
		return fmt.Sprintf("schedules/sched_%d.csv", season)
	case DatasetInjuries:
		return fmt.Sprintf("injuries/injuries_%d.csv", season)
	default:
		return string(d)
	}
}

// RawFile returns the local raw-directory filename for a season, mirroring
// the dataset naming (pbp_2025.csv, rosters_2025.csv, ...).
func (d Dataset) RawFile(season int) string {
	return fmt.Sprintf("%s_%d.csv", d, season)
}

func (d Dataset) String() string { return string(d) }
