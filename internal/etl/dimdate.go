package etl

import (
	"fmt"
	"time"
)

// DateDim is one dim_date row.
type DateDim struct {
	DateKey         int
	FullDate        time.Time
	Year            int
	Month           int
	Day             int
	DayOfWeek       int // 0=Sunday
	DayName         string
	IsWeekend       bool
	Season          int
	SeasonLabel     string
	IsPlayoffWindow bool
}

// DateKey returns the YYYYMMDD surrogate key for a date.
func DateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// DateKeyFromISO parses a YYYY-MM-DD string into a date key.
// Returns 0 for empty or malformed input.
func DateKeyFromISO(s string) int {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0
	}
	return DateKey(t)
}

// DateFromKey converts a YYYYMMDD key back into a UTC date.
func DateFromKey(key int) time.Time {
	return time.Date(key/10000, time.Month(key/100%100), key%100, 0, 0, 0, 0, time.UTC)
}

// SeasonFor returns the NFL season a date belongs to. January and February
// dates belong to the prior calendar year's season.
func SeasonFor(t time.Time) int {
	if t.Month() < time.March {
		return t.Year() - 1
	}
	return t.Year()
}

// GenerateDates produces every dim_date row from January 1 of fromYear
// through December 31 of toYear.
func GenerateDates(fromYear, toYear int) []DateDim {
	var rows []DateDim
	for d := time.Date(fromYear, time.January, 1, 0, 0, 0, 0, time.UTC); d.Year() <= toYear; d = d.AddDate(0, 0, 1) {
		season := SeasonFor(d)
		rows = append(rows, DateDim{
			DateKey:         DateKey(d),
			FullDate:        d,
			Year:            d.Year(),
			Month:           int(d.Month()),
			Day:             d.Day(),
			DayOfWeek:       int(d.Weekday()),
			DayName:         d.Weekday().String(),
			IsWeekend:       d.Weekday() == time.Saturday || d.Weekday() == time.Sunday,
			Season:          season,
			SeasonLabel:     fmt.Sprintf("%d-%02d", season, (season+1)%100),
			IsPlayoffWindow: d.Month() == time.January || d.Month() == time.February,
		})
	}
	return rows
}
