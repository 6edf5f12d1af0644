package etl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKeyRoundTrip(t *testing.T) {
	d := time.Date(2025, time.September, 7, 0, 0, 0, 0, time.UTC)
	key := DateKey(d)
	assert.Equal(t, 20250907, key)
	assert.True(t, DateFromKey(key).Equal(d))
}

func TestDateKeyFromISO(t *testing.T) {
	assert.Equal(t, 20250907, DateKeyFromISO("2025-09-07"))
	assert.Equal(t, 0, DateKeyFromISO(""))
	assert.Equal(t, 0, DateKeyFromISO("09/07/2025"))
}

func TestSeasonFor(t *testing.T) {
	// A January playoff game belongs to the prior year's season.
	assert.Equal(t, 2025, SeasonFor(time.Date(2026, time.January, 11, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2025, SeasonFor(time.Date(2026, time.February, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2025, SeasonFor(time.Date(2025, time.September, 7, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2026, SeasonFor(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestGenerateDates(t *testing.T) {
	rows := GenerateDates(2024, 2025)
	require.Len(t, rows, 366+365) // 2024 is a leap year

	assert.Equal(t, 20240101, rows[0].DateKey)
	assert.Equal(t, 20251231, rows[len(rows)-1].DateKey)

	byKey := make(map[int]DateDim, len(rows))
	for _, r := range rows {
		byKey[r.DateKey] = r
	}

	opener := byKey[20250907]
	assert.Equal(t, 2025, opener.Season)
	assert.Equal(t, "2025-26", opener.SeasonLabel)
	assert.Equal(t, "Sunday", opener.DayName)
	assert.True(t, opener.IsWeekend)
	assert.False(t, opener.IsPlayoffWindow)

	playoff := byKey[20250112]
	assert.Equal(t, 2024, playoff.Season)
	assert.Equal(t, "2024-25", playoff.SeasonLabel)
	assert.True(t, playoff.IsPlayoffWindow)

	midweek := byKey[20250402]
	assert.Equal(t, "Wednesday", midweek.DayName)
	assert.False(t, midweek.IsWeekend)
	assert.Equal(t, 2025, midweek.Season)
}
