package nflverse

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachRowAccess(t *testing.T) {
	const data = `game_id,week,yards,flag,ratio
2025_01_BUF_KC,1,25.0,1,0.55
2025_01_BUF_KC,NA,,0,NA
`
	var rows []map[string]string
	err := ForEach(strings.NewReader(data), func(row Row) error {
		assert.Equal(t, "2025_01_BUF_KC", row.Get("game_id"))
		rows = append(rows, row.Map())
		return nil
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// First row: float-formatted ints parse, flags read as bools
	assert.Equal(t, "1", rows[0]["week"])
	assert.NotContains(t, rows[1], "week", "NA drops out of the map")
	assert.NotContains(t, rows[1], "yards", "empty drops out of the map")
}

func TestRowParsers(t *testing.T) {
	const data = `n,f,flag,missing
25.0,0.55,1,NA
`
	err := ForEach(strings.NewReader(data), func(row Row) error {
		assert.Equal(t, 25, row.Int("n"))
		assert.InDelta(t, 0.55, row.Float("f"), 0.001)
		assert.True(t, row.Flag("flag"))
		assert.Equal(t, 0, row.Int("missing"))
		assert.Equal(t, "", row.Get("absent_column"))
		assert.True(t, row.Has("missing"))
		assert.False(t, row.Has("absent_column"))
		return nil
	})
	require.NoError(t, err)
}

func TestForEachPropagatesCallbackError(t *testing.T) {
	const data = "a\n1\n2\n"
	sentinel := errors.New("stop")
	calls := 0
	err := ForEach(strings.NewReader(data), func(Row) error {
		calls++
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestForEachRaggedRows(t *testing.T) {
	// nflverse exports occasionally ship short rows; missing cells read
	// as empty rather than erroring.
	const data = "a,b,c\n1,2\n"
	err := ForEach(strings.NewReader(data), func(row Row) error {
		assert.Equal(t, "2", row.Get("b"))
		assert.Equal(t, "", row.Get("c"))
		return nil
	})
	require.NoError(t, err)
}
