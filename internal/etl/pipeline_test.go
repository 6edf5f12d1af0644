package etl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextWatermark(t *testing.T) {
	earlier := time.Date(2025, time.September, 7, 0, 0, 0, 0, time.UTC)
	later := time.Date(2025, time.September, 14, 0, 0, 0, 0, time.UTC)

	t.Run("failed fact load records nothing", func(t *testing.T) {
		// Advancing past rows that never landed would make the next
		// incremental run skip them forever.
		_, ok := nextWatermark(&earlier, &later, false)
		assert.False(t, ok)
		_, ok = nextWatermark(nil, &later, false)
		assert.False(t, ok)
	})

	t.Run("advances to the latest staged date", func(t *testing.T) {
		got, ok := nextWatermark(&earlier, &later, true)
		require.True(t, ok)
		require.NotNil(t, got)
		assert.True(t, got.Equal(later))
	})

	t.Run("never regresses", func(t *testing.T) {
		got, ok := nextWatermark(&later, &earlier, true)
		require.True(t, ok)
		require.NotNil(t, got)
		assert.True(t, got.Equal(later))
	})

	t.Run("empty staging keeps the stored date", func(t *testing.T) {
		got, ok := nextWatermark(&earlier, nil, true)
		require.True(t, ok)
		require.NotNil(t, got)
		assert.True(t, got.Equal(earlier))
	})

	t.Run("first successful load takes the staged date", func(t *testing.T) {
		got, ok := nextWatermark(nil, &earlier, true)
		require.True(t, ok)
		require.NotNil(t, got)
		assert.True(t, got.Equal(earlier))
	})
}
