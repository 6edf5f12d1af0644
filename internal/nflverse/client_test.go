package nflverse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 6000, 5*time.Second, nil)
}

func TestDatasetPaths(t *testing.T) {
	assert.Equal(t, "pbp/play_by_play_2025.csv", DatasetPBP.Path(2025))
	assert.Equal(t, "rosters/roster_2025.csv", DatasetRosters.Path(2025))
	assert.Equal(t, "schedules/sched_2025.csv", DatasetSchedules.Path(2025))
	assert.Equal(t, "injuries/injuries_2025.csv", DatasetInjuries.Path(2025))
	assert.Equal(t, "pbp_2025.csv", DatasetPBP.RawFile(2025))
}

func TestDownloadWritesFile(t *testing.T) {
	const body = "game_id,week\n2025_01_BUF_KC,1\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pbp/play_by_play_2025.csv", r.URL.Path)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "raw", "pbp_2025.csv")
	err := testClient(srv.URL).Download(context.Background(), DatasetPBP, 2025, dest)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))

	// No stray temp files left beside the download.
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestDownloadRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "sched_2025.csv")
	err := testClient(srv.URL).Download(context.Background(), DatasetSchedules, 2025, dest)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDownloadDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "injuries_1999.csv")
	err := testClient(srv.URL).Download(context.Background(), DatasetInjuries, 1999, dest)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "404s are permanent")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "failed downloads leave no file behind")
}
