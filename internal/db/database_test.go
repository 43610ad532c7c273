package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *RunStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndListRuns(t *testing.T) {
	store := openTestStore(t)

	started := time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordRun(Run{
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
		Status:     "ok",
		Fetched:    5,
		Added:      3,
		Pruned:     1,
		Total:      42,
	}))

	runs, err := store.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, "ok", run.Status)
	assert.Equal(t, 5, run.Fetched)
	assert.Equal(t, 3, run.Added)
	assert.Equal(t, 1, run.Pruned)
	assert.Equal(t, 42, run.Total)
	assert.Empty(t, run.Error)
	assert.True(t, run.StartedAt.Equal(started))
}

func TestRecentRunsNewestFirstAndLimited(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordRun(Run{
			StartedAt:  base.AddDate(0, 0, i),
			FinishedAt: base.AddDate(0, 0, i).Add(time.Minute),
			Status:     "ok",
			Total:      i,
		}))
	}

	runs, err := store.RecentRuns(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, 4, runs[0].Total)
	assert.Equal(t, 3, runs[1].Total)
	assert.Equal(t, 2, runs[2].Total)
}

func TestRecordFailedRunKeepsError(t *testing.T) {
	store := openTestStore(t)

	now := time.Now().UTC()
	require.NoError(t, store.RecordRun(Run{
		StartedAt:  now,
		FinishedAt: now,
		Status:     "error",
		Error:      "strava authentication required",
	}))

	runs, err := store.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "error", runs[0].Status)
	assert.Equal(t, "strava authentication required", runs[0].Error)
}
