package report

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossframe-dev/reroute/internal/convert"
)

// Test Plan for the report store:
// - Open initializes the schema idempotently
// - SaveRun persists the run plus its converted and failed files
// - RecentRuns returns runs newest first and honors the limit
// - An empty store lists no runs

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_SchemaIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "runs.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestSaveRun_AndRecentRuns(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	result := &convert.BatchResult{
		TransformedFiles: []convert.FileMapping{
			{Source: "pages/index.tsx", Dest: "src/pages/Home.tsx"},
			{Source: "pages/about.tsx", Dest: "src/pages/About.tsx"},
		},
		ModifiedCount:      2,
		TransformationRate: 0.5,
		Errors: []convert.FileError{
			{Path: "pages/broken.tsx", Err: errors.New("syntax error")},
		},
	}

	id, err := store.SaveRun(result, 4)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	runs, err := store.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, 4, runs[0].TotalFiles)
	assert.Equal(t, 2, runs[0].ModifiedCount)
	assert.InDelta(t, 0.5, runs[0].Rate, 1e-9)
	assert.False(t, runs[0].StartedAt.IsZero())
}

func TestRecentRuns_Limit(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	for i := 0; i < 3; i++ {
		_, err := store.SaveRun(&convert.BatchResult{}, 0)
		require.NoError(t, err)
	}

	runs, err := store.RecentRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRecentRuns_Empty(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	runs, err := store.RecentRuns(5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
