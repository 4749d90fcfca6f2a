package collector_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"PulseAtlas/internal/collector"
	"PulseAtlas/internal/model"
	"PulseAtlas/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "atlas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRun_StoresAndCounts(t *testing.T) {
	s := openTest(t)

	mock := &collector.MockFetcher{
		Source: "akash/github",
		Items: []model.Envelope{
			{Source: "akash/github", URL: "https://x/r1", Title: "v1"},
			{Source: "akash/github", URL: "https://x/r2", Title: "v2"},
			{Source: "akash/github", URL: "https://x/r1", Title: "v1"}, // duplicate
		},
		Next: "2026-08-01T00:00:00Z|v2",
	}

	col := collector.NewCollector(s, mock)
	stats := col.Run(context.Background())

	assert.Equal(t, 2, stats.Inserted)
	assert.Equal(t, 1, stats.Ignored)
	assert.Equal(t, 0, stats.Failed)

	cur, err := s.Cursor("akash/github")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-01T00:00:00Z|v2", cur, "cursor advances after storing")
}

func TestRun_FailingSourceDoesNotAbortOthers(t *testing.T) {
	s := openTest(t)

	broken := &collector.MockFetcher{Source: "rss:https://dead.example", Err: errors.New("timeout")}
	healthy := &collector.MockFetcher{
		Source: "rss:https://ok.example",
		Items:  []model.Envelope{{Source: "rss", URL: "https://ok.example/a", Title: "a"}},
	}

	stats := collector.NewCollector(s, broken, healthy).Run(context.Background())

	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Inserted, "healthy source still ran")
}

func TestRun_PassesStoredCursorToFetcher(t *testing.T) {
	s := openTest(t)
	require.NoError(t, s.SetCursor("akash/github", "prev-cursor"))

	mock := &collector.MockFetcher{Source: "akash/github"}
	collector.NewCollector(s, mock).Run(context.Background())

	assert.Equal(t, "prev-cursor", mock.LastCursor)
}

// flakySink writes through to a real store but fails every upsert on demand.
type flakySink struct {
	*store.Store
	failUpserts bool
}

func (f *flakySink) UpsertSignal(env model.Envelope) (bool, error) {
	if f.failUpserts {
		return false, errors.New("disk full")
	}
	return f.Store.UpsertSignal(env)
}

func TestRun_UpsertFailureHoldsCursor(t *testing.T) {
	s := openTest(t)
	sink := &flakySink{Store: s, failUpserts: true}

	mock := &collector.MockFetcher{
		Source: "akash/github",
		Items:  []model.Envelope{{Source: "akash/github", URL: "https://x/r1", Title: "v1"}},
		Next:   "2026-08-01T00:00:00Z|v1",
	}

	stats := collector.NewCollector(sink, mock).Run(context.Background())
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, stats.Inserted)

	cur, err := s.Cursor("akash/github")
	require.NoError(t, err)
	assert.Equal(t, "", cur, "cursor must not advance past unstored items")

	// Once the store recovers, the replayed fetch lands and the cursor moves.
	sink.failUpserts = false
	stats = collector.NewCollector(sink, mock).Run(context.Background())
	assert.Equal(t, 1, stats.Inserted)

	cur, err = s.Cursor("akash/github")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-01T00:00:00Z|v1", cur)
}

func TestRun_NoItemsLeavesCursorUntouched(t *testing.T) {
	s := openTest(t)
	require.NoError(t, s.SetCursor("src", "keep-me"))

	mock := &collector.MockFetcher{Source: "src", Next: ""}
	collector.NewCollector(s, mock).Run(context.Background())

	cur, err := s.Cursor("src")
	require.NoError(t, err)
	assert.Equal(t, "keep-me", cur)
}
