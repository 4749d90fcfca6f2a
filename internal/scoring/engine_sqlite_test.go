package scoring_test

import (
	"path/filepath"
	"testing"

	"PulseAtlas/internal/model"
	"PulseAtlas/internal/scoring"
	"PulseAtlas/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scoring targets only empty-rationale rows, so a second pass over an
// unchanged store is a no-op.
func TestScorePending_Idempotent(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "atlas.db"))
	require.NoError(t, err)
	defer s.Close()

	ins, err := s.UpsertSignal(model.Envelope{
		Source: "rss",
		URL:    "https://x/post",
		Title:  "Exploit disclosed",
		Body:   "a critical vulnerability was found",
	})
	require.NoError(t, err)
	require.True(t, ins)

	eng := scoring.NewEngine(s)

	n, err := eng.ScorePending(10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pending, err := s.PendingSignals(10)
	require.NoError(t, err)
	assert.Empty(t, pending, "scored rows must not be selected again")

	n, err = eng.ScorePending(10)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
