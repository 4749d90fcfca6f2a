package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releasesJSON = `[
  {"name":"v1.2.0","tag_name":"v1.2.0","html_url":"https://x/releases/v1.2.0",
   "body":"newest","published_at":"2026-08-20T10:00:00Z"},
  {"name":"v1.1.0","tag_name":"v1.1.0","html_url":"https://x/releases/v1.1.0",
   "body":"middle","published_at":"2026-08-10T10:00:00Z"},
  {"name":"","tag_name":"v1.0.0","html_url":"https://x/releases/v1.0.0",
   "body":"oldest","published_at":"2026-08-01T10:00:00Z","prerelease":true}
]`

func newGitHubTest(t *testing.T, handler http.HandlerFunc) *GitHubFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := NewGitHubFetcher("Akash", "akash-network/node", "", "")
	f.BaseURL = srv.URL
	return f
}

func serveReleases(t *testing.T) *GitHubFetcher {
	return newGitHubTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/akash-network/node/releases", r.URL.Path)
		w.Write([]byte(releasesJSON))
	})
}

func TestGitHubFetch_EmptyCursorSeedsNewestOnly(t *testing.T) {
	f := serveReleases(t)

	items, next, err := f.Fetch(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1, "first run takes only the newest release as baseline")
	assert.Equal(t, "v1.2.0", items[0].Title)
	assert.Equal(t, "2026-08-20T10:00:00Z|v1.2.0", next)
	assert.Equal(t, "akash/github", items[0].Source)
	assert.Equal(t, "Akash", items[0].Object)
}

func TestGitHubFetch_StopsAtCursor(t *testing.T) {
	f := serveReleases(t)

	items, next, err := f.Fetch(context.Background(), "2026-08-01T10:00:00Z|v1.0.0")
	require.NoError(t, err)
	require.Len(t, items, 2)
	// Oldest-first so signal ids follow publication order.
	assert.Equal(t, "v1.1.0", items[0].Title)
	assert.Equal(t, "v1.2.0", items[1].Title)
	assert.Equal(t, "2026-08-20T10:00:00Z|v1.2.0", next)
}

func TestGitHubFetch_NothingNew(t *testing.T) {
	f := serveReleases(t)

	items, next, err := f.Fetch(context.Background(), "2026-08-20T10:00:00Z|v1.2.0")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, "", next, "no new items leaves the cursor alone")
}

func TestGitHubFetch_TagFallsBackForUntitledRelease(t *testing.T) {
	f := newGitHubTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"","tag_name":"v0.9.0","html_url":"https://x/r",
			"published_at":"2026-08-01T10:00:00Z"}]`))
	})

	items, _, err := f.Fetch(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "v0.9.0", items[0].Title)
	assert.Equal(t, "v0.9.0", items[0].Meta["tag"])
}

func TestGitHubFetch_SendsAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	f := NewGitHubFetcher("Akash", "akash-network/node", "tok-123", "")
	f.BaseURL = srv.URL

	_, _, err := f.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}
