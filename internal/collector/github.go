package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"PulseAtlas/internal/model"
)

const githubAPI = "https://api.github.com"

// GitHubFetcher polls one repository's release list. GitHub returns
// releases newest-first, so the fetcher walks the list until it hits
// the stored cursor and returns the remainder oldest-first. On an
// empty cursor only the newest release is taken as a baseline, so a
// first run never backfills the full history.
type GitHubFetcher struct {
	Project string // tracked object name, e.g. "Akash"
	Repo    string // owner/name
	Token   string
	BaseURL string
	Client  *http.Client
}

func NewGitHubFetcher(project, repo, token, proxyURL string) *GitHubFetcher {
	return &GitHubFetcher{
		Project: project,
		Repo:    repo,
		Token:   token,
		BaseURL: githubAPI,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *GitHubFetcher) Name() string {
	return strings.ToLower(f.Project) + "/github"
}

// githubRelease is the slice of the release object we consume.
type githubRelease struct {
	Name        string `json:"name"`
	TagName     string `json:"tag_name"`
	HTMLURL     string `json:"html_url"`
	Body        string `json:"body"`
	PublishedAt string `json:"published_at"`
	CreatedAt   string `json:"created_at"`
	Draft       bool   `json:"draft"`
	Prerelease  bool   `json:"prerelease"`
}

func (f *GitHubFetcher) Fetch(ctx context.Context, cursor string) ([]model.Envelope, string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/releases?per_page=10", f.BaseURL, f.Repo)
	headers := map[string]string{"Accept": "application/vnd.github+json"}
	if f.Token != "" {
		headers["Authorization"] = "Bearer " + f.Token
	}

	body, err := fetchBody(ctx, f.Client, endpoint, headers)
	if err != nil {
		return nil, "", fmt.Errorf("github %s: %w", f.Repo, err)
	}

	var releases []githubRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, "", fmt.Errorf("github %s: decode: %w", f.Repo, err)
	}

	type pending struct {
		cursor string
		env    model.Envelope
	}

	var fresh []pending
	for _, rel := range releases {
		env := f.normalize(rel)
		cur := releaseCursor(rel)
		if cursor == "" {
			// First run: baseline on the newest release only.
			fresh = []pending{{cursor: cur, env: env}}
			break
		}
		if cur == cursor {
			break
		}
		fresh = append(fresh, pending{cursor: cur, env: env})
	}
	if len(fresh) == 0 {
		return nil, "", nil
	}

	// Store oldest-first so signal ids follow publication order.
	items := make([]model.Envelope, 0, len(fresh))
	for i := len(fresh) - 1; i >= 0; i-- {
		items = append(items, fresh[i].env)
	}
	return items, fresh[0].cursor, nil
}

// releaseCursor combines timestamp and tag so the watermark survives
// a re-published release.
func releaseCursor(rel githubRelease) string {
	return publishedAt(rel) + "|" + rel.TagName
}

func publishedAt(rel githubRelease) string {
	if rel.PublishedAt != "" {
		return rel.PublishedAt
	}
	return rel.CreatedAt
}

func (f *GitHubFetcher) normalize(rel githubRelease) model.Envelope {
	title := rel.Name
	if title == "" {
		title = rel.TagName
	}
	ts, _ := time.Parse(time.RFC3339, publishedAt(rel))

	raw, _ := json.Marshal(rel)

	return model.Envelope{
		TS:     ts,
		Source: f.Name(),
		Object: f.Project,
		Kind:   model.KindRelease,
		Title:  title,
		Body:   truncate(rel.Body, 4000),
		URL:    rel.HTMLURL,
		Meta: map[string]any{
			"tag":        rel.TagName,
			"prerelease": rel.Prerelease,
			"draft":      rel.Draft,
		},
		Raw: string(raw),
	}
}
