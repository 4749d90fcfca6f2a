package collector

import (
	"context"
	"net/http"
	"time"

	"PulseAtlas/internal/filter"
	"PulseAtlas/internal/model"

	"github.com/mmcdole/gofeed"
)

const (
	maxFeedEntries = 50
	minFeedContent = 120
)

// FeedFetcher pulls one RSS or Atom feed. Feed URLs get rewritten by
// aggregators, so items use hash identity (url||title) instead of the
// URL dedup key. Promo items and short stubs are dropped before they
// reach the store; anchor matches tag the tracked object.
type FeedFetcher struct {
	URL    string
	Client *http.Client
	Parser *gofeed.Parser
}

func NewFeedFetcher(feedURL, proxyURL string) *FeedFetcher {
	return &FeedFetcher{
		URL:    feedURL,
		Client: newHTTPClient(proxyURL),
		Parser: gofeed.NewParser(),
	}
}

func (f *FeedFetcher) Name() string { return "rss:" + f.URL }

func (f *FeedFetcher) Fetch(ctx context.Context, _ string) ([]model.Envelope, string, error) {
	body, err := fetchBody(ctx, f.Client, f.URL, nil)
	if err != nil {
		return nil, "", err
	}

	feed, err := f.Parser.ParseString(string(body))
	if err != nil {
		return nil, "", err
	}

	origin := feed.Title
	if origin == "" {
		origin = f.URL
	}

	entries := feed.Items
	if len(entries) > maxFeedEntries {
		entries = entries[:maxFeedEntries]
	}

	var items []model.Envelope
	for _, entry := range entries {
		if entry == nil || entry.Link == "" {
			continue
		}

		text := entry.Content
		if text == "" {
			text = entry.Description
		}
		if len(text) < minFeedContent {
			continue
		}

		verdict := filter.Evaluate(entry.Title+" "+text, f.URL, firstAuthor(entry))
		if verdict.Decision == filter.Drop {
			continue
		}

		items = append(items, model.Envelope{
			TS:      entryTime(entry),
			Source:  "rss",
			Origin:  origin,
			Object:  filter.ProjectObject[verdict.Project],
			Kind:    model.KindRSS,
			Title:   entry.Title,
			Body:    text,
			Summary: entry.Description,
			URL:     entry.Link,
			Raw:     entry.Published,
			Dedup:   model.DedupHash,
		})
	}
	return items, "", nil
}

func entryTime(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC()
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC()
	}
	return time.Now().UTC()
}

func firstAuthor(entry *gofeed.Item) string {
	if len(entry.Authors) > 0 && entry.Authors[0] != nil {
		return entry.Authors[0].Name
	}
	return ""
}
