package collector

import (
	"context"
	"log"

	"PulseAtlas/internal/model"
)

// Sink is the store surface the collector writes through.
type Sink interface {
	UpsertSignal(env model.Envelope) (bool, error)
	Cursor(source string) (string, error)
	SetCursor(source, cursor string) error
}

// RunStats summarizes one collection pass.
type RunStats struct {
	Inserted int
	Ignored  int
	Failed   int
}

// Collector runs every fetcher against the store. A failing source is
// logged and counted; the remaining sources still run.
type Collector struct {
	Fetchers []Fetcher
	Sink     Sink
}

func NewCollector(sink Sink, fetchers ...Fetcher) *Collector {
	return &Collector{Fetchers: fetchers, Sink: sink}
}

// Run fetches all sources once. A source's cursor only advances after
// its items are stored, so a crash mid-source re-fetches rather than
// skips; the dedup layer absorbs the replay.
func (c *Collector) Run(ctx context.Context) RunStats {
	var stats RunStats

	for _, f := range c.Fetchers {
		cursor, err := c.Sink.Cursor(f.Name())
		if err != nil {
			log.Printf("[WARN] %s: read cursor: %v", f.Name(), err)
			stats.Failed++
			continue
		}

		items, next, err := f.Fetch(ctx, cursor)
		if err != nil {
			log.Printf("[WARN] %s: fetch failed: %v", f.Name(), err)
			stats.Failed++
			continue
		}
		if len(items) == 0 {
			log.Printf("[INFO] %s: no new items", f.Name())
			continue
		}

		notStored := 0
		for _, env := range items {
			inserted, err := c.Sink.UpsertSignal(env)
			if err != nil {
				log.Printf("[WARN] %s: upsert %q: %v", f.Name(), env.URL, err)
				stats.Failed++
				notStored++
				continue
			}
			if inserted {
				stats.Inserted++
			} else {
				stats.Ignored++
			}
		}

		// Hold the cursor when any item in the batch failed to store:
		// the next run re-fetches and the dedup layer absorbs the replay.
		if notStored > 0 {
			log.Printf("[WARN] %s: cursor held, %d of %d item(s) not stored",
				f.Name(), notStored, len(items))
			continue
		}

		if next != "" && next != cursor {
			if err := c.Sink.SetCursor(f.Name(), next); err != nil {
				log.Printf("[WARN] %s: set cursor: %v", f.Name(), err)
				stats.Failed++
				continue
			}
			log.Printf("[INFO] %s: stored %d items, cursor=%s", f.Name(), len(items), next)
		} else {
			log.Printf("[INFO] %s: stored %d items", f.Name(), len(items))
		}
	}
	return stats
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Source string
	Items  []model.Envelope
	Next   string
	Err    error

	LastCursor string
}

func (m *MockFetcher) Name() string { return m.Source }

func (m *MockFetcher) Fetch(_ context.Context, cursor string) ([]model.Envelope, string, error) {
	m.LastCursor = cursor
	if m.Err != nil {
		return nil, "", m.Err
	}
	return m.Items, m.Next, nil
}
