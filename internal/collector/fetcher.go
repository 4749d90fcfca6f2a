package collector

import (
	"context"

	"PulseAtlas/internal/model"
)

// Fetcher pulls new items from one external source. The cursor is the
// source's stored watermark ("" on first run); next is the watermark
// to persist after the returned items are stored ("" leaves the
// cursor untouched). Fetchers never write to the store themselves.
type Fetcher interface {
	Fetch(ctx context.Context, cursor string) (items []model.Envelope, next string, err error)
	Name() string
}
