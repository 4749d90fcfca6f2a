package scoring

import (
	"fmt"
	"log"

	"PulseAtlas/internal/model"
)

// Pending abstracts the store operations the engine needs.
type Pending interface {
	PendingSignals(limit int) ([]model.PendingSignal, error)
	ApplyScore(id int64, score float64, color, label, rationale string) error
}

// Engine runs batch scoring passes over unscored signals.
type Engine struct {
	Store Pending
}

func NewEngine(st Pending) *Engine {
	return &Engine{Store: st}
}

// ScorePending scores up to limit unscored rows, newest first. The
// final score blends the domain prior and the keyword score equally.
// Idempotent: only rows with an empty rationale are selected, and the
// update fills the rationale.
func (e *Engine) ScorePending(limit int) (int, error) {
	rows, err := e.Store.PendingSignals(limit)
	if err != nil {
		return 0, fmt.Errorf("select pending: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	updated := 0
	for _, row := range rows {
		blob := NormText(row.Title, row.Text, row.Summary)
		prior := DomainScore(row.URL)
		c := Classify(blob)
		score := clamp(0.5*prior + 0.5*c.KeywordScore)

		// The rationale is the explainability record: rule, hit counts
		// and both contributing scores.
		rationale := fmt.Sprintf("rule:%s risk=%d hype=%d watch=%d domain=%.2f keyword=%.2f",
			c.Rule, c.RiskHits, c.HypeHits, c.WatchHits, prior, c.KeywordScore)

		if err := e.Store.ApplyScore(row.ID, score, c.Color, c.Label, rationale); err != nil {
			log.Printf("[WARN] score signal id=%d failed: %v", row.ID, err)
			continue
		}
		updated++
	}
	return updated, nil
}
