package decision

import (
	"PulseAtlas/internal/model"
)

// Emitter abstracts the store operation the engine needs.
type Emitter interface {
	EmitActions(rule func(model.SignalRef) *model.Action) (model.DecisionStats, []model.Action, error)
}

// Engine converts scored signals into actions. Signals are consumed by
// id above a persisted watermark; the store commits action inserts and
// the watermark advance in one transaction, so each signal is decided
// exactly once.
type Engine struct {
	Store Emitter
}

func NewEngine(st Emitter) *Engine {
	return &Engine{Store: st}
}

// Run processes all signals past the watermark. Returns the batch
// stats and the actions actually inserted this run.
func (e *Engine) Run() (model.DecisionStats, []model.Action, error) {
	return e.Store.EmitActions(ActionFor)
}

// ActionFor maps a signal's color to an action. Red means investigate,
// yellow means monitor, anything else emits nothing.
func ActionFor(sig model.SignalRef) *model.Action {
	payload := map[string]any{
		"source": sig.Source,
		"color":  sig.Color,
		"score":  sig.Score,
		"ts":     sig.TS,
	}

	switch model.NormColor(sig.Color) {
	case model.ColorRed:
		return &model.Action{
			SignalID: sig.ID,
			Type:     model.ActionInvestigate,
			Priority: 90,
			Title:    orDefault(sig.Title, "red signal"),
			URL:      sig.URL,
			Payload:  payload,
		}
	case model.ColorYellow:
		return &model.Action{
			SignalID: sig.ID,
			Type:     model.ActionMonitor,
			Priority: 50,
			Title:    orDefault(sig.Title, "yellow signal"),
			URL:      sig.URL,
			Payload:  payload,
		}
	default:
		return nil
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
