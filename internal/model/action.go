package model

import "strconv"

// Action types emitted by the decision engine.
const (
	ActionInvestigate = "investigate"
	ActionMonitor     = "monitor"
)

// Action is a derived task generated from a scored signal.
type Action struct {
	SignalID int64
	Type     string
	Priority int
	Title    string
	URL      string
	Payload  map[string]any
}

// DedupKey builds the globally unique key for an action. Reprocessing
// the same signal never produces a duplicate action row.
func (a *Action) DedupKey() string {
	return a.Type + ":" + strconv.FormatInt(a.SignalID, 10) + ":" + a.URL
}

// DecisionStats reports one decision-engine batch.
type DecisionStats struct {
	Processed int
	Inserted  int
	LastID    int64
}
