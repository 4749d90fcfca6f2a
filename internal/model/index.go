package model

import "time"

// ScoredSignal is the slice of a signal row the index engine reads.
type ScoredSignal struct {
	Object string
	Color  string
	Score  float64
	TS     time.Time
}

// IndexSnapshot is one per-object row of an object-index recompute.
// VolNorm is normalized against the maximum volatility within the same
// run, so it is comparable only across objects of one snapshot.
type IndexSnapshot struct {
	TS         string
	WindowDays int
	Object     string
	NTotal     int
	RiskShare  float64
	VolNorm    float64
	Recency    float64
	OII        float64
}
