package model

// Signal colors, canonical lowercase. Legacy databases may hold emoji
// glyphs or word variants; NormColor folds them.
const (
	ColorRed     = "red"
	ColorYellow  = "yellow"
	ColorGreen   = "green"
	ColorNeutral = "neutral"
)

// Signal kinds.
const (
	KindRelease = "release"
	KindPost    = "post"
	KindMetric  = "metric"
	KindRSS     = "rss"
	KindEvent   = "event"
)

// NormColor maps a stored color value to its canonical form.
func NormColor(c string) string {
	switch c {
	case "🔴", "red":
		return ColorRed
	case "🟡", "yellow", "⚪", "white":
		return ColorYellow
	case "🟢", "green":
		return ColorGreen
	default:
		return ColorNeutral
	}
}

// SignalRef is the slice of a signal row the decision engine reads.
type SignalRef struct {
	ID     int64
	TS     string
	Source string
	URL    string
	Title  string
	Score  float64
	Color  string
}

// PendingSignal is an unscored row selected by the scoring engine.
type PendingSignal struct {
	ID      int64
	Source  string
	Title   string
	Text    string
	Summary string
	URL     string
}

// Stats summarizes the signals table.
type Stats struct {
	Total      int64
	UniqueURLs int64
}
