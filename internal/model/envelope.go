package model

import "time"

// DedupMode selects the identity predicate the upsert layer applies.
type DedupMode int

const (
	// DedupURL deduplicates on exact (source, url) match. Default.
	DedupURL DedupMode = iota
	// DedupHash deduplicates on a content hash of url||title. Used by
	// feed sources where the same item can resurface under a rewritten
	// URL query string.
	DedupHash
	// DedupWindow skips the insert when an identical URL was written
	// within the recent window. Used by periodic metric samples.
	DedupWindow
)

// Envelope is the normalized item a source adapter produces. Omitted
// fields are filled by the upsert layer's defaulting chain.
type Envelope struct {
	TS      time.Time
	Source  string
	Origin  string
	Object  string
	Kind    string
	Title   string
	Body    string
	Summary string
	URL     string
	Tags    string
	Meta    map[string]any
	Raw     string
	Dedup   DedupMode
}
