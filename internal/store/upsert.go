package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"PulseAtlas/internal/model"
)

// metricDedupWindow is how long an identical metric URL suppresses a
// re-insert. Periodic samplers fire more often than the value changes.
const metricDedupWindow = 10 * time.Minute

// UpsertSignal inserts a normalized envelope into the signals table.
// Returns true when a new row was written, false when the candidate
// was recognized as a duplicate.
//
// The signals column set is treated as evolving: the insert is built
// against the columns that actually exist, and every NOT NULL column
// is populated from the envelope or from the defaulting chain, so an
// added column never breaks the write path.
func (s *Store) UpsertSignal(env model.Envelope) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	url := strings.TrimSpace(env.URL)

	switch env.Dedup {
	case model.DedupHash:
		hv := contentHash(url, env.Title)
		seen, err := s.seenHash(hv)
		if err != nil {
			return false, err
		}
		if seen {
			return false, nil
		}
		inserted, err := s.insertSignal(env, url)
		if err != nil {
			return false, err
		}
		if err := s.markHash(hv); err != nil {
			return false, err
		}
		return inserted, nil

	case model.DedupWindow:
		since := time.Now().UTC().Add(-metricDedupWindow).Format(time.RFC3339)
		var one int
		err := s.db.QueryRow(`SELECT 1 FROM signals WHERE url = ? AND ts >= ? LIMIT 1`,
			url, since).Scan(&one)
		if err == nil {
			return false, nil // identical sample within the window
		}
		if err != sql.ErrNoRows {
			return false, fmt.Errorf("window dedup check: %w", err)
		}
		return s.insertSignal(env, url)

	default:
		if url != "" && env.Source != "" {
			var one int
			err := s.db.QueryRow(`SELECT 1 FROM signals WHERE source = ? AND url = ? LIMIT 1`,
				env.Source, url).Scan(&one)
			if err == nil {
				return false, nil
			}
			if err != sql.ErrNoRows {
				return false, fmt.Errorf("url dedup check: %w", err)
			}
		}
		return s.insertSignal(env, url)
	}
}

// contentHash is the hash-identity dedup key: sha256 of url||title.
func contentHash(url, title string) string {
	sum := sha256.Sum256([]byte(url + "||" + title))
	return hex.EncodeToString(sum[:])
}

func (s *Store) seenHash(hv string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM seen_hashes WHERE hash = ?`, hv).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seen hash: %w", err)
	}
	return true, nil
}

func (s *Store) markHash(hv string) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO seen_hashes(hash, first_seen) VALUES(?, ?)`,
		hv, time.Now().UTC().Format(time.RFC3339))
	return err
}

// column describes one signals column from PRAGMA table_info.
type column struct {
	name    string
	notNull bool
	dflt    sql.NullString
}

func (s *Store) signalColumns() ([]column, error) {
	rows, err := s.db.Query(`PRAGMA table_info(signals)`)
	if err != nil {
		return nil, fmt.Errorf("table_info: %w", err)
	}
	defer rows.Close()

	var cols []column
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table_info: %w", err)
		}
		cols = append(cols, column{name: name, notNull: notnull == 1, dflt: dflt})
	}
	return cols, rows.Err()
}

// insertSignal builds and executes a conflict-ignoring insert. The
// unique (source, url) index makes it idempotent even when two runs
// race past the existence check.
func (s *Store) insertSignal(env model.Envelope, url string) (bool, error) {
	cols, err := s.signalColumns()
	if err != nil {
		return false, err
	}

	row := buildRow(env, url, cols)

	var names []string
	var args []any
	for _, c := range cols {
		if c.name == "id" {
			continue
		}
		v, ok := row[c.name]
		if !ok {
			continue
		}
		names = append(names, c.name)
		args = append(args, v)
	}
	if len(names) == 0 {
		return false, fmt.Errorf("signals table: no matching columns to insert")
	}

	query := fmt.Sprintf("INSERT OR IGNORE INTO signals (%s) VALUES (%s)",
		strings.Join(names, ","),
		strings.TrimSuffix(strings.Repeat("?,", len(names)), ","))

	res, err := s.db.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("insert signal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// buildRow applies the defaulting chain: every column the schema has
// gets a value, preferring the envelope, then the chain
// label<-object<-source, title<-label, text<-body, summary<-text<-title,
// then a typed placeholder for any remaining NOT NULL column.
func buildRow(env model.Envelope, url string, cols []column) map[string]any {
	baseTS := env.TS
	if baseTS.IsZero() {
		baseTS = time.Now().UTC()
	}
	ts := baseTS.UTC().Format(time.RFC3339)

	source := strings.TrimSpace(env.Source)
	if source == "" {
		source = "atlas"
	}
	label := env.Object
	if label == "" {
		label = source
	}
	title := strings.TrimSpace(env.Title)
	if title == "" {
		title = label
	}
	text := env.Body
	summary := strings.TrimSpace(env.Summary)
	if summary == "" {
		summary = text
	}
	if summary == "" {
		summary = title
	}
	kind := env.Kind
	if kind == "" {
		kind = model.KindEvent
	}
	origin := env.Origin
	if origin == "" {
		origin = source
	}

	meta := ""
	if len(env.Meta) > 0 {
		if b, err := json.Marshal(env.Meta); err == nil {
			meta = string(b)
		}
	}

	row := map[string]any{
		"ts":         ts,
		"created_at": ts,
		"source":     source,
		"origin":     origin,
		"object":     env.Object,
		"project":    env.Object,
		"kind":       kind,
		"title":      title,
		"text":       text,
		"summary":    summary,
		"url":        url,
		"tags":       env.Tags,
		"meta":       meta,
		"raw":        env.Raw,
		"score":      0.35,
		"color":      model.ColorNeutral,
		"label":      label,
		"level":      model.ColorNeutral,
		"sentiment":  model.ColorNeutral,
	}

	known := make(map[string]bool, len(cols))
	for _, c := range cols {
		known[c.name] = true
	}
	for k := range row {
		if !known[k] {
			delete(row, k)
		}
	}

	// Placeholders for NOT NULL columns the chain does not know about.
	for _, c := range cols {
		if c.name == "id" || !c.notNull {
			continue
		}
		if _, ok := row[c.name]; ok {
			continue
		}
		switch {
		case c.dflt.Valid:
			row[c.name] = strings.Trim(c.dflt.String, "'")
		case c.name == "ts" || c.name == "created_at":
			row[c.name] = ts
		case c.name == "score":
			row[c.name] = 0.0
		default:
			row[c.name] = ""
		}
	}

	return row
}
