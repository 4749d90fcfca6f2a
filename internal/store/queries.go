package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"PulseAtlas/internal/model"
)

const engineLastIDKey = "engine:last_id"

// PendingSignals selects unscored rows (empty rationale), newest first.
func (s *Store) PendingSignals(limit int) ([]model.PendingSignal, error) {
	rows, err := s.db.Query(`SELECT id, source,
			COALESCE(title,''), COALESCE(text,''), COALESCE(summary,''), COALESCE(url,'')
		FROM signals
		WHERE rationale IS NULL OR rationale = ''
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending: %w", err)
	}
	defer rows.Close()

	var out []model.PendingSignal
	for rows.Next() {
		var p model.PendingSignal
		if err := rows.Scan(&p.ID, &p.Source, &p.Title, &p.Text, &p.Summary, &p.URL); err != nil {
			return nil, fmt.Errorf("scan pending: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ApplyScore fills score, color, label and rationale for one signal.
// The scoring engine only targets empty-rationale rows, so a signal is
// scored at most once.
func (s *Store) ApplyScore(id int64, score float64, color, label, rationale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`UPDATE signals SET score = ?, color = ?, label = ?, rationale = ?
		WHERE id = ?`, score, color, label, rationale, id)
	if err != nil {
		return fmt.Errorf("apply score id=%d: %w", id, err)
	}
	return nil
}

// EmitActions runs one decision batch: signals with id above the
// persisted watermark, in ascending order, are passed to the rule; any
// resulting action is inserted with conflict-ignore on its dedup key.
// The inserts and the watermark advance commit in a single transaction,
// so a signal is processed exactly once.
func (s *Store) EmitActions(rule func(model.SignalRef) *model.Action) (model.DecisionStats, []model.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats model.DecisionStats

	tx, err := s.db.Begin()
	if err != nil {
		return stats, nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	lastID, err := stateInt(tx, engineLastIDKey)
	if err != nil {
		return stats, nil, err
	}

	rows, err := tx.Query(`SELECT id, ts, source, COALESCE(url,''), COALESCE(title,''), score, color
		FROM signals WHERE id > ? ORDER BY id ASC`, lastID)
	if err != nil {
		return stats, nil, fmt.Errorf("select new signals: %w", err)
	}

	var refs []model.SignalRef
	for rows.Next() {
		var r model.SignalRef
		if err := rows.Scan(&r.ID, &r.TS, &r.Source, &r.URL, &r.Title, &r.Score, &r.Color); err != nil {
			rows.Close()
			return stats, nil, fmt.Errorf("scan signal: %w", err)
		}
		refs = append(refs, r)
	}
	if err := rows.Close(); err != nil {
		return stats, nil, err
	}

	maxID := lastID
	now := time.Now().UTC().Format(time.RFC3339)
	var inserted []model.Action

	for _, r := range refs {
		if r.ID > maxID {
			maxID = r.ID
		}
		a := rule(r)
		if a == nil {
			continue
		}
		payload := "{}"
		if len(a.Payload) > 0 {
			if b, err := json.Marshal(a.Payload); err == nil {
				payload = string(b)
			}
		}
		res, err := tx.Exec(`INSERT OR IGNORE INTO actions
			(ts, signal_id, action_type, priority, title, url, payload, status, dedup_key)
			VALUES(?,?,?,?,?,?,?,?,?)`,
			now, a.SignalID, a.Type, a.Priority, a.Title, a.URL, payload, "open", a.DedupKey())
		if err != nil {
			return stats, nil, fmt.Errorf("insert action: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			inserted = append(inserted, *a)
		}
	}

	if _, err := tx.Exec(`INSERT INTO engine_state(k, v) VALUES(?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		engineLastIDKey, strconv.FormatInt(maxID, 10)); err != nil {
		return stats, nil, fmt.Errorf("advance watermark: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return stats, nil, fmt.Errorf("commit: %w", err)
	}

	stats.Processed = len(refs)
	stats.Inserted = len(inserted)
	stats.LastID = maxID
	return stats, inserted, nil
}

func stateInt(tx *sql.Tx, key string) (int64, error) {
	var v sql.NullString
	err := tx.QueryRow(`SELECT v FROM engine_state WHERE k = ?`, key).Scan(&v)
	if err == sql.ErrNoRows || (err == nil && !v.Valid) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get state %q: %w", key, err)
	}
	n, err := strconv.ParseInt(v.String, 10, 64)
	if err != nil {
		return 0, nil // unreadable watermark, start over; dedup keys protect the actions table
	}
	return n, nil
}

// SignalsSince returns object-tagged signals with ts at or after the
// given time, for the index engine.
func (s *Store) SignalsSince(since time.Time) ([]model.ScoredSignal, error) {
	rows, err := s.db.Query(`SELECT COALESCE(object,''), color, score, ts
		FROM signals
		WHERE ts >= ? AND COALESCE(object,'') != ''`,
		since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("select window: %w", err)
	}
	defer rows.Close()

	var out []model.ScoredSignal
	for rows.Next() {
		var (
			sig model.ScoredSignal
			ts  string
		)
		if err := rows.Scan(&sig.Object, &sig.Color, &sig.Score, &ts); err != nil {
			return nil, fmt.Errorf("scan window: %w", err)
		}
		sig.TS = parseTS(ts)
		out = append(out, sig)
	}
	return out, rows.Err()
}

// parseTS tolerates the timestamp shapes that have accumulated in the
// signals table. Unparseable values come back zero, which counts the
// row as old for recency purposes.
func parseTS(ts string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SaveIndexSnapshots upserts one run's worth of object-index rows.
// Recomputing the same (ts, window, object) overwrites, never duplicates.
func (s *Store) SaveIndexSnapshots(snaps []model.IndexSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, sn := range snaps {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO object_index
			(ts, window_days, object, n_total, risk_share, vol_norm, recency, oii)
			VALUES(?,?,?,?,?,?,?,?)`,
			sn.TS, sn.WindowDays, sn.Object, sn.NTotal, sn.RiskShare, sn.VolNorm, sn.Recency, sn.OII); err != nil {
			return fmt.Errorf("insert snapshot %q: %w", sn.Object, err)
		}
	}
	return tx.Commit()
}

// RegisterDocument records an inbox file by content hash. Returns true
// when the file was new.
func (s *Store) RegisterDocument(filename, sha string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`INSERT OR IGNORE INTO documents(ts, filename, sha256) VALUES(?,?,?)`,
		time.Now().UTC().Format(time.RFC3339), filename, sha)
	if err != nil {
		return false, fmt.Errorf("register document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
