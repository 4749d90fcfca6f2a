package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Cursor returns the stored watermark for a source, or "" when the
// source has never completed a fetch.
func (s *Store) Cursor(source string) (string, error) {
	var cur sql.NullString
	err := s.db.QueryRow(`SELECT cursor FROM cursors WHERE source = ?`, source).Scan(&cur)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get cursor %q: %w", source, err)
	}
	return cur.String, nil
}

// SetCursor upserts the watermark for a source.
func (s *Store) SetCursor(source, cursor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO cursors(source, cursor, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET cursor = excluded.cursor, updated_at = excluded.updated_at`,
		source, cursor, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set cursor %q: %w", source, err)
	}
	return nil
}
