// Package journal captures the inbound session event stream so a run can be
// replayed offline through the same dispatch path. It stores events, not
// strategy state: replaying rebuilds the strategy by re-running it.
package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is an append-only sqlite event log. Rows are (id, type, payload)
// with msgpack-encoded payloads; id order is arrival order.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		payload BLOB NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("ensure journal schema: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, frameType string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO events (type, payload) VALUES (?, ?)", frameType, payload)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Scan walks the log in arrival order. Returning an error from fn stops the
// walk and surfaces the error.
func (s *Store) Scan(ctx context.Context, fn func(id uint64, frameType string, payload []byte) error) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, type, payload FROM events ORDER BY id ASC")
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var frameType string
		var payload []byte
		if err := rows.Scan(&id, &frameType, &payload); err != nil {
			return err
		}
		if err := fn(id, frameType, payload); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
