// Package history persists sealed episodes to a local SQLite file so
// past decisions survive restarts and can be inspected later.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tonypeng1/moomoo/internal/episode"
)

// Record is one persisted episode row.
type Record struct {
	ID       string
	Started  time.Time
	Finished time.Time
	Alert    bool
	Skipped  bool
	Terms    []string
	RawText  string
	Err      string
}

// Store is a SQLite-backed episode log.
type Store struct {
	conn *sql.DB
}

// Open opens or creates the history database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS episodes (
		id TEXT PRIMARY KEY,
		started DATETIME NOT NULL,
		finished DATETIME NOT NULL,
		alert INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		terms TEXT,
		raw_text TEXT,
		error TEXT
	);
	`
	_, err := s.conn.Exec(query)
	return err
}

// Append writes one sealed episode.
func (s *Store) Append(ep *episode.Episode) error {
	_, err := s.conn.Exec(
		`INSERT INTO episodes (id, started, finished, alert, skipped, terms, raw_text, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ep.ID.String(), ep.Started, ep.Finished, ep.Alert, ep.Skipped,
		strings.Join(ep.Terms(), ","), ep.RawText(), ep.Err,
	)
	if err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}
	return nil
}

// Latest returns up to n most recent episodes, newest first.
func (s *Store) Latest(n int) ([]Record, error) {
	rows, err := s.conn.Query(
		`SELECT id, started, finished, alert, skipped, terms, raw_text, error
		 FROM episodes ORDER BY started DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var terms string
		if err := rows.Scan(&r.ID, &r.Started, &r.Finished, &r.Alert, &r.Skipped, &terms, &r.RawText, &r.Err); err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		if terms != "" {
			r.Terms = strings.Split(terms, ",")
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.conn.Close()
}
