package cache

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the commissioner map in an embedded database. Same
// append-only contract as the flat file, for deployments that already carry
// a db.
type SQLiteStore struct {
	conn    *sql.DB
	entries map[string]string
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec(`
CREATE TABLE IF NOT EXISTS commissioner_map (
  odsCode TEXT PRIMARY KEY,
  commissioner TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	entries := map[string]string{}
	rows, err := conn.Query(`SELECT odsCode, commissioner FROM commissioner_map`)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var code, commissioner string
		if err := rows.Scan(&code, &commissioner); err != nil {
			_ = conn.Close()
			return nil, err
		}
		entries[code] = commissioner
	}
	if err := rows.Err(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &SQLiteStore{conn: conn, entries: entries}, nil
}

func (s *SQLiteStore) Get(odsCode string) (string, bool) {
	value, ok := s.entries[strings.ToUpper(strings.TrimSpace(odsCode))]
	return value, ok
}

func (s *SQLiteStore) Put(odsCode, commissioner string) error {
	code := strings.ToUpper(strings.TrimSpace(odsCode))
	if _, ok := s.entries[code]; ok {
		return nil
	}
	if _, err := s.conn.Exec(
		`INSERT OR IGNORE INTO commissioner_map (odsCode, commissioner) VALUES (?, ?)`,
		code, commissioner,
	); err != nil {
		return err
	}
	s.entries[code] = commissioner
	return nil
}

func (s *SQLiteStore) Len() int {
	return len(s.entries)
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
