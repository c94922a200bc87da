package registry

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS tracked_wallets (
    user_id INTEGER PRIMARY KEY,
    address TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// SQLite is an optional persistent registry, selected when DB_PATH is set.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) SetWallet(userID int64, address string) error {
	if address == "" {
		return fmt.Errorf("empty wallet address")
	}
	_, err := s.db.Exec(`
		INSERT INTO tracked_wallets (user_id, address)
		VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			address = excluded.address,
			updated_at = CURRENT_TIMESTAMP`,
		userID, address)
	return err
}

func (s *SQLite) GetWallet(userID int64) (string, error) {
	var addr string
	err := s.db.QueryRow("SELECT address FROM tracked_wallets WHERE user_id=?", userID).Scan(&addr)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotTracked
	}
	if err != nil {
		return "", err
	}
	return addr, nil
}

func (s *SQLite) Count() int {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM tracked_wallets").Scan(&n); err != nil {
		return 0
	}
	return n
}
