package sprited

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB is a Store backed by an SQLite database.
type DB struct {
	db *sql.DB
}

// NewDB opens, creating if necessary, the SQLite database at file.
func NewDB(file string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	// Keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY NOT NULL, value BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{
		db: db,
	}, nil
}

// Get returns the value stored under key.
func (db *DB) Get(key string) ([]byte, error) {
	var value []byte
	switch err := db.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value); err {
	case sql.ErrNoRows:
		return nil, ErrNotFound
	case nil:
		return value, nil
	default:
		return nil, err
	}
}

// Set replaces the value stored under key.
func (db *DB) Set(key string, value []byte) error {
	if _, err := db.db.Exec("INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)", key, value); err != nil {
		return err
	}
	return nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.db.Close()
}
