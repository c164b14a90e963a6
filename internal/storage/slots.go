// Package storage provides the durable local store backing the application.
//
// Data lives in named slots: each slot holds one opaque text value keyed by
// name. The bill ledger slot holds the serialized bill sequence as a JSON
// array; the preferred-currency slot holds a plain currency code. Writes are
// write-through with no batching; a single process is assumed.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Slot names used by the application.
const (
	SlotBills             = "smartbill_data"
	SlotPreferredCurrency = "smartbill_pref_currency"
)

// ErrSlotNotFound is returned by Get when the named slot has never been written.
var ErrSlotNotFound = errors.New("slot not found")

const schema = `
CREATE TABLE IF NOT EXISTS slots (
    name       TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

// SlotStore is a sqlite-backed named-slot key/value store.
type SlotStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the slot database at dbPath.
func Open(dbPath string) (*SlotStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create slots table: %w", err)
	}

	return &SlotStore{db: db}, nil
}

// OpenInMemory opens a private in-memory slot store, used by tests.
func OpenInMemory() (*SlotStore, error) {
	return Open(":memory:")
}

// Close releases the underlying database handle.
func (s *SlotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get reads the value of a named slot. Returns ErrSlotNotFound if the slot
// has never been written.
func (s *SlotStore) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSlotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read slot %q: %w", name, err)
	}
	return value, nil
}

// Put writes the full value of a named slot, replacing any previous value.
func (s *SlotStore) Put(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write slot %q: %w", name, err)
	}
	return nil
}
