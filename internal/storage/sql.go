package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Dialect holds the statements a SQL backend needs.
type Dialect struct {
	Name        string
	CreateTable string
	Select      string
	Upsert      string
}

// MySQL stores slots in a webnote_slots table with ? placeholders.
var MySQL = Dialect{
	Name: DriverMySQL,
	CreateTable: `CREATE TABLE IF NOT EXISTS webnote_slots (
    slot_key VARCHAR(191) PRIMARY KEY,
    value LONGTEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`,
	Select: `SELECT value FROM webnote_slots WHERE slot_key = ?`,
	Upsert: `INSERT INTO webnote_slots (slot_key, value) VALUES (?, ?)
    ON DUPLICATE KEY UPDATE value = VALUES(value)`,
}

// Postgres stores slots in a webnote_slots table with $n placeholders.
var Postgres = Dialect{
	Name: DriverPostgres,
	CreateTable: `CREATE TABLE IF NOT EXISTS webnote_slots (
    slot_key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	Select: `SELECT value FROM webnote_slots WHERE slot_key = $1`,
	Upsert: `INSERT INTO webnote_slots (slot_key, value, updated_at) VALUES ($1, $2, now())
    ON CONFLICT (slot_key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
}

// DialectFor returns the dialect for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverMySQL:
		return MySQL, nil
	case DriverPostgres:
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("no SQL dialect for driver %q", driver)
	}
}

// SQLSlot stores the value as one row of webnote_slots.
type SQLSlot struct {
	db      *sql.DB
	dialect Dialect
	key     string
}

// OpenSQLSlot connects to dsn with the named driver and prepares the table.
func OpenSQLSlot(ctx context.Context, driver, dsn, key string) (*SQLSlot, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s storage requires a dsn", driver)
	}
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	slot, err := NewSQLSlot(ctx, db, dialect, key)
	if err != nil {
		db.Close()
		return nil, err
	}
	return slot, nil
}

// NewSQLSlot wraps an open database and creates the table if needed.
func NewSQLSlot(ctx context.Context, db *sql.DB, dialect Dialect, key string) (*SQLSlot, error) {
	if _, err := db.ExecContext(ctx, dialect.CreateTable); err != nil {
		return nil, fmt.Errorf("create slot table: %w", err)
	}
	return &SQLSlot{db: db, dialect: dialect, key: key}, nil
}

// Key returns the slot key.
func (s *SQLSlot) Key() string { return s.key }

// Location describes the row the slot lives in.
func (s *SQLSlot) Location() string {
	return fmt.Sprintf("%s:webnote_slots/%s", s.dialect.Name, s.key)
}

// Get reads the stored value.
func (s *SQLSlot) Get(ctx context.Context) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.dialect.Select, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("read slot row: %w", err)
	}
	return []byte(value), nil
}

// Put upserts the stored value.
func (s *SQLSlot) Put(ctx context.Context, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.Upsert, s.key, string(value)); err != nil {
		return fmt.Errorf("write slot row: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLSlot) Close() error { return s.db.Close() }
