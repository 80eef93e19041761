// Package storage persists the task list to a named durable slot.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrAbsent is returned by Slot.Get when nothing has been stored yet.
var ErrAbsent = errors.New("slot is empty")

// Slot is a single named key in a durable key-value store. Put fully
// overwrites the previous value.
type Slot interface {
	Key() string
	Location() string
	Get(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, value []byte) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Drivers lists the accepted driver names.
func Drivers() []string {
	return []string{DriverFile, DriverMemory, DriverMySQL, DriverPostgres}
}

// Options selects and configures a slot backend.
type Options struct {
	Driver  string
	DataDir string // file driver
	DSN     string // mysql and postgres drivers
	Key     string
}

// Open returns the slot described by opts.
func Open(ctx context.Context, opts Options) (Slot, error) {
	if err := validateKey(opts.Key); err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverFile:
		if opts.DataDir == "" {
			return nil, fmt.Errorf("file storage requires a data dir")
		}
		return NewFileSlot(opts.DataDir, opts.Key), nil
	case DriverMemory:
		return NewMemorySlot(opts.Key), nil
	case DriverMySQL, DriverPostgres:
		return OpenSQLSlot(ctx, strings.ToLower(opts.Driver), opts.DSN, opts.Key)
	default:
		return nil, fmt.Errorf("unknown storage driver %q (expected %s)", opts.Driver, strings.Join(Drivers(), "|"))
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("slot key is empty")
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			return fmt.Errorf("slot key %q contains invalid character %q", key, c)
		}
	}
	if key == "." || key == ".." {
		return fmt.Errorf("slot key %q is reserved", key)
	}
	return nil
}
