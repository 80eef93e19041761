package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSlot stores the value in <dir>/<key>.json.
type FileSlot struct {
	dir string
	key string
}

// NewFileSlot returns a slot backed by a file in dir.
func NewFileSlot(dir, key string) *FileSlot {
	return &FileSlot{dir: dir, key: key}
}

// Key returns the slot key.
func (s *FileSlot) Key() string { return s.key }

// Location returns the backing file path.
func (s *FileSlot) Location() string {
	return filepath.Join(s.dir, s.key+".json")
}

// Get reads the backing file.
func (s *FileSlot) Get(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Location())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrAbsent
		}
		return nil, fmt.Errorf("read slot file: %w", err)
	}
	return data, nil
}

// Put replaces the backing file atomically.
func (s *FileSlot) Put(ctx context.Context, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+s.key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Location()); err != nil {
		return fmt.Errorf("replace slot file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *FileSlot) Close() error { return nil }
