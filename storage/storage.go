// Package storage persists machine snapshots to disk.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Store reads and writes snapshot files. The filesystem is abstracted so
// tests can run against an in-memory fs.
type Store struct {
	fs afero.Fs
}

// NewStore creates a store backed by the OS filesystem
func NewStore() *Store {
	return &Store{fs: afero.NewOsFs()}
}

// NewStoreWithFs creates a store backed by the given filesystem
func NewStoreWithFs(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// WriteSnapshot writes snapshot data to path atomically. The parent
// directory is created if needed. The data is written to a temp file first
// and renamed into place so a crash mid-write never leaves a truncated
// snapshot behind.
func (s *Store) WriteSnapshot(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	if err := s.fs.Rename(tmpPath, path); err != nil {
		_ = s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}

	return nil
}

// ReadSnapshot reads snapshot data from path
func (s *Store) ReadSnapshot(path string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return data, nil
}

// HasSnapshot reports whether a snapshot file exists at path
func (s *Store) HasSnapshot(path string) bool {
	ok, err := afero.Exists(s.fs, path)
	return err == nil && ok
}

// DeleteSnapshot removes the snapshot file at path. Missing files are not
// an error.
func (s *Store) DeleteSnapshot(path string) error {
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, afero.ErrFileNotFound) {
		return fmt.Errorf("failed to remove snapshot file: %w", err)
	}
	return nil
}

// DefaultSnapshotPath derives a snapshot path from a ROM path by replacing
// its extension with .state
func DefaultSnapshotPath(romPath string) string {
	ext := filepath.Ext(romPath)
	return strings.TrimSuffix(romPath, ext) + ".state"
}
