// Package logsink persists log records next to the console output.
//
// File is an append-only writer suited for slog.NewJSONHandler, producing one
// JSON object per line. Fanout sends each record to several slog handlers.
package logsink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("log sink closed")

// File appends to a log file. Each Write is issued as a single write call
// so concurrent records never interleave.
type File struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// OpenFile opens path for appending, creating it and its parent directories
// if needed.
func OpenFile(path string) (*File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &File{path: path, f: f}, nil
}

func (s *File) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return 0, ErrClosed
	}
	return s.f.Write(p)
}

// Sync flushes the file to stable storage.
func (s *File) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return ErrClosed
	}
	return s.f.Sync()
}

// Path returns the file path the sink writes to.
func (s *File) Path() string {
	return s.path
}

// Close syncs and closes the file. Closing twice is a no-op.
func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return nil
	}

	syncErr := s.f.Sync()
	closeErr := s.f.Close()
	s.f = nil

	return errors.Join(syncErr, closeErr)
}
