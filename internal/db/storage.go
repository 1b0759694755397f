// Package db provides bbolt-backed storage for opsdeck run history
package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

var (
	runsBucket     = []byte("runs")
	commandsBucket = []byte("commands")
)

// ErrClosed is returned by operations on a closed storage
var ErrClosed = errors.New("storage is closed")

// Storage provides database operations
type Storage struct {
	db     *bbolt.DB
	path   string
	mu     sync.Mutex
	closed bool
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}

// NewStorage opens (or creates) the database at path
func NewStorage(path string) (*Storage, error) {
	if path == "" {
		return nil, errors.New("database path is empty")
	}
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{runsBucket, commandsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Storage{
		db:   db,
		path: path,
	}, nil
}

// Path returns the database file location
func (s *Storage) Path() string {
	return s.path
}

// Close closes the database
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Storage) ready() error {
	if s == nil || s.db == nil {
		return errors.New("storage not initialized")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}
