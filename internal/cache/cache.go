// Package cache stores conversation transcripts as files on disk.
package cache

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const transcriptExt = ".gob"

var errInvalidID = errors.New("invalid id")

// Cache is a generic file-backed store keyed by conversation id.
type Cache[T any] struct {
	dir string
}

// New creates a new cache instance rooted at dir.
func New[T any](dir string) (*Cache[T], error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache[T]{dir: dir}, nil
}

func (c *Cache[T]) path(id string) string {
	return filepath.Join(c.dir, id+transcriptExt)
}

// Read opens the item with the given id and hands it to readFn.
func (c *Cache[T]) Read(id string, readFn func(io.Reader) error) error {
	if id == "" {
		return fmt.Errorf("read: %w", errInvalidID)
	}
	file, err := os.Open(c.path(id))
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	defer file.Close() //nolint:errcheck

	if err := readFn(file); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	return nil
}

// Write creates or replaces the item with the given id.
func (c *Cache[T]) Write(id string, writeFn func(io.Writer) error) error {
	if id == "" {
		return fmt.Errorf("write: %w", errInvalidID)
	}
	file, err := os.Create(c.path(id))
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	defer file.Close() //nolint:errcheck

	if err := writeFn(file); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Delete removes a cached item by its ID.
func (c *Cache[T]) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("delete: %w", errInvalidID)
	}
	if err := os.Remove(c.path(id)); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}
