// Package cache persists the commit-to-TODO-count mapping between runs.
//
// A commit's content never changes, so its TODO count never changes either.
// Entries are therefore written once and reused unconditionally, with no
// invalidation policy. The whole mapping is held in memory and stored on disk
// as a single JSON object keyed by commit hash.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// TodoCache maps commit hashes to marker counts. It is loaded once at startup
// and flushed once at clean shutdown; it is not safe for concurrent use.
type TodoCache struct {
	path    string
	entries map[string]int
	dirty   bool
}

// Load reads the cache file at path. A missing file yields an empty cache; a
// file that exists but cannot be parsed is an error.
func Load(path string) (*TodoCache, error) {
	c := &TodoCache{path: path, entries: make(map[string]int)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read cache file %q: %w", path, err)
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("cache file %q is corrupt: %w. Delete it to rebuild from scratch", path, err)
	}
	return c, nil
}

// Get returns the cached count for a commit hash.
func (c *TodoCache) Get(hash string) (int, bool) {
	count, ok := c.entries[hash]
	return count, ok
}

// Put records the count for a commit hash.
func (c *TodoCache) Put(hash string, count int) {
	c.entries[hash] = count
	c.dirty = true
}

// Len returns the number of cached entries.
func (c *TodoCache) Len() int {
	return len(c.entries)
}

// Flush writes the full mapping back to disk. The file is written to a
// temporary sibling and renamed into place, so a crash mid-write never
// corrupts the previous cache. A cache with no new entries is not rewritten.
func (c *TodoCache) Flush() error {
	if !c.dirty {
		return nil
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace cache file %q: %w", c.path, err)
	}
	c.dirty = false
	return nil
}
