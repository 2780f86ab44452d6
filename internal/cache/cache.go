// Package cache persists per-commit summaries across invocations so repeated
// runs over overlapping revision ranges do not repeat expensive generation
// calls. One UTF-8 file per commit id; entries are assumed valid until
// explicitly cleared, since a real commit's content never changes under the
// same id. Prompt template edits do NOT invalidate entries; `giv cache clear`
// is the escape hatch.
package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Store is a durable commit-id -> summary map backed by a directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Path() string {
	return s.dir
}

func (s *Store) entryPath(commitID string) string {
	return filepath.Join(s.dir, commitID+"-summary.md")
}

// Get returns the cached summary for a commit. Missing or unreadable entries
// are reported as a miss, never as an error: a broken cache file costs one
// regeneration, not the run.
func (s *Store) Get(commitID string) (string, bool) {
	data, err := os.ReadFile(s.entryPath(commitID))
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("unreadable cache entry treated as miss", "commit", commitID, "error", err)
		}
		return "", false
	}
	return string(data), true
}

// Put stores a summary via a temp file and atomic rename, so an interrupted
// write never leaves a half-written entry visible to Get.
func (s *Store) Put(commitID, summary string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".summary-*.tmp")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := tmp.WriteString(summary); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.entryPath(commitID)); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Clear removes every cache entry. The directory itself is kept.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-summary.md") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("remove cache entry: %w", err)
		}
	}
	return nil
}
