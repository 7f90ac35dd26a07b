// Package shelf is the persistent keyed cache of book records, backed by a
// flat YAML file. Records are loaded once at startup, held in memory, and
// written back at shutdown.
package shelf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/berkana/internal/apperr"
	"github.com/starford/berkana/internal/models"
)

// FetchFunc re-fetches the record behind id. Used by RefreshAll.
type FetchFunc func(ctx context.Context, id string) (*models.Book, error)

// Shelf maps item IDs to book records. Safe for concurrent use: watch mode
// has API readers alongside the engine writer.
type Shelf struct {
	mu     sync.RWMutex
	path   string
	books  map[string]*models.Book
	dirty  bool
	logger *slog.Logger
}

// Load reads the shelf file at path. A missing file yields an empty shelf,
// not an error.
func Load(path string, logger *slog.Logger) (*Shelf, error) {
	s := &Shelf{
		path:   path,
		books:  make(map[string]*models.Book),
		logger: logger,
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("shelf: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s.books); err != nil {
		return nil, fmt.Errorf("shelf: parse %s: %w", path, err)
	}
	return s, nil
}

// Path returns the backing file location.
func (s *Shelf) Path() string { return s.path }

// Get returns the record behind id.
func (s *Shelf) Get(id string) (*models.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	return b, ok
}

// Put inserts or replaces the record behind id. Records are replaced whole;
// there are no partial field updates.
func (s *Shelf) Put(id string, b *models.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[id] = b
	s.dirty = true
}

// Len returns the number of cached records.
func (s *Shelf) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// Books returns all records sorted by ID.
func (s *Shelf) Books() []*models.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Book, 0, len(s.books))
	for _, id := range s.sortedIDs() {
		out = append(out, s.books[id])
	}
	return out
}

// Find returns the record behind id or apperr.ErrNotFound.
func (s *Shelf) Find(id string) (*models.Book, error) {
	b, ok := s.Get(id)
	if !ok {
		return nil, fmt.Errorf("shelf: %s: %w", id, apperr.ErrNotFound)
	}
	return b, nil
}

// Save persists the shelf to its backing file. An empty or unchanged shelf
// is never written, so an aborted run cannot clobber existing data with
// emptiness.
func (s *Shelf) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.books) == 0 || !s.dirty {
		return nil
	}
	if err := s.writeFile(s.path); err != nil {
		return err
	}
	s.dirty = false
	s.logger.Info("shelf: saved",
		slog.String("path", s.path),
		slog.Int("records", len(s.books)))
	return nil
}

// RefreshAll re-fetches every cached record and replaces it. The
// pre-refresh shelf is copied to a timestamped backup file first, so an
// interrupted refresh or a degraded remote page never costs the old data.
// A record whose re-fetch degrades to unavailable keeps its previous value.
func (s *Shelf) RefreshAll(ctx context.Context, fetch FetchFunc) error {
	s.mu.Lock()
	if len(s.books) > 0 {
		backup := s.backupPath(time.Now())
		if err := s.writeFile(backup); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("shelf: backup before refresh: %w", err)
		}
		s.logger.Info("shelf: backup written", slog.String("path", backup))
	}
	ids := s.sortedIDs()
	s.mu.Unlock()

	for _, id := range ids {
		b, err := fetch(ctx, id)
		if err != nil {
			if errors.Is(err, apperr.ErrUnavailable) || errors.Is(err, apperr.ErrMissingTitle) {
				s.logger.Warn("shelf: refresh skipped, keeping cached record",
					slog.String("id", id),
					slog.String("error", err.Error()))
				continue
			}
			return err
		}
		s.Put(id, b)
	}
	return nil
}

// writeFile serializes the records deterministically (sorted keys) and
// writes them atomically: tmp file, fsync, rename. Callers hold mu.
func (s *Shelf) writeFile(path string) error {
	data, err := marshalSorted(s.books)
	if err != nil {
		return fmt.Errorf("shelf: marshal: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("shelf: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".berkana-tmp-*")
	if err != nil {
		return fmt.Errorf("shelf: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("shelf: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("shelf: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("shelf: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("shelf: rename: %w", err)
	}
	success = true
	return nil
}

// marshalSorted encodes the record map with keys in sorted order, so file
// diffs stay stable across runs.
func marshalSorted(books map[string]*models.Book) ([]byte, error) {
	ids := make([]string, 0, len(books))
	for id := range books {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, id := range ids {
		key := &yaml.Node{}
		key.SetString(id)
		val := &yaml.Node{}
		if err := val.Encode(books[id]); err != nil {
			return nil, err
		}
		root.Content = append(root.Content, key, val)
	}
	return yaml.Marshal(root)
}

func (s *Shelf) backupPath(now time.Time) string {
	ext := filepath.Ext(s.path)
	base := s.path[:len(s.path)-len(ext)]
	return fmt.Sprintf("%s.backup-%s%s", base, now.Format("20060102T150405"), ext)
}

func (s *Shelf) sortedIDs() []string {
	ids := make([]string, 0, len(s.books))
	for id := range s.books {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
