// Package memory is a process-local key-value store backed by go-cache.
package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	gocache "github.com/patrickmn/go-cache"

	"financeflow/internal/storage"
)

type Store struct {
	items  *gocache.Cache
	closed atomic.Bool
}

func New() *Store {
	return &Store{items: gocache.New(gocache.NoExpiration, 0)}
}

// NewFromDir preloads every <key>.json file found in base, so a demo data set
// can replace the built-in seeds. Unreadable files are skipped.
func NewFromDir(base string) *Store {
	s := New()
	for _, key := range []string{storage.KeyExpenses, storage.KeyBudgets} {
		raw, err := os.ReadFile(filepath.Join(base, key+".json"))
		if err != nil {
			continue
		}
		if v := strings.TrimSpace(string(raw)); v != "" {
			s.items.Set(key, v, gocache.NoExpiration)
		}
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, storage.ErrClosed
	}
	v, ok := s.items.Get(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}
	s.items.Set(key, value, gocache.NoExpiration)
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}
	s.items.Delete(key)
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.closed.Store(true)
	s.items.Flush()
	return nil
}
