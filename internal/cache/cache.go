// Package cache memoizes derived report views between ledger mutations.
package cache

import (
	"context"
	"time"

	applog "financeflow/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Purge drops every entry, used when the ledger changes.
	Purge()
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically removes expired entries from registered caches.
type Janitor struct {
	caches []Cleaner
	logger *applog.Logger
}

func NewJanitor(logger *applog.Logger, caches ...Cleaner) *Janitor {
	return &Janitor{caches: caches, logger: logger.WithComponent(applog.ComponentCache)}
}

// Run blocks until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := 0
			for _, c := range j.caches {
				cleaned += c.CleanExpired()
			}
			if cleaned > 0 {
				j.logger.Debug("Expired cache entries removed", "count", cleaned)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
