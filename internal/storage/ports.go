// Package storage defines the key-value persistence port shared by the
// repositories and its SQLite implementation.
package storage

import (
	"context"
	"errors"
)

// Persisted keys.
const (
	KeyExpenses    = "expenses"
	KeyBudgets     = "budgets"
	KeyCurrentUser = "currentUser"
	KeyUsers       = "users"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("store closed")

// Store is a string-keyed store of string values. A missing key is reported
// through the ok return, never as an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by stores that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}
