package engine

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by a LocalStore when no record exists under
// the requested key.
var ErrNotFound = errors.New("engine: record not found")

// AuthSource supplies the current identity, if any. The engine only
// reads it; login state is owned elsewhere.
type AuthSource interface {
	CurrentUserID() (string, bool)
}

// RemoteStore is the server-side cart for authenticated users.
type RemoteStore interface {
	Load(ctx context.Context) ([]LineItem, *Coupon, error)
	Save(ctx context.Context, items []LineItem, coupon *Coupon) error
	ApplyCoupon(ctx context.Context, code string, cartTotal float64) (*Coupon, error)
}

// LocalStore is a string-keyed store for the guest cart record.
type LocalStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Notifier receives user-facing messages from the engine. Persistence
// failures on the write path are logged, not notified.
type Notifier interface {
	Notify(message string)
}

// MemStore is an in-memory LocalStore, used by tests and by embedders
// that have no durable guest storage.
type MemStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func (s *MemStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
