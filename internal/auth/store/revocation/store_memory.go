package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryList is an in-process revocation list for tests and single-instance
// development. Expired entries are dropped lazily on read.
type MemoryList struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // jti -> expiry
	clock   func() time.Time
}

// MemoryListOption configures a MemoryList.
type MemoryListOption func(*MemoryList)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) MemoryListOption {
	return func(l *MemoryList) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// NewMemory constructs an empty in-memory revocation list.
func NewMemory(opts ...MemoryListOption) *MemoryList {
	l := &MemoryList{
		revoked: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

func (l *MemoryList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = l.clock().Add(ttl)
	return nil
}

func (l *MemoryList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	expiry, ok := l.revoked[jti]
	if !ok {
		return false, nil
	}
	if l.clock().After(expiry) {
		delete(l.revoked, jti)
		return false, nil
	}
	return true, nil
}
