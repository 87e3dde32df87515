package content

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"daystack/pkg/platform/sentinel"
)

// MemoryStore is a concurrency-safe in-memory document store, generic over
// the content types. Update applies a mutation under the store lock so
// array-field edits (subtask push/pull) do not race.
type MemoryStore[T Document] struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]T
}

func NewMemoryStore[T Document]() *MemoryStore[T] {
	return &MemoryStore[T]{docs: make(map[uuid.UUID]T)}
}

// Get returns the document, scoped to its owner. A document owned by
// another user is reported as absent, not forbidden.
func (s *MemoryStore[T]) Get(_ context.Context, userID, id uuid.UUID) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok || doc.OwnerID() != userID {
		var zero T
		return zero, sentinel.ErrNotFound
	}
	return doc, nil
}

func (s *MemoryStore[T]) ListByUser(_ context.Context, userID uuid.UUID) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []T
	for _, doc := range s.docs {
		if doc.OwnerID() == userID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *MemoryStore[T]) Save(_ context.Context, doc T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.DocumentID()] = doc
	return nil
}

// Update applies fn to the stored document atomically.
func (s *MemoryStore[T]) Update(_ context.Context, userID, id uuid.UUID, fn func(T) T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok || doc.OwnerID() != userID {
		var zero T
		return zero, sentinel.ErrNotFound
	}
	doc = fn(doc)
	s.docs[id] = doc
	return doc, nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok || doc.OwnerID() != userID {
		return sentinel.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}
