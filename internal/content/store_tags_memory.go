package content

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"daystack/pkg/platform/sentinel"
)

// MemoryTagStore mirrors TagStore semantics in memory, including the
// per-user name uniqueness.
type MemoryTagStore struct {
	mu   sync.RWMutex
	tags map[uuid.UUID]Tag
}

func NewMemoryTagStore() *MemoryTagStore {
	return &MemoryTagStore{tags: make(map[uuid.UUID]Tag)}
}

func (s *MemoryTagStore) Create(_ context.Context, tag *Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTakenLocked(tag.UserID, tag.Name, uuid.Nil) {
		return sentinel.ErrConflict
	}
	s.tags[tag.ID] = *tag
	return nil
}

func (s *MemoryTagStore) ListByUser(_ context.Context, userID uuid.UUID) ([]Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Tag
	for _, tag := range s.tags {
		if tag.UserID == userID {
			out = append(out, tag)
		}
	}
	return out, nil
}

func (s *MemoryTagStore) Rename(_ context.Context, userID, id uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, ok := s.tags[id]
	if !ok || tag.UserID != userID {
		return sentinel.ErrNotFound
	}
	if s.nameTakenLocked(userID, name, id) {
		return sentinel.ErrConflict
	}
	tag.Name = name
	s.tags[id] = tag
	return nil
}

func (s *MemoryTagStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, ok := s.tags[id]
	if !ok || tag.UserID != userID {
		return sentinel.ErrNotFound
	}
	delete(s.tags, id)
	return nil
}

func (s *MemoryTagStore) nameTakenLocked(userID uuid.UUID, name string, exclude uuid.UUID) bool {
	for _, tag := range s.tags {
		if tag.ID != exclude && tag.UserID == userID && strings.EqualFold(tag.Name, name) {
			return true
		}
	}
	return false
}
