package content

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daystack/pkg/platform/sentinel"
)

func newTask(userID uuid.UUID, title string) Task {
	now := time.Now().UTC()
	return Task{ID: uuid.New(), UserID: userID, Title: title, CreatedAt: now, UpdatedAt: now}
}

func TestMemoryStoreScopesToOwner(t *testing.T) {
	store := NewMemoryStore[Task]()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	task := newTask(alice, "write report")
	require.NoError(t, store.Save(ctx, task))

	_, err := store.Get(ctx, bob, task.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	err = store.Delete(ctx, bob, task.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	got, err := store.Get(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "write report", got.Title)
}

func TestMemoryStoreListByUser(t *testing.T) {
	store := NewMemoryStore[Task]()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, store.Save(ctx, newTask(alice, "one")))
	require.NoError(t, store.Save(ctx, newTask(alice, "two")))
	require.NoError(t, store.Save(ctx, newTask(bob, "three")))

	tasks, err := store.ListByUser(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestMemoryStoreUpdateIsAtomic(t *testing.T) {
	store := NewMemoryStore[Task]()
	ctx := context.Background()
	owner := uuid.New()

	task := newTask(owner, "with subtasks")
	require.NoError(t, store.Save(ctx, task))

	// Concurrent pushes must not lose elements.
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Update(ctx, owner, task.ID, func(t Task) Task {
				t.SubTasks = append(t.SubTasks, string(rune('a'+i%26)))
				return t
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := store.Get(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Len(t, got.SubTasks, n)
}

func TestMemoryTagStoreUniquePerUser(t *testing.T) {
	store := NewMemoryTagStore()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, store.Create(ctx, &Tag{ID: uuid.New(), UserID: alice, Name: "work"}))

	err := store.Create(ctx, &Tag{ID: uuid.New(), UserID: alice, Name: "Work"})
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	// Same name for a different user is fine.
	assert.NoError(t, store.Create(ctx, &Tag{ID: uuid.New(), UserID: bob, Name: "work"}))
}

func TestMemoryTagStoreRename(t *testing.T) {
	store := NewMemoryTagStore()
	ctx := context.Background()
	owner := uuid.New()

	workTag := &Tag{ID: uuid.New(), UserID: owner, Name: "work"}
	require.NoError(t, store.Create(ctx, workTag))
	require.NoError(t, store.Create(ctx, &Tag{ID: uuid.New(), UserID: owner, Name: "home"}))

	assert.ErrorIs(t, store.Rename(ctx, owner, workTag.ID, "home"), sentinel.ErrConflict)
	assert.NoError(t, store.Rename(ctx, owner, workTag.ID, "office"))
	assert.ErrorIs(t, store.Rename(ctx, owner, uuid.New(), "x"), sentinel.ErrNotFound)
}
