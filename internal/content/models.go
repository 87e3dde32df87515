// Package content holds the productivity documents that live behind the
// auth gate: tasks, notes, habits, calendar events, and tags. The auth core
// treats all of this as opaque user data; nothing here feeds back into
// authentication decisions.
package content

import (
	"time"

	"github.com/google/uuid"
)

// Task is a to-do item with optional subtasks.
type Task struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Title     string      `json:"title"`
	Body      string      `json:"body,omitempty"`
	Done      bool        `json:"done"`
	SubTasks  []string    `json:"sub_tasks,omitempty"`
	TagIDs    []uuid.UUID `json:"tag_ids,omitempty"`
	DueAt     *time.Time  `json:"due_at,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Note is a free-form text document.
type Note struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Habit is a recurring practice with a streak counter.
type Habit struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Streak    int       `json:"streak"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Event is a calendar entry.
type Event struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag labels tasks, notes, and events.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is the common surface of the user-owned content types.
type Document interface {
	DocumentID() uuid.UUID
	OwnerID() uuid.UUID
}

func (t Task) DocumentID() uuid.UUID  { return t.ID }
func (t Task) OwnerID() uuid.UUID     { return t.UserID }
func (n Note) DocumentID() uuid.UUID  { return n.ID }
func (n Note) OwnerID() uuid.UUID     { return n.UserID }
func (h Habit) DocumentID() uuid.UUID { return h.ID }
func (h Habit) OwnerID() uuid.UUID    { return h.UserID }
func (e Event) DocumentID() uuid.UUID { return e.ID }
func (e Event) OwnerID() uuid.UUID    { return e.UserID }
