// Package audit records account activity (logins, refreshes, logouts) on a
// best-effort trail. A failed audit write never fails the user-facing
// operation.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store persists audit events append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Event, error)
}

// Trail is what domain services emit to. Implementations must not block
// the caller.
type Trail interface {
	Record(ctx context.Context, event Event)
}

// Publisher writes events straight to the store. Used in tests and in
// setups without a background worker.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	return &Publisher{store: store, logger: logger}
}

func (p *Publisher) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "audit append failed",
			slog.String("event_type", event.Type),
			slog.String("error", err.Error()),
		)
	}
}

func (p *Publisher) List(ctx context.Context, userID uuid.UUID) ([]Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// AsyncTrail hands events to a background worker over a buffered channel.
// When the buffer is full the event is dropped and a warning logged; the
// trail never applies backpressure to request handling.
type AsyncTrail struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewAsyncTrail(inbox chan<- Event, logger *slog.Logger) *AsyncTrail {
	return &AsyncTrail{inbox: inbox, logger: logger}
}

func (t *AsyncTrail) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case t.inbox <- event:
	default:
		t.logger.WarnContext(ctx, "audit inbox full, dropping event",
			slog.String("event_type", event.Type),
		)
	}
}
