package checkout

import (
	"context"
	"time"
)

// OutboxEvent is the persisted record of a domain event waiting to be
// published. Writing it in the same transaction as the session update keeps
// the event log and the session state consistent.
type OutboxEvent struct {
	ID          string     `bson:"_id"`
	AggregateID string     `bson:"aggregate_id"`
	EventType   string     `bson:"event_type"`
	Payload     []byte     `bson:"payload"`
	Processed   bool       `bson:"processed"`
	CreatedAt   time.Time  `bson:"created_at"`
	ProcessedAt *time.Time `bson:"processed_at,omitempty"`
}

const EventTypeFinalized = "checkout.finalized"

// Repository persists checkout sessions. Every write is a guarded
// single-document update (or a single transaction for Finalize), so a session
// is either fully updated or untouched.
type Repository interface {
	Insert(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	// FindLatestOpen returns the most recently created session for the user
	// with is_finalized=false, the authoritative target of payment updates.
	FindLatestOpen(ctx context.Context, userID string) (*Session, error)
	// UpdatePayment writes the session's payment fields, guarded on the
	// session still being open.
	UpdatePayment(ctx context.Context, session *Session) error
	// Finalize flips is_finalized on a paid, open session and appends the
	// outbox event in the same transaction. ErrStateConflict when the guard
	// does not match.
	Finalize(ctx context.Context, sessionID string, finalizedAt time.Time, event *OutboxEvent) error

	UnprocessedEvents(ctx context.Context, limit int64) ([]*OutboxEvent, error)
	MarkEventProcessed(ctx context.Context, eventID string) error
}
