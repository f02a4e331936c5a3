// Package storage defines the event store contract shared by the
// postgres and memory backends.
package storage

import (
	"context"

	"github.com/simoamogit/progetto-scuola/internal/domain"
)

// EventStore is the append-only store of scheduled events. Insert assigns
// ids; there is no update or delete beyond the notified transition.
type EventStore interface {
	// Insert persists a new event and returns it with its assigned id.
	// Inputs are pre-validated by the caller.
	Insert(ctx context.Context, subject, date, tod, description string) (domain.Event, error)

	// ListOrdered returns all events ordered by (date, time) ascending,
	// ties broken by insertion order.
	ListOrdered(ctx context.Context) ([]domain.Event, error)

	// ByDate returns all events on the given date in insertion order.
	ByDate(ctx context.Context, date string) ([]domain.Event, error)

	// MarkNotified transitions an event from pending to notified. It
	// returns false when the event was already notified (or does not
	// exist), so concurrent ticks settle on a single winner.
	MarkNotified(ctx context.Context, id int64) (bool, error)
}
