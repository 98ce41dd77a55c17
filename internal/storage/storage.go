package storage

import (
	"context"
	"errors"

	"github.com/lomoval/eventstore/internal/event"
)

var (
	ErrDuplicateEventID = errors.New("event with same ID exists")
	ErrNotFoundEvent    = errors.New("event not found")
)

// Storage keeps events in insertion order.
type Storage interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	AddEvent(ctx context.Context, e event.Event) error
	RemoveEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context) ([]event.Event, error)
}
