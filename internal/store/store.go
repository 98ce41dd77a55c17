// Package store keeps a local, observable copy of the remote events collection.
//
// Every change goes through the remote endpoint first: local items are replaced
// on a successful load, appended to on a successful create and filtered on a
// successful delete. Operations of one Store run one at a time, so completions
// never interleave.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/lomoval/eventstore/internal/event"
	log "github.com/sirupsen/logrus"
)

// Messages recorded in LastError. The cause is only available through the returned error.
const (
	ErrLoadMessage   = "Network response was not ok"
	ErrCreateMessage = "Failed to add event"
	ErrDeleteMessage = "Failed to delete event"
)

type Client interface {
	ListEvents(ctx context.Context) ([]event.Event, error)
	CreateEvent(ctx context.Context, candidate event.Candidate) (event.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

type State struct {
	Items     []event.Event
	Loading   bool
	LastError string
}

// Observer receives a snapshot after every state change. It runs on the goroutine
// executing the operation and must not call Load, Create or Delete of the same store.
type Observer func(State)

type Store struct {
	client Client
	// Single slot: holding it means owning the only in-flight operation.
	queue chan struct{}

	mu        sync.RWMutex
	items     []event.Event
	loading   bool
	lastError string
	observers []subscription
	nextObsID int
}

type subscription struct {
	id       int
	observer Observer
}

// New creates a store and performs the initial load. A failed initial load is
// reported through LastError, the store is usable either way.
func New(ctx context.Context, client Client, observers ...Observer) *Store {
	s := &Store{
		client: client,
		queue:  make(chan struct{}, 1),
		items:  make([]event.Event, 0),
	}
	for _, o := range observers {
		s.Subscribe(o)
	}
	if err := s.Load(ctx); err != nil && s.LastError() == "" {
		// Load gave up before sending, e.g. ctx was already done.
		log.WithField("op", "load").Warnf("initial load not started: %v", err)
		s.update(func() { s.lastError = ErrLoadMessage })
	}
	return s
}

func (s *Store) Items() []event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyItems(s.items)
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Subscribe registers o and returns a function removing it.
func (s *Store) Subscribe(o Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObsID
	s.nextObsID++
	s.observers = append(s.observers, subscription{id: id, observer: o})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.observers {
				if sub.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Load replaces items with the remote collection.
func (s *Store) Load(ctx context.Context) error {
	return s.run(ctx, "load", ErrLoadMessage, nil, func(ctx context.Context) (mutation, error) {
		events, err := s.client.ListEvents(ctx)
		if err != nil {
			return nil, err
		}
		return func([]event.Event) []event.Event {
			return copyItems(events)
		}, nil
	})
}

// Create sends candidate to the endpoint and appends the event it returns.
func (s *Store) Create(ctx context.Context, candidate event.Candidate) (event.Event, error) {
	var created event.Event
	err := s.run(ctx, "create", ErrCreateMessage, candidate.Validate, func(ctx context.Context) (mutation, error) {
		e, err := s.client.CreateEvent(ctx, candidate)
		if err != nil {
			return nil, err
		}
		created = e
		return func(items []event.Event) []event.Event {
			next := make([]event.Event, 0, len(items)+1)
			next = append(next, items...)
			return append(next, e)
		}, nil
	})
	if err != nil {
		return event.Event{}, err
	}
	return created, nil
}

// Delete removes the event remotely, then drops every local item with that id.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.run(ctx, "delete", ErrDeleteMessage, nil, func(ctx context.Context) (mutation, error) {
		if err := s.client.DeleteEvent(ctx, id); err != nil {
			return nil, err
		}
		return func(items []event.Event) []event.Event {
			next := make([]event.Event, 0, len(items))
			for _, e := range items {
				if e.ID != id {
					next = append(next, e)
				}
			}
			return next
		}, nil
	})
}

type mutation func(items []event.Event) []event.Event

func (s *Store) run(
	ctx context.Context,
	op string,
	failure string,
	check func() error,
	call func(ctx context.Context) (mutation, error),
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.queue <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.queue }()

	logger := log.WithField("op", op)

	if check != nil {
		if err := check(); err != nil {
			s.update(func() { s.lastError = failure })
			logger.Warnf("rejected before sending: %v", err)
			return fmt.Errorf("%s: %w", failure, err)
		}
	}

	s.update(func() {
		s.lastError = ""
		s.loading = true
	})
	logger.Debug("request started")

	var (
		apply mutation
		err   error
	)
	defer func() {
		s.update(func() {
			s.loading = false
			if err != nil || apply == nil {
				s.lastError = failure
				return
			}
			s.items = apply(s.items)
		})
	}()

	apply, err = call(ctx)
	if err != nil {
		logger.Errorf("request failed: %v", err)
		return fmt.Errorf("%s: %w", failure, err)
	}
	logger.Debug("request succeeded")
	return nil
}

// update changes state under the lock and then notifies observers outside of it.
func (s *Store) update(change func()) {
	s.mu.Lock()
	change()
	state := s.snapshot()
	observers := make([]Observer, 0, len(s.observers))
	for _, sub := range s.observers {
		observers = append(observers, sub.observer)
	}
	s.mu.Unlock()

	for _, o := range observers {
		o(state)
	}
}

func (s *Store) snapshot() State {
	return State{
		Items:     copyItems(s.items),
		Loading:   s.loading,
		LastError: s.lastError,
	}
}

func copyItems(items []event.Event) []event.Event {
	c := make([]event.Event, len(items))
	copy(c, items)
	return c
}
