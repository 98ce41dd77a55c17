package memorystorage

import (
	"context"
	"fmt"
	"sync"

	"github.com/lomoval/eventstore/internal/event"
	"github.com/lomoval/eventstore/internal/storage"
)

type Storage struct {
	mu     sync.RWMutex
	events []event.Event
	index  map[string]int
}

func New() *Storage {
	return &Storage{index: make(map[string]int)}
}

func (s *Storage) Connect(_ context.Context) error {
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	return nil
}

func (s *Storage) AddEvent(_ context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[e.ID]; ok {
		return fmt.Errorf("duplicate ID %q: %w", e.ID, storage.ErrDuplicateEventID)
	}
	s.index[e.ID] = len(s.events)
	s.events = append(s.events, e)
	return nil
}

func (s *Storage) RemoveEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.index[id]
	if !ok {
		return fmt.Errorf("failed to remove event with id %q: %w", id, storage.ErrNotFoundEvent)
	}

	s.events = append(s.events[:pos], s.events[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.events); i++ {
		s.index[s.events[i].ID] = i
	}
	return nil
}

func (s *Storage) ListEvents(_ context.Context) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]event.Event, len(s.events))
	copy(events, s.events)
	return events, nil
}
