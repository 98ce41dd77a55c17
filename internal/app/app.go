package app

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lomoval/eventstore/internal/event"
	"github.com/lomoval/eventstore/internal/storage"
	log "github.com/sirupsen/logrus"
)

const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// Notifier publishes change notifications, e.g. to a message queue.
type Notifier interface {
	Publish(body []byte) error
}

type Notification struct {
	Action string       `json:"action"`
	ID     string       `json:"id"`
	Event  *event.Event `json:"event,omitempty"`
}

type App struct {
	Storage  storage.Storage
	notifier Notifier
	newID    func() string
}

func New(storage storage.Storage, notifier Notifier) *App {
	return &App{Storage: storage, notifier: notifier, newID: uuid.NewString}
}

func (a *App) ListEvents(ctx context.Context) ([]event.Event, error) {
	return a.Storage.ListEvents(ctx)
}

// CreateEvent validates the candidate and stores it under a fresh ID.
func (a *App) CreateEvent(ctx context.Context, c event.Candidate) (event.Event, error) {
	if err := c.Validate(); err != nil {
		return event.Event{}, err
	}
	e := c.WithID(a.newID())
	if err := a.Storage.AddEvent(ctx, e); err != nil {
		return event.Event{}, err
	}
	a.notify(Notification{Action: ActionCreated, ID: e.ID, Event: &e})
	return e, nil
}

func (a *App) RemoveEvent(ctx context.Context, id string) error {
	if err := a.Storage.RemoveEvent(ctx, id); err != nil {
		return err
	}
	a.notify(Notification{Action: ActionDeleted, ID: id})
	return nil
}

// Notifications are best effort, a failed publish does not fail the request.
func (a *App) notify(n Notification) {
	if a.notifier == nil {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		log.Errorf("failed to marshal notification: %v", err)
		return
	}
	if err := a.notifier.Publish(data); err != nil {
		log.WithField("action", n.Action).WithField("id", n.ID).Errorf("failed to publish notification: %v", err)
	}
}
