package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/lomoval/eventstore/internal/event"
	"github.com/lomoval/eventstore/internal/identity"
	"github.com/lomoval/eventstore/internal/validator"
	log "github.com/sirupsen/logrus"
)

var ErrIncompleteForm = errors.New("form is not complete")

type Creator interface {
	Create(ctx context.Context, candidate event.Candidate) (event.Event, error)
}

// Fields hold raw user input, every one of them must be filled in.
type Fields struct {
	Name        string `validate:"required"`
	Description string `validate:"required"`
	Location    string `validate:"required"`
	Date        string `validate:"required"`
}

// Form collects input for a new event and submits it with the current identity as host.
type Form struct {
	Fields

	creator  Creator
	identity identity.Provider
}

func New(creator Creator, provider identity.Provider) *Form {
	return &Form{creator: creator, identity: provider}
}

// Submit creates the event. Once the create call returns the fields are reset,
// whatever its result; incomplete input is rejected without calling the creator.
func (f *Form) Submit(ctx context.Context) (event.Event, error) {
	candidate, err := f.candidate(ctx)
	if err != nil {
		return event.Event{}, err
	}

	created, err := f.creator.Create(ctx, candidate)
	f.Reset()
	if err != nil {
		return event.Event{}, err
	}
	log.WithField("id", created.ID).Debug("event submitted")
	return created, nil
}

func (f *Form) Reset() {
	f.Fields = Fields{}
}

func (f *Form) candidate(ctx context.Context) (event.Candidate, error) {
	if err := validator.Validate(f.Fields); err != nil {
		return event.Candidate{}, fmt.Errorf("%w: %w", ErrIncompleteForm, err)
	}

	date, err := event.ParseDate(f.Date)
	if err != nil {
		return event.Candidate{}, fmt.Errorf("%w: %w", ErrIncompleteForm, err)
	}

	host, err := f.identity.Current(ctx)
	if err != nil {
		return event.Candidate{}, fmt.Errorf("failed to get host: %w", err)
	}

	return event.Candidate{
		Name:        f.Name,
		Description: f.Description,
		Host:        host,
		Location:    f.Location,
		Date:        date,
	}, nil
}
