package event

import (
	"errors"
	"fmt"

	"github.com/lomoval/eventstore/internal/validator"
)

var ErrInvalidEvent = errors.New("invalid event")

// Candidate is an event that has not been persisted yet and therefore has no ID.
type Candidate struct {
	Name        string `json:"name" validate:"required|maxlen:200"`
	Description string `json:"description" validate:"maxlen:2000"`
	Host        string `json:"host" validate:"required|maxlen:100"`
	Location    string `json:"location" validate:"maxlen:200"`
	Date        Date   `json:"date" validate:"required"`
}

type Event struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Host        string `json:"host" db:"host"`
	Location    string `json:"location" db:"location"`
	Date        Date   `json:"date" db:"event_date"`
}

func (c Candidate) Validate() error {
	err := validator.Validate(c)
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if errors.As(err, &vErrors) {
		return &InvalidError{Errors: vErrors}
	}
	return fmt.Errorf("failed to validate event: %w", err)
}

func (c Candidate) WithID(id string) Event {
	return Event{
		ID:          id,
		Name:        c.Name,
		Description: c.Description,
		Host:        c.Host,
		Location:    c.Location,
		Date:        c.Date,
	}
}

func (e Event) Candidate() Candidate {
	return Candidate{
		Name:        e.Name,
		Description: e.Description,
		Host:        e.Host,
		Location:    e.Location,
		Date:        e.Date,
	}
}

// InvalidError lists the fields a candidate failed on. It matches ErrInvalidEvent.
type InvalidError struct {
	Errors validator.ValidationErrors
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidEvent, e.Errors.Error())
}

func (e *InvalidError) Is(target error) bool {
	return target == ErrInvalidEvent
}

func (e *InvalidError) Unwrap() error {
	return e.Errors
}
