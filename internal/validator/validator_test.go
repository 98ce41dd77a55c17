package validator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type (
	Venue struct {
		City string `validate:"required|maxlen:5"`
	}

	Meeting struct {
		Title  string    `validate:"required|maxlen:10"`
		Code   string    `validate:"len:4|regexp:^\\d+$"`
		Kind   string    `validate:"in:online,offline"`
		When   time.Time `validate:"required"`
		Venue  Venue     `validate:"nested"`
		Note   string
		hidden string `validate:"required"`
	}

	BadTag struct {
		Title string `validate:"unknown"`
	}

	BadLen struct {
		Title string `validate:"len:abc"`
	}

	BadKind struct {
		Count int `validate:"maxlen:3"`
	}
)

func validMeeting() Meeting {
	return Meeting{
		Title: "Meetup",
		Code:  "1234",
		Kind:  "online",
		When:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Venue: Venue{City: "Oslo"},
	}
}

func TestValidateCorrectValues(t *testing.T) {
	t.Run("struct", func(t *testing.T) {
		require.NoError(t, Validate(validMeeting()))
	})

	t.Run("pointer", func(t *testing.T) {
		m := validMeeting()
		require.NoError(t, Validate(&m))
	})

	t.Run("multibyte length", func(t *testing.T) {
		m := validMeeting()
		m.Title = "Встреча"
		require.NoError(t, Validate(m))
	})
}

func TestValidateIncorrectValues(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		err := Validate(Meeting{Title: "   ", Code: "12a", Kind: "hybrid", Venue: Venue{City: "Amsterdam"}})

		var vErrors ValidationErrors
		require.True(t, errors.As(err, &vErrors))
		require.True(t, vErrors.Has("Title", ErrValidateRequired))
		require.True(t, vErrors.Has("Code", ErrValidateIncorrectLen))
		require.True(t, vErrors.Has("Code", ErrValidateNotMatchRegexp))
		require.True(t, vErrors.Has("Kind", ErrValidateNotFoundInList))
		require.True(t, vErrors.Has("When", ErrValidateRequired))
		require.True(t, vErrors.Has("Venue.City", ErrValidateTooLong))
		require.Len(t, vErrors, 6)
	})

	t.Run("too long", func(t *testing.T) {
		m := validMeeting()
		m.Title = "a very long title"

		var vErrors ValidationErrors
		require.True(t, errors.As(Validate(m), &vErrors))
		require.Equal(t, ValidationErrors{{Field: "Title", Err: ErrValidateTooLong}}, vErrors)
	})

	t.Run("error text is sorted", func(t *testing.T) {
		v := ValidationErrors{
			{Field: "b", Err: ErrValidateRequired},
			{Field: "a", Err: ErrValidateTooLong},
		}
		require.Equal(t, "a: value is too long; b: value is required", v.Error())
		require.Equal(t, "b", v[0].Field)
	})
}

func TestValidateIncorrectInput(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		err  error
	}{
		{name: "nil", in: nil, err: ErrIncorrectStruct},
		{name: "not struct", in: "string", err: ErrIncorrectStruct},
		{name: "nil pointer", in: (*Meeting)(nil), err: ErrIncorrectStruct},
		{name: "unknown rule", in: BadTag{Title: "x"}, err: ErrIncorrectTag},
		{name: "bad tag value", in: BadLen{Title: "x"}, err: ErrIncorrectTagValue},
		{name: "string rule on int", in: BadKind{Count: 1}, err: ErrIncorrectTag},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, Validate(tt.in), tt.err)
		})
	}
}
