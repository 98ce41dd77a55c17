package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lomoval/eventstore/internal/event"
	"github.com/stretchr/testify/require"
)

func meetup() event.Candidate {
	return event.Candidate{
		Name:        "Meetup",
		Description: "Talk",
		Host:        "jack",
		Location:    "HQ",
		Date:        event.NewDate(2024, time.May, 1),
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(Config{URL: server.URL + "/api", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("correct url", func(t *testing.T) {
		_, err := New(Config{URL: "http://127.0.0.1:8005"})
		require.NoError(t, err)
	})

	for _, u := range []string{"", "127.0.0.1:8005", "ftp://host/", "http://", "::"} {
		u := u
		t.Run("incorrect url "+u, func(t *testing.T) {
			_, err := New(Config{URL: u})
			require.ErrorIs(t, err, ErrIncorrectURL)
		})
	}
}

func TestListEvents(t *testing.T) {
	t.Run("server order", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "/api/events", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `[
				{"id":"2","name":"B","description":"","host":"jack","location":"","date":"2024-05-02"},
				{"id":"1","name":"A","description":"","host":"jack","location":"","date":"2024-05-01"}
			]`)
		})

		events, err := c.ListEvents(context.Background())
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.Equal(t, "2", events[0].ID)
		require.Equal(t, "1", events[1].ID)
		require.Equal(t, "2024-05-01", events[1].Date.String())
	})

	t.Run("empty", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[]`)
		})

		events, err := c.ListEvents(context.Background())
		require.NoError(t, err)
		require.NotNil(t, events)
		require.Empty(t, events)
	})

	t.Run("null body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `null`)
		})

		events, err := c.ListEvents(context.Background())
		require.NoError(t, err)
		require.NotNil(t, events)
	})

	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":"database is down"}`)
		})

		_, err := c.ListEvents(context.Background())
		require.ErrorIs(t, err, ErrRejected)

		var rejection *RejectionError
		require.True(t, errors.As(err, &rejection))
		require.Equal(t, http.StatusInternalServerError, rejection.StatusCode)
		require.Equal(t, "database is down", rejection.Message)
	})

	t.Run("server error without json", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "oops", http.StatusBadGateway)
		})

		_, err := c.ListEvents(context.Background())
		var rejection *RejectionError
		require.True(t, errors.As(err, &rejection))
		require.Equal(t, http.StatusBadGateway, rejection.StatusCode)
		require.Empty(t, rejection.Message)
	})

	t.Run("broken json", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[{"id":`)
		})

		_, err := c.ListEvents(context.Background())
		require.ErrorIs(t, err, ErrNetwork)
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		c, err := New(Config{URL: url})
		require.NoError(t, err)
		_, err = c.ListEvents(context.Background())
		require.ErrorIs(t, err, ErrNetwork)
		require.False(t, errors.Is(err, ErrRejected))
	})

	t.Run("canceled", func(t *testing.T) {
		release := make(chan struct{})
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := c.ListEvents(ctx)
		require.ErrorIs(t, err, ErrNetwork)
	})
}

func TestCreateEvent(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/events", r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.NotContains(t, body, "id")
			require.Equal(t, "2024-05-01", body["date"])

			body["id"] = "1"
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			require.NoError(t, json.NewEncoder(w).Encode(body))
		})

		created, err := c.CreateEvent(context.Background(), meetup())
		require.NoError(t, err)
		require.Equal(t, meetup().WithID("1"), created)
	})

	t.Run("no id in response", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"name":"Meetup"}`)
		})

		_, err := c.CreateEvent(context.Background(), meetup())
		require.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("rejected", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"invalid event"}`)
		})

		_, err := c.CreateEvent(context.Background(), meetup())
		require.ErrorIs(t, err, ErrRejected)
		require.Contains(t, err.Error(), "invalid event")
	})
}

func TestDeleteEvent(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodDelete, r.Method)
			require.Equal(t, "/api/events/1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		})

		require.NoError(t, c.DeleteEvent(context.Background(), "1"))
	})

	t.Run("body is ignored", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{}`)
		})

		require.NoError(t, c.DeleteEvent(context.Background(), "1"))
	})

	t.Run("id is escaped", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/events/a%2Fb", r.URL.EscapedPath())
			w.WriteHeader(http.StatusNoContent)
		})

		require.NoError(t, c.DeleteEvent(context.Background(), "a/b"))
	})

	t.Run("not found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		err := c.DeleteEvent(context.Background(), "1")
		var rejection *RejectionError
		require.True(t, errors.As(err, &rejection))
		require.Equal(t, http.StatusNotFound, rejection.StatusCode)
	})
}
