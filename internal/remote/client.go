package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/sling"
	"github.com/lomoval/eventstore/internal/event"
)

const eventsPath = "events"

var (
	ErrNetwork           = errors.New("network failure")
	ErrRejected          = errors.New("server rejected request")
	ErrMalformedResponse = errors.New("malformed response")
	ErrIncorrectURL      = errors.New("incorrect endpoint url")
)

type Config struct {
	URL     string
	Timeout time.Duration
}

// RejectionError is returned when the endpoint answers with a non-2xx status.
type RejectionError struct {
	StatusCode int
	Message    string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", ErrRejected, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrRejected, e.StatusCode, e.Message)
}

func (e *RejectionError) Unwrap() error {
	return ErrRejected
}

type apiError struct {
	Error string `json:"error"`
}

// Client talks to the /events REST resource.
type Client struct {
	base *sling.Sling
}

func New(config Config) (*Client, error) {
	return NewWithHTTPClient(config, &http.Client{Timeout: config.Timeout})
}

func NewWithHTTPClient(config Config, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrIncorrectURL, config.URL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w %q", ErrIncorrectURL, config.URL)
	}
	// Relative paths resolve against the last slash of the base.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	return &Client{
		base: sling.New().Client(httpClient).Base(u.String()),
	}, nil
}

func (c *Client) ListEvents(ctx context.Context) ([]event.Event, error) {
	events := make([]event.Event, 0)
	if err := c.do(ctx, c.base.New().Get(eventsPath), &events); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if events == nil {
		events = make([]event.Event, 0)
	}
	return events, nil
}

func (c *Client) CreateEvent(ctx context.Context, candidate event.Candidate) (event.Event, error) {
	var created event.Event
	if err := c.do(ctx, c.base.New().Post(eventsPath).BodyJSON(candidate), &created); err != nil {
		return event.Event{}, fmt.Errorf("failed to create event: %w", err)
	}
	if created.ID == "" {
		return event.Event{}, fmt.Errorf("failed to create event: %w: no id assigned", ErrMalformedResponse)
	}
	return created, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	if err := c.do(ctx, c.base.New().Delete(eventsPath+"/"+url.PathEscape(id)), nil); err != nil {
		return fmt.Errorf("failed to delete event %q: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, s *sling.Sling, successV interface{}) error {
	req, err := s.Request()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	failure := apiError{}
	resp, err := s.Do(req.WithContext(ctx), successV, &failure)
	if resp != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return &RejectionError{StatusCode: resp.StatusCode, Message: failure.Error}
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", ErrNetwork, ctxErr)
		}
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return nil
}
