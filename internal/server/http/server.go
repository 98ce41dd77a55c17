package internalhttp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lomoval/eventstore/internal/event"
	"github.com/lomoval/eventstore/internal/storage"
	log "github.com/sirupsen/logrus"
)

const (
	errInternalServerError = "internal server error"
	errEventNotFound       = "event not found"
	errEventDuplicate      = "event already exists"
)

type Config struct {
	Host string
	Port int
}

type Application interface {
	ListEvents(ctx context.Context) ([]event.Event, error)
	CreateEvent(ctx context.Context, c event.Candidate) (event.Event, error)
	RemoveEvent(ctx context.Context, id string) error
}

type Server struct {
	srv    *http.Server
	addr   string
	engine *gin.Engine
	app    Application
}

func NewServer(config Config, app Application) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		addr:   net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		engine: gin.New(),
		app:    app,
	}
	s.engine.Use(loggingMiddleware(), gin.Recovery())
	s.engine.GET("/events", s.listEvents)
	s.engine.POST("/events", s.createEvent)
	s.engine.DELETE("/events/:id", s.removeEvent)
	s.srv = &http.Server{Addr: s.addr, Handler: s.engine}
	return s
}

// Handler exposes the routes without listening, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start(_ context.Context) error {
	log.Printf("starting http server on %s", s.addr)
	err := s.srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) listEvents(c *gin.Context) {
	events, err := s.app.ListEvents(c.Request.Context())
	if err != nil {
		log.Errorf("failed to list events: %v", err)
		jsonError(c, http.StatusInternalServerError, errInternalServerError)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) createEvent(c *gin.Context) {
	var candidate event.Candidate
	if err := c.ShouldBindJSON(&candidate); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	created, err := s.app.CreateEvent(c.Request.Context(), candidate)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, created)
	case errors.Is(err, event.ErrInvalidEvent):
		jsonError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrDuplicateEventID):
		jsonError(c, http.StatusConflict, errEventDuplicate)
	default:
		log.Errorf("failed to create event: %v", err)
		jsonError(c, http.StatusInternalServerError, errInternalServerError)
	}
}

func (s *Server) removeEvent(c *gin.Context) {
	err := s.app.RemoveEvent(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, storage.ErrNotFoundEvent):
		jsonError(c, http.StatusNotFound, errEventNotFound)
	default:
		log.Errorf("failed to remove event: %v", err)
		jsonError(c, http.StatusInternalServerError, errInternalServerError)
	}
}

func jsonError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}
