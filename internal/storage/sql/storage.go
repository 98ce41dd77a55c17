package sqlstorage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/lomoval/eventstore/internal/event"
	"github.com/lomoval/eventstore/internal/storage"
	log "github.com/sirupsen/logrus"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	dbErrUniqueViolation = "23505"
)

var (
	ErrConnectionFailed = errors.New("failed to connect")
	ErrUnknownDriver    = errors.New("unknown database driver")
)

var schema = map[string]string{
	DriverPostgres: `CREATE TABLE IF NOT EXISTS events (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		host TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		event_date DATE NOT NULL
	)`,
	DriverSQLite: `CREATE TABLE IF NOT EXISTS events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		host TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		event_date TEXT NOT NULL
	)`,
}

type Config struct {
	Driver   string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	// Path is the database file for the sqlite driver.
	Path string
}

type Storage struct {
	driver   string
	host     string
	port     int
	database string
	username string
	password string
	path     string
	db       *sqlx.DB
}

func New(config Config) *Storage {
	driver := config.Driver
	if driver == "" {
		driver = DriverPostgres
	}
	return &Storage{
		driver:   driver,
		host:     config.Host,
		port:     config.Port,
		database: config.Database,
		username: config.Username,
		password: config.Password,
		path:     config.Path,
	}
}

func (s *Storage) Connect(ctx context.Context) error {
	ddl, ok := schema[s.driver]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownDriver, s.driver)
	}

	db, err := sqlx.ConnectContext(ctx, s.driver, s.dsn())
	if err != nil {
		log.Errorf("failed to connect: %v", err)
		return ErrConnectionFailed
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return fmt.Errorf("failed to prepare schema: %w", err)
	}
	s.db = db
	return nil
}

func (s *Storage) dsn() string {
	if s.driver == DriverSQLite {
		return "file:" + s.path + "?_pragma=busy_timeout(5000)"
	}
	return fmt.Sprintf(
		"sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
		s.host, s.port, s.database, s.username, s.password)
}

func (s *Storage) Close(_ context.Context) error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (s *Storage) AddEvent(ctx context.Context, e event.Event) error {
	_, err := s.db.ExecContext(
		ctx,
		s.db.Rebind("INSERT INTO events(id, name, description, host, location, event_date) VALUES(?, ?, ?, ?, ?, ?)"),
		e.ID, e.Name, e.Description, e.Host, e.Location, e.Date)
	if isUniqueViolation(err) {
		return fmt.Errorf("duplicate ID %q: %w", e.ID, storage.ErrDuplicateEventID)
	}
	return err
}

func (s *Storage) RemoveEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM events WHERE id=?"), id)
	if err != nil {
		return fmt.Errorf("failed to remove event with id %q: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove event with id %q: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to remove event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	return nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]event.Event, error) {
	events := make([]event.Event, 0)
	err := s.db.SelectContext(
		ctx,
		&events,
		"SELECT id, name, description, host, location, event_date FROM events ORDER BY seq",
	)
	return events, err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == dbErrUniqueViolation
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
