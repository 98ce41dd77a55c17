package storagebuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/lomoval/eventstore/internal/storage"
	memorystorage "github.com/lomoval/eventstore/internal/storage/memory"
	sqlstorage "github.com/lomoval/eventstore/internal/storage/sql"
)

const connectTimeout = 15 * time.Second

type Config struct {
	StorageType string
	Database    sqlstorage.Config
}

func New(config Config) (storage.Storage, error) {
	switch config.StorageType {
	case "", "memory":
		return memorystorage.New(), nil
	case "sql":
		s := sqlstorage.New(config.Database)
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		err := s.Connect(ctx)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to connect to %s database %s: %w",
				config.Database.Driver, location(config.Database), err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage type %s", config.StorageType)
	}
}

func location(config sqlstorage.Config) string {
	if config.Driver == sqlstorage.DriverSQLite {
		return config.Path
	}
	return fmt.Sprintf("%s:%d", config.Host, config.Port)
}
