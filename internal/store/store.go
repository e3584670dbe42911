// Package store persists finished draws so they can be shared and loaded later.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/engine"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("draw not found")
	ErrUnknownDriver = errors.New("unknown store driver")
)

type Store interface {
	Save(ctx context.Context, groups []engine.Group) (string, error)
	Fetch(ctx context.Context, id string) ([]engine.Group, error)
	Close() error
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Open builds the store named by driver.
func Open(driver, dsn string, log *zap.Logger) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverPostgres:
		return OpenGorm(dsn, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

const IDLength = 8

// NewID returns a random url-safe nanoid.
func NewID() (string, error) {
	return gonanoid.New(IDLength)
}
