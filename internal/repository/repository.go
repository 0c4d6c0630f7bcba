package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

// ErrUnavailable is returned by a primary store that is not connected.
var ErrUnavailable = errors.New("primary store unavailable")

// PrimaryStore is the optional database-backed persistence path.
type PrimaryStore interface {
	IsAvailable(ctx context.Context) bool
	Save(ctx context.Context, obs models.Observation) error
	FindAllNewestFirst(ctx context.Context) ([]models.Observation, error)
}

const defaultPingTimeout = 2 * time.Second

// Repository is the PostgreSQL implementation of PrimaryStore.
type Repository struct {
	db          Database
	log         *slog.Logger
	pingTimeout time.Duration
}

// NewRepository creates a new instance of Repository with the provided Database.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log, pingTimeout: defaultPingTimeout}
}

// IsAvailable reports whether the database answers a ping within a short timeout.
func (r *Repository) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, r.pingTimeout)
	defer cancel()

	if err := r.db.Ping(ctx); err != nil {
		r.log.DebugContext(ctx, "Primary store ping failed", "error", err)
		return false
	}

	return true
}

// Disconnected is used when no database is configured. It is never available.
type Disconnected struct{}

func (Disconnected) IsAvailable(context.Context) bool { return false }

func (Disconnected) Save(context.Context, models.Observation) error { return ErrUnavailable }

func (Disconnected) FindAllNewestFirst(context.Context) ([]models.Observation, error) {
	return nil, ErrUnavailable
}
