package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-intel/internal/config"
	"github.com/sells-group/geo-intel/internal/model"
)

// ObservationFilter narrows ListObservations. Zero fields match everything.
type ObservationFilter struct {
	WorkspaceID string    `json:"workspace_id"`
	Engines     []string  `json:"engines,omitempty"`
	Since       time.Time `json:"since,omitempty"`
	Limit       int       `json:"limit,omitempty"`
}

// Store defines persistence for answer-engine observations and cached reports.
type Store interface {
	// Observations
	AddObservations(ctx context.Context, obs []model.Observation) (int, error)
	ListObservations(ctx context.Context, filter ObservationFilter) ([]model.Observation, error)

	// Report cache. GetCachedReport returns nil, nil on a miss.
	GetCachedReport(ctx context.Context, key string) ([]byte, error)
	SetCachedReport(ctx context.Context, key string, data []byte, ttl time.Duration) error
	DeleteExpiredReports(ctx context.Context) (int, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// normalize fills missing ids and timestamps before a write.
func normalize(obs []model.Observation, now time.Time, newID func() string) []model.Observation {
	out := make([]model.Observation, len(obs))
	for i, o := range obs {
		if o.ID == "" {
			o.ID = newID()
		}
		if o.ObservedAt.IsZero() {
			o.ObservedAt = now
		}
		o.ObservedAt = o.ObservedAt.UTC()
		out[i] = o
	}
	return out
}

func validateObservations(obs []model.Observation) error {
	for i, o := range obs {
		if o.WorkspaceID == "" {
			return eris.Errorf("store: observation %d has no workspace_id", i)
		}
		if o.Engine == "" {
			return eris.Errorf("store: observation %d has no engine", i)
		}
	}
	return nil
}
