package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-intel/internal/db"
	"github.com/sells-group/geo-intel/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	now     func() time.Time
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns, minConns := int32(10), int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close, now: time.Now}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS observations (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	workspace_id    TEXT NOT NULL,
	engine          TEXT NOT NULL,
	prompt          TEXT NOT NULL DEFAULT '',
	brand_mentioned BOOLEAN NOT NULL DEFAULT false,
	brand_position  INTEGER NOT NULL DEFAULT 0,
	competitors     TEXT[] NOT NULL DEFAULT '{}',
	citations       TEXT[] NOT NULL DEFAULT '{}',
	observed_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_observations_workspace ON observations(workspace_id, observed_at);

CREATE TABLE IF NOT EXISTS report_cache (
	cache_key  TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_report_cache_expires_at ON report_cache(expires_at);
`

var observationColumns = []string{
	"id", "workspace_id", "engine", "prompt", "brand_mentioned",
	"brand_position", "competitors", "citations", "observed_at",
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// AddObservations bulk-loads observations, replacing rows with the same id.
func (s *PostgresStore) AddObservations(ctx context.Context, obs []model.Observation) (int, error) {
	if len(obs) == 0 {
		return 0, nil
	}
	if err := validateObservations(obs); err != nil {
		return 0, err
	}
	obs = normalize(obs, s.clock(), func() string { return uuid.New().String() })

	rows := make([][]any, len(obs))
	for i, o := range obs {
		rows[i] = []any{
			o.ID, o.WorkspaceID, o.Engine, o.Prompt, o.BrandMentioned,
			int32(o.BrandPosition), orEmpty(o.Competitors), orEmpty(o.Citations), o.ObservedAt,
		}
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertSpec{
		Table:        "observations",
		Columns:      observationColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: add observations")
	}
	return int(n), nil
}

func (s *PostgresStore) ListObservations(ctx context.Context, filter ObservationFilter) ([]model.Observation, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.WorkspaceID != "" {
		where = append(where, "workspace_id = "+arg(filter.WorkspaceID))
	}
	if len(filter.Engines) > 0 {
		where = append(where, "engine = ANY("+arg(filter.Engines)+")")
	}
	if !filter.Since.IsZero() {
		where = append(where, "observed_at >= "+arg(filter.Since))
	}

	q := "SELECT " + strings.Join(observationColumns, ", ") + " FROM observations"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY observed_at, id"
	if filter.Limit > 0 {
		q += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list observations")
	}
	defer rows.Close()

	var out []model.Observation
	for rows.Next() {
		var (
			o   model.Observation
			pos int32
		)
		if err := rows.Scan(&o.ID, &o.WorkspaceID, &o.Engine, &o.Prompt, &o.BrandMentioned,
			&pos, &o.Competitors, &o.Citations, &o.ObservedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan observation")
		}
		o.BrandPosition = int(pos)
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate observations")
}

func (s *PostgresStore) GetCachedReport(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM report_cache WHERE cache_key = $1 AND expires_at > $2`,
		key, s.clock().UTC(),
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached report")
	}
	return data, nil
}

func (s *PostgresStore) SetCachedReport(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := s.clock().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO report_cache (cache_key, data, cached_at, expires_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (cache_key) DO UPDATE SET data = EXCLUDED.data, cached_at = EXCLUDED.cached_at, expires_at = EXCLUDED.expires_at`,
		key, data, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached report")
}

func (s *PostgresStore) DeleteExpiredReports(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM report_cache WHERE expires_at <= $1`, s.clock().UTC())
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired reports")
	}
	return int(tag.RowsAffected()), nil
}
