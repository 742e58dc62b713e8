package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/geo-intel/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Timestamps are
// stored as unix nanoseconds so range filters compare integers.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS observations (
	id              TEXT PRIMARY KEY,
	workspace_id    TEXT NOT NULL,
	engine          TEXT NOT NULL,
	prompt          TEXT NOT NULL DEFAULT '',
	brand_mentioned INTEGER NOT NULL DEFAULT 0,
	brand_position  INTEGER NOT NULL DEFAULT 0,
	competitors     TEXT NOT NULL DEFAULT '[]',
	citations       TEXT NOT NULL DEFAULT '[]',
	observed_at     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS report_cache (
	cache_key  TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	cached_at  INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_observations_workspace ON observations(workspace_id, observed_at);
CREATE INDEX IF NOT EXISTS idx_report_cache_expires_at ON report_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AddObservations(ctx context.Context, obs []model.Observation) (int, error) {
	if len(obs) == 0 {
		return 0, nil
	}
	if err := validateObservations(obs); err != nil {
		return 0, err
	}
	obs = normalize(obs, s.now(), func() string { return uuid.New().String() })

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO observations (id, workspace_id, engine, prompt, brand_mentioned, brand_position, competitors, citations, observed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   workspace_id = excluded.workspace_id, engine = excluded.engine, prompt = excluded.prompt,
		   brand_mentioned = excluded.brand_mentioned, brand_position = excluded.brand_position,
		   competitors = excluded.competitors, citations = excluded.citations, observed_at = excluded.observed_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare observation insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, o := range obs {
		competitors, err := json.Marshal(orEmpty(o.Competitors))
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal competitors")
		}
		citations, err := json.Marshal(orEmpty(o.Citations))
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal citations")
		}
		if _, err := stmt.ExecContext(ctx,
			o.ID, o.WorkspaceID, o.Engine, o.Prompt, o.BrandMentioned, o.BrandPosition,
			string(competitors), string(citations), o.ObservedAt.UnixNano(),
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert observation %s", o.ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit observations")
	}
	return len(obs), nil
}

func (s *SQLiteStore) ListObservations(ctx context.Context, filter ObservationFilter) ([]model.Observation, error) {
	var (
		where []string
		args  []any
	)
	if filter.WorkspaceID != "" {
		where = append(where, "workspace_id = ?")
		args = append(args, filter.WorkspaceID)
	}
	if len(filter.Engines) > 0 {
		where = append(where, "engine IN (?"+strings.Repeat(", ?", len(filter.Engines)-1)+")")
		for _, e := range filter.Engines {
			args = append(args, e)
		}
	}
	if !filter.Since.IsZero() {
		where = append(where, "observed_at >= ?")
		args = append(args, filter.Since.UnixNano())
	}

	q := `SELECT id, workspace_id, engine, prompt, brand_mentioned, brand_position, competitors, citations, observed_at FROM observations`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY observed_at, id"
	if filter.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list observations")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Observation
	for rows.Next() {
		var (
			o                      model.Observation
			competitors, citations string
			observedAt             int64
		)
		if err := rows.Scan(&o.ID, &o.WorkspaceID, &o.Engine, &o.Prompt, &o.BrandMentioned, &o.BrandPosition,
			&competitors, &citations, &observedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan observation")
		}
		if err := json.Unmarshal([]byte(competitors), &o.Competitors); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal competitors for %s", o.ID)
		}
		if err := json.Unmarshal([]byte(citations), &o.Citations); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal citations for %s", o.ID)
		}
		o.ObservedAt = time.Unix(0, observedAt).UTC()
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate observations")
}

func (s *SQLiteStore) GetCachedReport(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM report_cache WHERE cache_key = ? AND expires_at > ?`,
		key, s.now().UnixNano(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached report")
	}
	return data, nil
}

func (s *SQLiteStore) SetCachedReport(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO report_cache (cache_key, data, cached_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET data = excluded.data, cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		key, data, now.UnixNano(), now.Add(ttl).UnixNano(),
	)
	return eris.Wrap(err, "sqlite: set cached report")
}

func (s *SQLiteStore) DeleteExpiredReports(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM report_cache WHERE expires_at <= ?`, s.now().UnixNano())
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired reports")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	return int(n), nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
