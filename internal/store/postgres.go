package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCache implements the cache contract on a Postgres table so multiple
// replicas can share agent results. Expiry stays lazy: reads filter on
// expires_at and writes opportunistically delete a batch of expired rows.
type PostgresCache struct {
	db *pgxpool.Pool
}

func NewPostgresCache(db *pgxpool.Pool) *PostgresCache {
	return &PostgresCache{db: db}
}

// EnsureSchema creates the cache table if it does not exist.
func (s *PostgresCache) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS agent_cache (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			expires_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_agent_cache_expires_at ON agent_cache (expires_at)`)
	return err
}

func (s *PostgresCache) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx,
		`SELECT value FROM agent_cache WHERE key = $1 AND expires_at > now()`,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *PostgresCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO agent_cache (key, value, created_at, expires_at)
		 VALUES ($1, $2, now(), now() + $3)
		 ON CONFLICT (key) DO UPDATE
		 SET value = EXCLUDED.value, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at`,
		key, value, ttl,
	)
	if err != nil {
		return err
	}

	// Opportunistic cleanup; bounded so a write never pays for a full sweep.
	_, _ = s.db.Exec(ctx,
		`DELETE FROM agent_cache WHERE key IN (
			SELECT key FROM agent_cache WHERE expires_at <= now() LIMIT 100
		)`)
	return nil
}
