// README: Plan archive backed by Postgres with a Redis latest-plan cache.
package plans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	latestKeyPrefix = "plans:latest:%s"
	// Plans are recomputed at least daily; the cache only needs to outlive
	// the serving window.
	cacheTTL = 24 * time.Hour
)

var ErrNotFound = errors.New("plan not found")

// Record is one archived plan payload for a service date.
type Record struct {
	ID        string
	PlanDate  string
	Payload   []byte
	CreatedAt time.Time
}

type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, redis *redis.Client) *Store {
	return &Store{db: db, redis: redis}
}

// Migrate creates the archive table. Safe to call on every start.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS carpool_plans (
            id         TEXT PRIMARY KEY,
            plan_date  TEXT NOT NULL,
            payload    JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        )`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
        CREATE INDEX IF NOT EXISTS carpool_plans_date_idx
            ON carpool_plans (plan_date, created_at DESC)`)
	return err
}

// Save archives the record and refreshes the latest-plan cache for its date.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO carpool_plans (id, plan_date, payload, created_at)
        VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.PlanDate, rec.Payload, rec.CreatedAt,
	)
	if err != nil {
		return err
	}
	// Cache refresh is best-effort; the row is already durable.
	key := fmt.Sprintf(latestKeyPrefix, rec.PlanDate)
	_ = s.redis.Set(ctx, key, rec.Payload, cacheTTL).Err()
	return nil
}

// Latest returns the most recently archived payload for a date, preferring
// the cache.
func (s *Store) Latest(ctx context.Context, date string) ([]byte, error) {
	key := fmt.Sprintf(latestKeyPrefix, date)
	if payload, err := s.redis.Get(ctx, key).Bytes(); err == nil {
		return payload, nil
	}

	row := s.db.QueryRow(ctx, `
        SELECT payload FROM carpool_plans
        WHERE plan_date = $1
        ORDER BY created_at DESC
        LIMIT 1`, date,
	)
	var payload []byte
	err := row.Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	_ = s.redis.Set(ctx, key, payload, cacheTTL).Err()
	return payload, nil
}
