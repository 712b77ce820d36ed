// Package postgres persists alert records to a PostgreSQL table.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/pest-risk/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS pest_alerts (
    id             BIGSERIAL PRIMARY KEY,
    crop           TEXT             NOT NULL,
    temperature    DOUBLE PRECISION NOT NULL,
    humidity       DOUBLE PRECISION NOT NULL,
    risk           TEXT,
    recommendation TEXT             NOT NULL,
    recorded_at    TIMESTAMPTZ      NOT NULL,
    city           TEXT             NOT NULL
)`

const insertAlert = `INSERT INTO pest_alerts (crop, temperature, humidity, risk, recommendation, recorded_at, city)
VALUES ($1,$2,$3,$4,$5,$6,$7)`

// Store writes alert records through a pgx connection pool.
// It implements pipeline.Sink.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to databaseURL and verifies the connection.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Store{pool: pool}, nil
}

// EnsureSchema creates the pest_alerts table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Name() string { return "postgres" }

// Write inserts one row per record in a single batch round trip.
func (s *Store) Write(ctx context.Context, records []domain.AlertRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(insertAlert, alertArgs(rec)...)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	for range records {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("insert alert batch of %d: %w", len(records), err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

// alertArgs orders a record's values to match insertAlert. An unknown tier is
// stored as NULL.
func alertArgs(rec domain.AlertRecord) []any {
	var risk *string
	if rec.Risk != nil {
		r := string(*rec.Risk)
		risk = &r
	}
	return []any{
		rec.Crop,
		rec.Temperature,
		rec.Humidity,
		risk,
		rec.Recommendation,
		rec.Date,
		rec.City,
	}
}
