package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const createPredictionsTable = `
CREATE TABLE IF NOT EXISTS predictions (
	id               TEXT PRIMARY KEY,
	city             TEXT NOT NULL,
	predicted_class  INTEGER NOT NULL,
	rain_probability DOUBLE PRECISION NOT NULL,
	note             TEXT NOT NULL DEFAULT '',
	input_json       TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore persists predictions in Postgres via database/sql.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects, pings and ensures the predictions table exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.Exec(createPredictionsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure predictions table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, city, predicted_class, rain_probability, note, input_json, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.City, rec.PredictedClass, rec.RainProbability, rec.Note, rec.InputJSON, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, city, predicted_class, rain_probability, note, input_json, created_at
		 FROM predictions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.City, &rec.PredictedClass, &rec.RainProbability,
			&rec.Note, &rec.InputJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }
