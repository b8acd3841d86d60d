// Package datastore persists reference samples, evaluation jobs and their
// results in PostgreSQL. All access goes through an explicit Store; there
// is no package-level connection.
package datastore

import (
	"database/sql"
	"fmt"

	// pq is the PostgreSQL driver
	_ "github.com/lib/pq"
)

// Store wraps the database connection pool.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL and verifies the connection.
func Open(dataSourceName string) (*Store, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reference_samples (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			language_code TEXT,
			audio_object_key TEXT NOT NULL,
			transcript TEXT NOT NULL,
			key_terms JSONB,
			tags JSONB,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS evaluation_jobs (
			id SERIAL PRIMARY KEY,
			job_name TEXT,
			status TEXT NOT NULL,
			model_names JSONB NOT NULL,
			sample_ids JSONB NOT NULL,
			options JSONB,
			failure_reason TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			started_at TIMESTAMPTZ,
			completed_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS evaluation_results (
			id SERIAL PRIMARY KEY,
			job_id INTEGER NOT NULL REFERENCES evaluation_jobs(id),
			sample_id INTEGER NOT NULL REFERENCES reference_samples(id),
			requested_model TEXT NOT NULL,
			model_used TEXT,
			fell_back BOOLEAN NOT NULL DEFAULT FALSE,
			skipped_models JSONB,
			transcript TEXT,
			wer DOUBLE PRECISION,
			cer DOUBLE PRECISION,
			word_overlap_ratio DOUBLE PRECISION,
			key_terms_found INTEGER,
			key_terms_matched JSONB,
			processing_time_seconds DOUBLE PRECISION,
			failure_reason TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
