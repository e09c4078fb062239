package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the run-persistence database
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates the run-persistence schema if it does not exist
func Migrate(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS estimation_runs (
			id TEXT PRIMARY KEY,
			source TEXT,
			request JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS estimation_cells (
			run_id TEXT NOT NULL REFERENCES estimation_runs(id) ON DELETE CASCADE,
			position INT NOT NULL,
			x_key TEXT NOT NULL,
			y_key TEXT NOT NULL,
			lag INT NOT NULL,
			mi DOUBLE PRECISION,
			statistic DOUBLE PRECISION,
			p_value DOUBLE PRECISION,
			sample_size INT NOT NULL DEFAULT 0,
			degeneracy TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_estimation_cells_keys
			ON estimation_cells (x_key, y_key, lag)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
