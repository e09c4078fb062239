package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"estiscan/domain/core"
	"estiscan/domain/estimate"
	"estiscan/ports"

	"github.com/jmoiron/sqlx"
)

// runRepository implements the RunRepository interface
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// SaveRun inserts a run and its cells in one transaction. NaN statistics are
// stored as NULL so the table stays queryable with ordinary SQL.
func (r *runRepository) SaveRun(ctx context.Context, run *estimate.Run) error {
	requestJSON, err := json.Marshal(run.Request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO estimation_runs (id, source, request, created_at)
		 VALUES ($1, $2, $3, $4)`,
		run.ID.String(), run.Source, requestJSON, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	insertCell := `INSERT INTO estimation_cells (
		run_id, position, x_key, y_key, lag, mi, statistic, p_value, sample_size, degeneracy
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for i, cell := range run.Table.Cells() {
		_, err = tx.ExecContext(ctx, insertCell,
			run.ID.String(), i, cell.Key.X.String(), cell.Key.Y.String(), cell.Key.Lag,
			nullableFloat(cell.MI), nullableFloat(cell.Statistic), nullableFloat(cell.PValue),
			cell.SampleSize, string(cell.Degeneracy),
		)
		if err != nil {
			return fmt.Errorf("failed to insert cell %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves a run with its cells in stored order
func (r *runRepository) GetRun(ctx context.Context, id core.RunID) (*estimate.Run, error) {
	var row struct {
		ID        string       `db:"id"`
		Source    string       `db:"source"`
		Request   []byte       `db:"request"`
		CreatedAt sql.NullTime `db:"created_at"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT id, COALESCE(source, '') AS source, request, created_at
		 FROM estimation_runs WHERE id = $1`, id.String())
	if err == sql.ErrNoRows {
		return nil, core.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	var req estimate.Request
	if err := json.Unmarshal(row.Request, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}

	type cellRow struct {
		XKey       string          `db:"x_key"`
		YKey       string          `db:"y_key"`
		Lag        int             `db:"lag"`
		MI         sql.NullFloat64 `db:"mi"`
		Statistic  sql.NullFloat64 `db:"statistic"`
		PValue     sql.NullFloat64 `db:"p_value"`
		SampleSize int             `db:"sample_size"`
		Degeneracy string          `db:"degeneracy"`
	}
	var cellRows []cellRow
	err = r.db.SelectContext(ctx, &cellRows,
		`SELECT x_key, y_key, lag, mi, statistic, p_value, sample_size, degeneracy
		 FROM estimation_cells WHERE run_id = $1 ORDER BY position`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load cells: %w", err)
	}

	cells := make([]estimate.Cell, len(cellRows))
	for i, cr := range cellRows {
		cells[i] = estimate.Cell{
			Key: estimate.CombinationKey{
				X:   core.VariableKey(cr.XKey),
				Y:   core.VariableKey(cr.YKey),
				Lag: cr.Lag,
			},
			MI:         floatOrNaN(cr.MI),
			Statistic:  floatOrNaN(cr.Statistic),
			PValue:     floatOrNaN(cr.PValue),
			SampleSize: cr.SampleSize,
			Degeneracy: estimate.Degeneracy(cr.Degeneracy),
		}
	}

	runID := core.RunID(row.ID)
	return &estimate.Run{
		ID:        runID,
		Source:    row.Source,
		Request:   req,
		Table:     estimate.NewTable(runID, cells),
		CreatedAt: row.CreatedAt.Time,
	}, nil
}

// ListRuns returns run summaries, newest first
func (r *runRepository) ListRuns(ctx context.Context, limit, offset int) ([]estimate.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	type summaryRow struct {
		ID        string       `db:"id"`
		Source    string       `db:"source"`
		CellCount int          `db:"cell_count"`
		CreatedAt sql.NullTime `db:"created_at"`
	}
	var rows []summaryRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT r.id, COALESCE(r.source, '') AS source, COUNT(c.run_id) AS cell_count, r.created_at
		 FROM estimation_runs r
		 LEFT JOIN estimation_cells c ON c.run_id = r.id
		 GROUP BY r.id, r.source, r.created_at
		 ORDER BY r.created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	summaries := make([]estimate.RunSummary, len(rows))
	for i, row := range rows {
		summaries[i] = estimate.RunSummary{
			ID:        core.RunID(row.ID),
			Source:    row.Source,
			CellCount: row.CellCount,
			CreatedAt: row.CreatedAt.Time,
		}
	}
	return summaries, nil
}

func nullableFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
