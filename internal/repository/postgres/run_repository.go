package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/retailpulse/inventory-intel/internal/pipeline"
)

type runRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *runRepository {
	return &runRepository{db: db}
}

const runColumns = `
	id, analysis_date, status, total_items, processed_items,
	error_message, started_at, completed_at
`

// GetOrCreateRun returns the run row for the date, creating a pending one if
// the date has never been analyzed.
func (r *runRepository) GetOrCreateRun(ctx context.Context, date time.Time, totalItems int) (*pipeline.AnalysisRun, error) {
	var run pipeline.AnalysisRun
	query := fmt.Sprintf(`SELECT %s FROM analysis_runs WHERE analysis_date = $1`, runColumns)
	err := r.db.GetContext(ctx, &run, query, date)
	if err == nil {
		if run.TotalItems != totalItems {
			run.TotalItems = totalItems
			if err := r.UpdateRun(ctx, &run); err != nil {
				return nil, err
			}
		}
		return &run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get run for %s: %w", date.Format("2006-01-02"), err)
	}

	run = pipeline.AnalysisRun{
		AnalysisDate: date,
		Status:       pipeline.StatusPending,
		TotalItems:   totalItems,
		StartedAt:    time.Now(),
	}
	insert := `
		INSERT INTO analysis_runs (analysis_date, status, total_items, processed_items, error_message, started_at)
		VALUES ($1, $2, $3, 0, '', $4)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, insert, run.AnalysisDate, run.Status, run.TotalItems, run.StartedAt).Scan(&run.ID); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return &run, nil
}

func (r *runRepository) UpdateRun(ctx context.Context, run *pipeline.AnalysisRun) error {
	query := `
		UPDATE analysis_runs
		SET status = $1, total_items = $2, processed_items = $3,
		    error_message = $4, completed_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query,
		run.Status, run.TotalItems, run.ProcessedItems,
		run.ErrorMessage, run.CompletedAt, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run %d: %w", run.ID, err)
	}
	return nil
}

func (r *runRepository) GetLatestRun(ctx context.Context) (*pipeline.AnalysisRun, error) {
	var run pipeline.AnalysisRun
	query := fmt.Sprintf(`
		SELECT %s FROM analysis_runs
		ORDER BY analysis_date DESC
		LIMIT 1
	`, runColumns)
	err := r.db.GetContext(ctx, &run, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return &run, nil
}
