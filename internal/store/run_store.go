package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/solienne/internal/domain"
)

// RunStore journals ingestion runs and their steps.
type RunStore struct {
	db *sql.DB
}

func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

func (s *RunStore) Start(ctx context.Context, title, sku string) (*domain.Run, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (title, sku) VALUES (?, ?)
	`, title, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

const runColumns = `id, title, sku, status, product_gid, variant_gid, started_at, finished_at`

func scanRun(row interface{ Scan(...any) error }) (*domain.Run, error) {
	run := &domain.Run{}
	var finished sql.NullTime
	if err := row.Scan(&run.ID, &run.Title, &run.SKU, &run.Status, &run.ProductGID, &run.VariantGID, &run.StartedAt, &finished); err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return run, nil
}

func (s *RunStore) GetByID(ctx context.Context, id int64) (*domain.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// SetProduct records the ids Shopify assigned to the run's product.
func (s *RunStore) SetProduct(ctx context.Context, runID int64, productGID, variantGID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs SET product_gid = ?, variant_gid = ? WHERE id = ?
	`, productGID, variantGID, runID)
	if err != nil {
		return fmt.Errorf("failed to record product: %w", err)
	}
	return nil
}

func (s *RunStore) AddStep(ctx context.Context, runID int64, step string, ok bool, detail string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_steps (run_id, step, ok, detail) VALUES (?, ?, ?, ?)
	`, runID, step, ok, detail)
	if err != nil {
		return fmt.Errorf("failed to record step: %w", err)
	}
	return nil
}

func (s *RunStore) Finish(ctx context.Context, runID int64, status domain.RunStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, finished_at = datetime('now') WHERE id = ?
	`, status, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("run not found")
	}
	return nil
}

// LastCreated returns the most recent run for sku that created a product, or
// nil if there is none.
func (s *RunStore) LastCreated(ctx context.Context, sku string) (*domain.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE sku = ? AND product_gid != ''
		ORDER BY id DESC LIMIT 1
	`, sku))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first.
func (s *RunStore) List(ctx context.Context, limit int) ([]*domain.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *RunStore) Steps(ctx context.Context, runID int64) ([]*domain.RunStep, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, step, ok, detail, created_at FROM run_steps
		WHERE run_id = ? ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var steps []*domain.RunStep
	for rows.Next() {
		st := &domain.RunStep{}
		if err := rows.Scan(&st.ID, &st.RunID, &st.Step, &st.OK, &st.Detail, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}
