package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	ledger "fundledger/internal/ledger/domain"
)

// AccrualRunRepository persists accrual run records in postgres.
type AccrualRunRepository struct {
	db *sql.DB
}

// NewAccrualRunRepository constructs a repository.
func NewAccrualRunRepository(db *sql.DB) *AccrualRunRepository {
	return &AccrualRunRepository{db: db}
}

// Create inserts a running record.
func (r *AccrualRunRepository) Create(ctx context.Context, run *ledger.AccrualRun) error {
	if r == nil || r.db == nil {
		return errors.New("accrual run repo: nil db")
	}
	if run == nil {
		return ledger.ErrNilRequest
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO accrual_runs (
	id, reference, status, run_month, processed, skipped, total_interest_cents,
	errors, started_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		run.ID, run.Reference, string(run.Status), run.Month, run.Processed, run.Skipped,
		int64(run.TotalInterest), marshalRunErrors(run.Errors), run.StartedAt)
	return err
}

// Finish writes the run's final counts and timestamps.
func (r *AccrualRunRepository) Finish(ctx context.Context, run *ledger.AccrualRun) error {
	if r == nil || r.db == nil {
		return errors.New("accrual run repo: nil db")
	}
	if run == nil {
		return ledger.ErrNilRequest
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE accrual_runs
SET status = $1, processed = $2, skipped = $3, total_interest_cents = $4,
	errors = $5, finished_at = $6
WHERE id = $7`,
		string(run.Status), run.Processed, run.Skipped, int64(run.TotalInterest),
		marshalRunErrors(run.Errors), nullTime(run.FinishedAt), run.ID)
	return err
}

// List returns runs, newest first.
func (r *AccrualRunRepository) List(ctx context.Context, limit int) ([]ledger.AccrualRun, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("accrual run repo: nil db")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, reference, status, run_month, processed, skipped, total_interest_cents,
	errors, started_at, finished_at
FROM accrual_runs
ORDER BY started_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ledger.AccrualRun
	for rows.Next() {
		var run ledger.AccrualRun
		var status string
		var interest int64
		var errsRaw []byte
		var finishedAt sql.NullTime
		if err := rows.Scan(
			&run.ID,
			&run.Reference,
			&status,
			&run.Month,
			&run.Processed,
			&run.Skipped,
			&interest,
			&errsRaw,
			&run.StartedAt,
			&finishedAt,
		); err != nil {
			return nil, err
		}
		run.Status = ledger.AccrualRunStatus(status)
		run.TotalInterest = ledger.Money(interest)
		if len(errsRaw) > 0 {
			_ = json.Unmarshal(errsRaw, &run.Errors)
		}
		if finishedAt.Valid {
			at := finishedAt.Time.UTC()
			run.FinishedAt = &at
		}
		run.Month = run.Month.UTC()
		run.StartedAt = run.StartedAt.UTC()
		result = append(result, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func marshalRunErrors(errs []ledger.AccrualItemError) []byte {
	if len(errs) == 0 {
		return []byte("[]")
	}
	raw, err := json.Marshal(errs)
	if err != nil {
		return []byte("[]")
	}
	return raw
}
