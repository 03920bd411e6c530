package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	ledger "fundledger/internal/ledger/domain"
)

const topupColumns = `
id, reference, member_id, amount_cents, proof_ref, payment_method, notes,
status, processor_id, processed_at, remarks, reject_reason, investment_id,
created_at, updated_at`

// TopupRepository persists top-up requests in postgres.
type TopupRepository struct {
	db *sql.DB
}

// NewTopupRepository constructs a repository.
func NewTopupRepository(db *sql.DB) *TopupRepository {
	return &TopupRepository{db: db}
}

// Create inserts a pending request.
func (r *TopupRepository) Create(ctx context.Context, req *ledger.TopupRequest) error {
	if r == nil || r.db == nil {
		return errors.New("topup repo: nil db")
	}
	if req == nil {
		return ledger.ErrNilRequest
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO topup_requests (
	id, reference, member_id, amount_cents, proof_ref, payment_method, notes,
	status, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		req.ID, req.Reference, req.MemberID, int64(req.Amount), req.ProofRef, req.PaymentMethod, req.Notes,
		string(req.Status), req.CreatedAt, req.UpdatedAt)
	return err
}

// GetByID loads a request.
func (r *TopupRepository) GetByID(ctx context.Context, id string) (*ledger.TopupRequest, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("topup repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+topupColumns+`
FROM topup_requests
WHERE id = $1
LIMIT 1`, id)
	return scanTopup(row)
}

// ListByMember lists a member's requests, newest first.
func (r *TopupRepository) ListByMember(ctx context.Context, memberID string) ([]ledger.TopupRequest, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("topup repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+topupColumns+`
FROM topup_requests
WHERE member_id = $1
ORDER BY created_at DESC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTopups(rows)
}

// ListByStatus lists requests in a status, oldest first for processing order.
func (r *TopupRepository) ListByStatus(ctx context.Context, status ledger.TopupStatus, limit int) ([]ledger.TopupRequest, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("topup repo: nil db")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+topupColumns+`
FROM topup_requests
WHERE status = $1
ORDER BY created_at ASC
LIMIT $2`, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTopups(rows)
}

// Approve marks the request approved and inserts the spawned investment in
// one transaction. The status guard in the UPDATE serializes concurrent
// approvals: the loser sees zero affected rows and ErrStatusConflict.
func (r *TopupRepository) Approve(ctx context.Context, req *ledger.TopupRequest, inv *ledger.Investment) error {
	if r == nil || r.db == nil {
		return errors.New("topup repo: nil db")
	}
	if req == nil || inv == nil {
		return ledger.ErrNilRequest
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
UPDATE topup_requests
SET status = $1, processor_id = $2, processed_at = $3, remarks = $4,
	investment_id = $5, updated_at = $6
WHERE id = $7 AND status = $8`,
		string(req.Status), req.ProcessorID, req.ProcessedAt, req.Remarks,
		req.InvestmentID, req.UpdatedAt, req.ID, string(ledger.TopupPending))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return ledger.ErrStatusConflict
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO investments (
	id, member_id, topup_request_id, principal_cents, rate_bp, interest_earned_cents,
	status, started_at, last_accrual_at, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		inv.ID, inv.MemberID, inv.TopupRequestID, int64(inv.Principal), int64(inv.Rate), int64(inv.InterestEarned),
		string(inv.Status), inv.StartedAt, nullTime(inv.LastAccrualAt), inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Reject marks the request rejected under the pending-status guard.
func (r *TopupRepository) Reject(ctx context.Context, req *ledger.TopupRequest) error {
	if r == nil || r.db == nil {
		return errors.New("topup repo: nil db")
	}
	if req == nil {
		return ledger.ErrNilRequest
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE topup_requests
SET status = $1, processor_id = $2, processed_at = $3, reject_reason = $4,
	remarks = $5, updated_at = $6
WHERE id = $7 AND status = $8`,
		string(req.Status), req.ProcessorID, req.ProcessedAt, req.RejectReason,
		req.Remarks, req.UpdatedAt, req.ID, string(ledger.TopupPending))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ledger.ErrStatusConflict
	}
	return nil
}

func scanTopup(row rowScanner) (*ledger.TopupRequest, error) {
	var req ledger.TopupRequest
	var amount int64
	var status string
	var processor, remarks, rejectReason, investmentID sql.NullString
	var processedAt sql.NullTime
	err := row.Scan(
		&req.ID,
		&req.Reference,
		&req.MemberID,
		&amount,
		&req.ProofRef,
		&req.PaymentMethod,
		&req.Notes,
		&status,
		&processor,
		&processedAt,
		&remarks,
		&rejectReason,
		&investmentID,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	req.Amount = ledger.Money(amount)
	req.Status = ledger.TopupStatus(status)
	req.ProcessorID = processor.String
	req.Remarks = remarks.String
	req.RejectReason = rejectReason.String
	req.InvestmentID = investmentID.String
	if processedAt.Valid {
		at := processedAt.Time.UTC()
		req.ProcessedAt = &at
	}
	req.CreatedAt = req.CreatedAt.UTC()
	req.UpdatedAt = req.UpdatedAt.UTC()
	return &req, nil
}

func collectTopups(rows *sql.Rows) ([]ledger.TopupRequest, error) {
	var result []ledger.TopupRequest
	for rows.Next() {
		req, err := scanTopup(rows)
		if err != nil {
			return nil, err
		}
		if req != nil {
			result = append(result, *req)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
