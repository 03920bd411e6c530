package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	ledger "fundledger/internal/ledger/domain"
)

const withdrawalColumns = `
id, reference, member_id, amount_cents, destination_type, account_name,
account_number, bank_name, status, processor_id, processed_at,
payout_proof_ref, remarks, reject_reason, created_at, updated_at`

// WithdrawalRepository persists withdrawal requests in postgres.
type WithdrawalRepository struct {
	db *sql.DB
}

// NewWithdrawalRepository constructs a repository.
func NewWithdrawalRepository(db *sql.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// Create inserts a pending request.
func (r *WithdrawalRepository) Create(ctx context.Context, req *ledger.WithdrawalRequest) error {
	if r == nil || r.db == nil {
		return errors.New("withdrawal repo: nil db")
	}
	if req == nil {
		return ledger.ErrNilRequest
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO withdrawal_requests (
	id, reference, member_id, amount_cents, destination_type, account_name,
	account_number, bank_name, status, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		req.ID, req.Reference, req.MemberID, int64(req.Amount), string(req.DestinationType),
		req.AccountName, req.AccountNumber, req.BankName, string(req.Status),
		req.CreatedAt, req.UpdatedAt)
	return err
}

// GetByID loads a request.
func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*ledger.WithdrawalRequest, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("withdrawal repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+withdrawalColumns+`
FROM withdrawal_requests
WHERE id = $1
LIMIT 1`, id)
	return scanWithdrawal(row)
}

// ListByMember lists a member's requests, newest first.
func (r *WithdrawalRepository) ListByMember(ctx context.Context, memberID string) ([]ledger.WithdrawalRequest, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("withdrawal repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+withdrawalColumns+`
FROM withdrawal_requests
WHERE member_id = $1
ORDER BY created_at DESC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWithdrawals(rows)
}

// ListByStatus lists requests in a status, oldest first for processing order.
func (r *WithdrawalRepository) ListByStatus(ctx context.Context, status ledger.WithdrawalStatus, limit int) ([]ledger.WithdrawalRequest, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("withdrawal repo: nil db")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+withdrawalColumns+`
FROM withdrawal_requests
WHERE status = $1
ORDER BY created_at ASC
LIMIT $2`, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWithdrawals(rows)
}

// Transition writes the request guarded by the caller's observed status, so
// racing admins serialize on the row and the loser gets ErrStatusConflict.
func (r *WithdrawalRepository) Transition(ctx context.Context, req *ledger.WithdrawalRequest, observed ledger.WithdrawalStatus) error {
	if r == nil || r.db == nil {
		return errors.New("withdrawal repo: nil db")
	}
	if req == nil {
		return ledger.ErrNilRequest
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE withdrawal_requests
SET status = $1, processor_id = $2, processed_at = $3, payout_proof_ref = $4,
	remarks = $5, reject_reason = $6, updated_at = $7
WHERE id = $8 AND status = $9`,
		string(req.Status), req.ProcessorID, req.ProcessedAt, req.PayoutProofRef,
		req.Remarks, req.RejectReason, req.UpdatedAt, req.ID, string(observed))
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

// SumCreatedBetween totals balance-holding withdrawals created in [from, to).
func (r *WithdrawalRepository) SumCreatedBetween(ctx context.Context, memberID string, from, to time.Time) (ledger.Money, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("withdrawal repo: nil db")
	}
	var total int64
	err := r.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(amount_cents), 0)
FROM withdrawal_requests
WHERE member_id = $1
	AND status IN ('pending','approved','paid')
	AND created_at >= $2 AND created_at < $3`,
		memberID, from.UTC(), to.UTC()).Scan(&total)
	if err != nil {
		return 0, err
	}
	return ledger.Money(total), nil
}

func scanWithdrawal(row rowScanner) (*ledger.WithdrawalRequest, error) {
	var req ledger.WithdrawalRequest
	var amount int64
	var destination, status string
	var bankName, processor, payoutProof, remarks, rejectReason sql.NullString
	var processedAt sql.NullTime
	err := row.Scan(
		&req.ID,
		&req.Reference,
		&req.MemberID,
		&amount,
		&destination,
		&req.AccountName,
		&req.AccountNumber,
		&bankName,
		&status,
		&processor,
		&processedAt,
		&payoutProof,
		&remarks,
		&rejectReason,
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
	req.DestinationType = ledger.DestinationType(destination)
	req.Status = ledger.WithdrawalStatus(status)
	req.BankName = bankName.String
	req.ProcessorID = processor.String
	req.PayoutProofRef = payoutProof.String
	req.Remarks = remarks.String
	req.RejectReason = rejectReason.String
	if processedAt.Valid {
		at := processedAt.Time.UTC()
		req.ProcessedAt = &at
	}
	req.CreatedAt = req.CreatedAt.UTC()
	req.UpdatedAt = req.UpdatedAt.UTC()
	return &req, nil
}

func collectWithdrawals(rows *sql.Rows) ([]ledger.WithdrawalRequest, error) {
	var result []ledger.WithdrawalRequest
	for rows.Next() {
		req, err := scanWithdrawal(rows)
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
