package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	ledger "fundledger/internal/ledger/domain"
)

const investmentColumns = `
id, member_id, topup_request_id, principal_cents, rate_bp, interest_earned_cents,
status, started_at, last_accrual_at, created_at, updated_at`

// InvestmentRepository persists investments in postgres.
type InvestmentRepository struct {
	db *sql.DB
}

// NewInvestmentRepository constructs a repository.
func NewInvestmentRepository(db *sql.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

// GetByID loads an investment.
func (r *InvestmentRepository) GetByID(ctx context.Context, id string) (*ledger.Investment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("investment repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+investmentColumns+`
FROM investments
WHERE id = $1
LIMIT 1`, id)
	return scanInvestment(row)
}

// ListByMember lists a member's investments.
func (r *InvestmentRepository) ListByMember(ctx context.Context, memberID string) ([]ledger.Investment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("investment repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+investmentColumns+`
FROM investments
WHERE member_id = $1
ORDER BY created_at ASC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvestments(rows)
}

// ListAccruable enumerates active investments whose owner is active.
func (r *InvestmentRepository) ListAccruable(ctx context.Context) ([]ledger.Investment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("investment repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT i.id, i.member_id, i.topup_request_id, i.principal_cents, i.rate_bp, i.interest_earned_cents,
	i.status, i.started_at, i.last_accrual_at, i.created_at, i.updated_at
FROM investments i
JOIN members m ON m.id = i.member_id
WHERE i.status = 'active' AND m.status = 'active'
ORDER BY i.created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvestments(rows)
}

// CreditInterest adds interest under the calendar-month guard; the guard is
// enforced inside the statement so concurrent runs cannot double-credit.
func (r *InvestmentRepository) CreditInterest(ctx context.Context, id string, interest ledger.Money, accruedAt time.Time) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("investment repo: nil db")
	}
	accruedAt = accruedAt.UTC()
	monthStart := time.Date(accruedAt.Year(), accruedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
	res, err := r.db.ExecContext(ctx, `
UPDATE investments
SET interest_earned_cents = interest_earned_cents + $1,
	last_accrual_at = $2,
	updated_at = $2
WHERE id = $3
	AND (last_accrual_at IS NULL OR last_accrual_at < $4)`,
		int64(interest), accruedAt, id, monthStart)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateStatus transitions status with a compare-and-swap guard.
func (r *InvestmentRepository) UpdateStatus(ctx context.Context, id string, from, to ledger.InvestmentStatus) error {
	if r == nil || r.db == nil {
		return errors.New("investment repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE investments
SET status = $1, updated_at = $2
WHERE id = $3 AND status = $4`,
		string(to), time.Now().UTC(), id, string(from))
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvestment(row rowScanner) (*ledger.Investment, error) {
	var inv ledger.Investment
	var principal, rate, interest int64
	var status string
	var lastAccrual sql.NullTime
	err := row.Scan(
		&inv.ID,
		&inv.MemberID,
		&inv.TopupRequestID,
		&principal,
		&rate,
		&interest,
		&status,
		&inv.StartedAt,
		&lastAccrual,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	inv.Principal = ledger.Money(principal)
	inv.Rate = ledger.Rate(rate)
	inv.InterestEarned = ledger.Money(interest)
	inv.Status = ledger.InvestmentStatus(status)
	if lastAccrual.Valid {
		at := lastAccrual.Time.UTC()
		inv.LastAccrualAt = &at
	}
	inv.StartedAt = inv.StartedAt.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.UpdatedAt = inv.UpdatedAt.UTC()
	return &inv, nil
}

func collectInvestments(rows *sql.Rows) ([]ledger.Investment, error) {
	var result []ledger.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		if inv != nil {
			result = append(result, *inv)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
