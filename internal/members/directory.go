package members

import (
	"context"
	"database/sql"
	"errors"

	ledger "fundledger/internal/ledger/domain"
)

// StatusActive is the member status required for ledger activity.
const StatusActive = "active"

// Directory is the postgres-backed member directory. The ledger core only
// sees the three facts it needs; member CRUD lives elsewhere.
type Directory struct {
	db          *sql.DB
	defaultRate ledger.Rate
}

// NewDirectory constructs a directory. defaultRate is returned for members
// without a configured rate.
func NewDirectory(db *sql.DB, defaultRate ledger.Rate) *Directory {
	return &Directory{db: db, defaultRate: defaultRate}
}

// IsActive reports whether the member exists and is active.
func (d *Directory) IsActive(ctx context.Context, memberID string) (bool, error) {
	if d == nil || d.db == nil {
		return false, errors.New("member directory: nil db")
	}
	var status string
	err := d.db.QueryRowContext(ctx, `
SELECT status FROM members WHERE id = $1 LIMIT 1`, memberID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return status == StatusActive, nil
}

// IsWithdrawalFrozen reports whether the member's withdrawal freeze flag is set.
// A missing member counts as frozen.
func (d *Directory) IsWithdrawalFrozen(ctx context.Context, memberID string) (bool, error) {
	if d == nil || d.db == nil {
		return false, errors.New("member directory: nil db")
	}
	var frozen bool
	err := d.db.QueryRowContext(ctx, `
SELECT withdrawal_frozen FROM members WHERE id = $1 LIMIT 1`, memberID).Scan(&frozen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return true, nil
		}
		return false, err
	}
	return frozen, nil
}

// DefaultInterestRate returns the member's configured monthly rate, falling
// back to the platform default.
func (d *Directory) DefaultInterestRate(ctx context.Context, memberID string) (ledger.Rate, error) {
	if d == nil || d.db == nil {
		return 0, errors.New("member directory: nil db")
	}
	var rate sql.NullInt64
	err := d.db.QueryRowContext(ctx, `
SELECT interest_rate_bp FROM members WHERE id = $1 LIMIT 1`, memberID).Scan(&rate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return d.defaultRate, nil
		}
		return 0, err
	}
	if !rate.Valid || rate.Int64 <= 0 {
		return d.defaultRate, nil
	}
	return ledger.Rate(rate.Int64), nil
}
