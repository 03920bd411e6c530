package ledger

import "errors"

// Validation errors are returned to the caller before any mutation.
var (
	// ErrInvalidAmount is returned when an amount cannot be parsed or is not positive.
	ErrInvalidAmount = errors.New("ledger: invalid amount")
	// ErrInvalidRate is returned when an interest rate is malformed or negative.
	ErrInvalidRate = errors.New("ledger: invalid rate")
	// ErrBelowMinimum is returned when an amount is under the configured floor.
	ErrBelowMinimum = errors.New("ledger: amount below minimum")
	// ErrInsufficientBalance is returned when a withdrawal exceeds the available balance.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	// ErrDailyLimitExceeded is returned when today's withdrawals would exceed the daily cap.
	ErrDailyLimitExceeded = errors.New("ledger: daily withdrawal limit exceeded")
	// ErrWithdrawalFrozen is returned when the member's withdrawal freeze flag is set.
	ErrWithdrawalFrozen = errors.New("ledger: withdrawals frozen for member")
	// ErrMissingBankName is returned when a bank transfer omits the bank name.
	ErrMissingBankName = errors.New("ledger: missing bank name")
	// ErrMemberInactive is returned when the acting member account is not active.
	ErrMemberInactive = errors.New("ledger: member not active")
	// ErrMissingReason is returned when a rejection omits its reason.
	ErrMissingReason = errors.New("ledger: missing rejection reason")
	// ErrInvalidStatus is returned when a status transition targets an
	// unknown investment status.
	ErrInvalidStatus = errors.New("ledger: invalid investment status")
)

// Conflict errors indicate a stale or duplicate request; no side effects occur.
var (
	// ErrAlreadyProcessed is returned when a terminal request is processed again.
	ErrAlreadyProcessed = errors.New("ledger: request already processed")
	// ErrNotApproved is returned when marking paid a withdrawal that is not approved.
	ErrNotApproved = errors.New("ledger: withdrawal not approved")
	// ErrCannotReject is returned when rejecting a paid or rejected withdrawal.
	ErrCannotReject = errors.New("ledger: withdrawal cannot be rejected")
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("ledger: not found")
	// ErrNilRequest is returned when a nil record is passed to a repository.
	ErrNilRequest = errors.New("ledger: nil request")
	// ErrStatusConflict is returned by repositories when a guarded status
	// transition loses a race with another writer.
	ErrStatusConflict = errors.New("ledger: status changed concurrently")
	// ErrAccrualRunning is returned when an accrual run overlaps one in flight.
	ErrAccrualRunning = errors.New("ledger: accrual run already in progress")
)
