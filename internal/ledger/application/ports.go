package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	ledger "fundledger/internal/ledger/domain"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// MemberDirectory exposes the member facts the ledger depends on.
type MemberDirectory interface {
	IsActive(ctx context.Context, memberID string) (bool, error)
	IsWithdrawalFrozen(ctx context.Context, memberID string) (bool, error)
	// DefaultInterestRate returns the member's configured monthly rate, or
	// the platform default when the member has none.
	DefaultInterestRate(ctx context.Context, memberID string) (ledger.Rate, error)
}

// Settings is the read-only platform configuration the core consumes.
type Settings interface {
	MinimumTopup() ledger.Money
	MinimumWithdrawal() ledger.Money
	MaxWithdrawalPerDay() ledger.Money
	DefaultInterestRate() ledger.Rate
}

// TransitionEvent describes one successful request state transition.
type TransitionEvent struct {
	Kind       string    `json:"kind"`
	RequestID  string    `json:"request_id"`
	Reference  string    `json:"reference"`
	MemberID   string    `json:"member_id"`
	Actor      string    `json:"actor"`
	Amount     string    `json:"amount"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AccrualEvent summarizes a finished accrual run.
type AccrualEvent struct {
	RunID         string    `json:"run_id"`
	Reference     string    `json:"reference"`
	Month         string    `json:"month"`
	Processed     int       `json:"processed"`
	Skipped       int       `json:"skipped"`
	Failed        int       `json:"failed"`
	TotalInterest string    `json:"total_interest"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Notifier is the fire-and-forget notification sink. The core never waits
// on or depends on delivery; errors are logged by the caller and dropped.
type Notifier interface {
	NotifyTransition(ctx context.Context, event TransitionEvent) error
	NotifyAccrual(ctx context.Context, event AccrualEvent) error
}

func newReference(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
