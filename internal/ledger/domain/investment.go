package ledger

import "time"

// InvestmentStatus is the lifecycle state of an investment.
type InvestmentStatus string

const (
	InvestmentActive    InvestmentStatus = "active"
	InvestmentPaused    InvestmentStatus = "paused"
	InvestmentCompleted InvestmentStatus = "completed"
)

// Investment is one funded, interest-accruing position. It is created only
// by top-up approval and mutated only by status transitions and the accrual
// engine. Investments are never deleted.
type Investment struct {
	ID             string
	MemberID       string
	TopupRequestID string
	Principal      Money
	Rate           Rate
	InterestEarned Money
	Status         InvestmentStatus
	StartedAt      time.Time
	LastAccrualAt  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AccruedInMonth reports whether interest was already credited within the
// calendar month containing now.
func (inv *Investment) AccruedInMonth(now time.Time) bool {
	if inv == nil || inv.LastAccrualAt == nil {
		return false
	}
	last := inv.LastAccrualAt.UTC()
	now = now.UTC()
	return last.Year() == now.Year() && last.Month() == now.Month()
}

// CountsTowardPrincipal reports whether the principal is part of the
// member's available balance. Completed positions have been paid out and no
// longer carry principal.
func (inv *Investment) CountsTowardPrincipal() bool {
	if inv == nil {
		return false
	}
	return inv.Status == InvestmentActive || inv.Status == InvestmentPaused
}
