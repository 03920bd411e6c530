package ledger

import (
	"context"
	"time"
)

// InvestmentRepository persists investments.
type InvestmentRepository interface {
	GetByID(ctx context.Context, id string) (*Investment, error)
	ListByMember(ctx context.Context, memberID string) ([]Investment, error)
	// ListAccruable enumerates active investments whose owning member is active.
	ListAccruable(ctx context.Context) ([]Investment, error)
	// CreditInterest atomically adds interest and stamps the accrual date.
	// Returns false without mutating when the investment already accrued
	// within the calendar month containing accruedAt.
	CreditInterest(ctx context.Context, id string, interest Money, accruedAt time.Time) (bool, error)
	// UpdateStatus transitions status from -> to; ErrStatusConflict when the
	// stored status no longer matches from.
	UpdateStatus(ctx context.Context, id string, from, to InvestmentStatus) error
}

// TopupRepository persists top-up requests.
type TopupRepository interface {
	Create(ctx context.Context, req *TopupRequest) error
	GetByID(ctx context.Context, id string) (*TopupRequest, error)
	ListByMember(ctx context.Context, memberID string) ([]TopupRequest, error)
	ListByStatus(ctx context.Context, status TopupStatus, limit int) ([]TopupRequest, error)
	// Approve marks the request approved and creates the spawned investment
	// in a single transaction. ErrStatusConflict when the request is no
	// longer pending.
	Approve(ctx context.Context, req *TopupRequest, inv *Investment) error
	// Reject marks the request rejected. ErrStatusConflict when the request
	// is no longer pending.
	Reject(ctx context.Context, req *TopupRequest) error
}

// WithdrawalRepository persists withdrawal requests.
type WithdrawalRepository interface {
	Create(ctx context.Context, req *WithdrawalRequest) error
	GetByID(ctx context.Context, id string) (*WithdrawalRequest, error)
	ListByMember(ctx context.Context, memberID string) ([]WithdrawalRequest, error)
	ListByStatus(ctx context.Context, status WithdrawalStatus, limit int) ([]WithdrawalRequest, error)
	// Transition writes the request with its new status, guarded by the
	// status the caller observed. ErrStatusConflict when the stored status
	// no longer matches observed.
	Transition(ctx context.Context, req *WithdrawalRequest, observed WithdrawalStatus) error
	// SumCreatedBetween totals balance-holding withdrawals created in
	// [from, to) for the daily cap check.
	SumCreatedBetween(ctx context.Context, memberID string, from, to time.Time) (Money, error)
}

// AccrualRunRepository persists accrual run records.
type AccrualRunRepository interface {
	Create(ctx context.Context, run *AccrualRun) error
	Finish(ctx context.Context, run *AccrualRun) error
	List(ctx context.Context, limit int) ([]AccrualRun, error)
}
