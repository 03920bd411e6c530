package scheduler

import (
	"context"
	"errors"
	"time"

	ledger "fundledger/internal/ledger/domain"
)

// AccrualRunner triggers a monthly interest accrual pass.
type AccrualRunner interface {
	RunMonthlyAccrual(ctx context.Context) (*ledger.AccrualRun, error)
}

// MonthlyAccrualJob runs the interest accrual batch on schedule.
type MonthlyAccrualJob struct {
	runner  AccrualRunner
	timeout time.Duration
}

// NewMonthlyAccrualJob constructs the accrual job.
func NewMonthlyAccrualJob(runner AccrualRunner, timeout time.Duration) *MonthlyAccrualJob {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &MonthlyAccrualJob{runner: runner, timeout: timeout}
}

// Name implements Job.
func (j *MonthlyAccrualJob) Name() string {
	return "monthly_accrual"
}

// Run implements Job. An already-running accrual is not an error for
// the schedule; the in-flight run covers this tick.
func (j *MonthlyAccrualJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	_, err := j.runner.RunMonthlyAccrual(ctx)
	if errors.Is(err, ledger.ErrAccrualRunning) {
		return nil
	}
	return err
}
