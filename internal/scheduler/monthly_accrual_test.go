package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	ledger "fundledger/internal/ledger/domain"
)

type stubRunner struct {
	err      error
	deadline bool
}

func (r *stubRunner) RunMonthlyAccrual(ctx context.Context) (*ledger.AccrualRun, error) {
	_, r.deadline = ctx.Deadline()
	if r.err != nil {
		return nil, r.err
	}
	return &ledger.AccrualRun{ID: "run-1"}, nil
}

func TestMonthlyAccrualJobRun(t *testing.T) {
	runner := &stubRunner{}
	job := NewMonthlyAccrualJob(runner, time.Minute)
	if got := job.Name(); got != "monthly_accrual" {
		t.Fatalf("name = %q", got)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !runner.deadline {
		t.Fatal("expected runner context to carry a deadline")
	}
}

func TestMonthlyAccrualJobToleratesInFlightRun(t *testing.T) {
	job := NewMonthlyAccrualJob(&stubRunner{err: ledger.ErrAccrualRunning}, time.Minute)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("overlapping run should not fail the schedule: %v", err)
	}

	boom := errors.New("storage offline")
	job = NewMonthlyAccrualJob(&stubRunner{err: boom}, time.Minute)
	if err := job.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected runner error, got %v", err)
	}
}
