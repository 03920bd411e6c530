package application

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	ledger "fundledger/internal/ledger/domain"
	"fundledger/internal/observability/metrics"
)

// AccrualEngine credits one month of simple interest to every active
// investment whose owner is active. Each investment is handled in its own
// transaction: a failure is recorded into the run's error list and never
// aborts the remaining items. Re-running within the same calendar month is
// harmless because the last-accrual guard skips already credited positions.
type AccrualEngine struct {
	investments ledger.InvestmentRepository
	runs        ledger.AccrualRunRepository
	notifier    Notifier
	clock       Clock
	log         zerolog.Logger

	mu sync.Mutex
}

// NewAccrualEngine constructs the engine.
func NewAccrualEngine(
	investments ledger.InvestmentRepository,
	runs ledger.AccrualRunRepository,
	notifier Notifier,
	clock Clock,
	log zerolog.Logger,
) (*AccrualEngine, error) {
	if investments == nil {
		return nil, errors.New("accrual engine: nil investment repository")
	}
	if runs == nil {
		return nil, errors.New("accrual engine: nil run repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &AccrualEngine{
		investments: investments,
		runs:        runs,
		notifier:    notifier,
		clock:       clock,
		log:         log.With().Str("component", "accrual_engine").Logger(),
	}, nil
}

// RunMonthlyAccrual walks all accruable investments once. Overlapping
// invocations are rejected, not queued. The run itself only fails when the
// non-overlap lock cannot be acquired or the investments cannot be
// enumerated; everything else is a per-item error inside the summary.
func (e *AccrualEngine) RunMonthlyAccrual(ctx context.Context) (*ledger.AccrualRun, error) {
	if !e.mu.TryLock() {
		metrics.ObserveAccrualRun(metrics.ResultError, 0)
		return nil, ledger.ErrAccrualRunning
	}
	defer e.mu.Unlock()

	started := e.clock.Now()
	run := &ledger.AccrualRun{
		ID:        uuid.NewString(),
		Reference: newReference("RUN"),
		Status:    ledger.AccrualRunRunning,
		Month:     monthStart(started),
		StartedAt: started,
	}
	recorded := true
	if err := e.runs.Create(ctx, run); err != nil {
		// The run record is bookkeeping; accrual itself still proceeds.
		recorded = false
		e.log.Error().Err(err).Str("run_id", run.ID).Msg("create accrual run record failed")
	}

	investments, err := e.investments.ListAccruable(ctx)
	if err != nil {
		e.finish(ctx, run, ledger.AccrualRunFailed, recorded)
		metrics.ObserveAccrualRun(metrics.ResultError, e.clock.Now().Sub(started))
		return nil, err
	}

	for i := range investments {
		if ctx.Err() != nil {
			// Shutdown: let the credited items stand, start no new ones.
			break
		}
		inv := &investments[i]
		if inv.AccruedInMonth(started) {
			run.Skipped++
			continue
		}
		interest := ledger.MonthlyInterest(inv.Principal, inv.Rate)
		if interest <= 0 {
			run.Skipped++
			continue
		}
		credited, err := e.investments.CreditInterest(ctx, inv.ID, interest, started)
		if err != nil {
			run.Errors = append(run.Errors, ledger.AccrualItemError{
				InvestmentID: inv.ID,
				Error:        err.Error(),
			})
			e.log.Error().Err(err).Str("investment_id", inv.ID).Msg("credit interest failed")
			continue
		}
		if !credited {
			run.Skipped++
			continue
		}
		run.Processed++
		run.TotalInterest += interest
	}

	e.finish(ctx, run, ledger.AccrualRunSucceeded, recorded)

	duration := e.clock.Now().Sub(started)
	metrics.ObserveAccrualRun(metrics.ResultSuccess, duration)
	metrics.AddAccrualItems(run.Processed, run.Skipped, len(run.Errors))
	metrics.AddAccrualInterest(int64(run.TotalInterest))

	e.log.Info().
		Str("run_id", run.ID).
		Str("month", run.Month.Format("2006-01")).
		Int("processed", run.Processed).
		Int("skipped", run.Skipped).
		Int("failed", len(run.Errors)).
		Str("total_interest", run.TotalInterest.String()).
		Msg("monthly accrual finished")

	if e.notifier != nil {
		event := AccrualEvent{
			RunID:         run.ID,
			Reference:     run.Reference,
			Month:         run.Month.Format("2006-01"),
			Processed:     run.Processed,
			Skipped:       run.Skipped,
			Failed:        len(run.Errors),
			TotalInterest: run.TotalInterest.String(),
			OccurredAt:    e.clock.Now(),
		}
		if err := e.notifier.NotifyAccrual(ctx, event); err != nil {
			metrics.IncNotifyFailure("accrual")
			e.log.Error().Err(err).Str("run_id", run.ID).Msg("notify accrual failed")
		}
	}
	return run, nil
}

func (e *AccrualEngine) finish(ctx context.Context, run *ledger.AccrualRun, status ledger.AccrualRunStatus, recorded bool) {
	finished := e.clock.Now()
	run.Status = status
	run.FinishedAt = &finished
	if !recorded {
		return
	}
	if err := e.runs.Finish(ctx, run); err != nil {
		e.log.Error().Err(err).Str("run_id", run.ID).Msg("finish accrual run record failed")
	}
}
