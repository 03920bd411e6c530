package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	ledger "fundledger/internal/ledger/domain"
	"fundledger/internal/ledger/infrastructure/memory"
)

func newInvestmentFixture(t *testing.T) (*InvestmentService, *memory.InvestmentRepository, *recordingAuditor) {
	t.Helper()
	investments := memory.NewInvestmentRepository()
	topups := memory.NewTopupRepository(investments)
	seedInvestment(t, topups, &ledger.Investment{
		ID:        "inv-1",
		MemberID:  "member-1",
		Principal: 100000,
		Rate:      500,
		Status:    ledger.InvestmentActive,
		CreatedAt: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	auditor := &recordingAuditor{}
	svc, err := NewInvestmentService(investments, auditor, newFixedClock(time.Now()), zerolog.Nop())
	if err != nil {
		t.Fatalf("new investment service: %v", err)
	}
	return svc, investments, auditor
}

func TestInvestmentPauseAndResume(t *testing.T) {
	svc, investments, auditor := newInvestmentFixture(t)

	inv, err := svc.SetStatus(context.Background(), "inv-1", "admin-1", ledger.InvestmentPaused)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if inv.Status != ledger.InvestmentPaused {
		t.Fatalf("status = %s, want paused", inv.Status)
	}
	stored, err := investments.GetByID(context.Background(), "inv-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != ledger.InvestmentPaused {
		t.Fatalf("stored status = %s, want paused", stored.Status)
	}
	if len(auditor.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(auditor.entries))
	}
	if auditor.entries[0].Before != "active" || auditor.entries[0].After != "paused" {
		t.Fatalf("audit transition = %s -> %s", auditor.entries[0].Before, auditor.entries[0].After)
	}

	inv, err = svc.SetStatus(context.Background(), "inv-1", "admin-1", ledger.InvestmentActive)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if inv.Status != ledger.InvestmentActive {
		t.Fatalf("status = %s, want active", inv.Status)
	}
}

func TestInvestmentCompleteIsTerminal(t *testing.T) {
	svc, _, _ := newInvestmentFixture(t)

	if _, err := svc.SetStatus(context.Background(), "inv-1", "admin-1", ledger.InvestmentCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := svc.SetStatus(context.Background(), "inv-1", "admin-1", ledger.InvestmentActive); !errors.Is(err, ledger.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed reactivating completed, got %v", err)
	}
}

func TestInvestmentSetStatusValidation(t *testing.T) {
	svc, _, auditor := newInvestmentFixture(t)

	if _, err := svc.SetStatus(context.Background(), "inv-1", "admin-1", "liquidated"); !errors.Is(err, ledger.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.SetStatus(context.Background(), "inv-1", "admin-1", ledger.InvestmentActive); !errors.Is(err, ledger.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed for no-op transition, got %v", err)
	}
	if _, err := svc.SetStatus(context.Background(), "inv-missing", "admin-1", ledger.InvestmentPaused); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(auditor.entries) != 0 {
		t.Fatalf("audit entries = %d, want 0 for rejected transitions", len(auditor.entries))
	}
}

// staleReadRepo serves reads from a snapshot so a transition races a
// concurrent writer.
type staleReadRepo struct {
	*memory.InvestmentRepository
	stale ledger.Investment
}

func (r *staleReadRepo) GetByID(ctx context.Context, id string) (*ledger.Investment, error) {
	if id == r.stale.ID {
		inv := r.stale
		return &inv, nil
	}
	return r.InvestmentRepository.GetByID(ctx, id)
}

func TestInvestmentSetStatusLosesRace(t *testing.T) {
	svc, investments, _ := newInvestmentFixture(t)

	if err := investments.UpdateStatus(context.Background(), "inv-1", ledger.InvestmentActive, ledger.InvestmentPaused); err != nil {
		t.Fatalf("concurrent transition: %v", err)
	}
	raced, err := NewInvestmentService(&staleReadRepo{
		InvestmentRepository: investments,
		stale:                ledger.Investment{ID: "inv-1", MemberID: "member-1", Status: ledger.InvestmentActive},
	}, nil, newFixedClock(time.Now()), zerolog.Nop())
	if err != nil {
		t.Fatalf("new investment service: %v", err)
	}
	if _, err := raced.SetStatus(context.Background(), "inv-1", "admin-1", ledger.InvestmentCompleted); !errors.Is(err, ledger.ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}

	svcInv, err := svc.SetStatus(context.Background(), "inv-1", "admin-1", ledger.InvestmentActive)
	if err != nil {
		t.Fatalf("resume after race: %v", err)
	}
	if svcInv.Status != ledger.InvestmentActive {
		t.Fatalf("status = %s, want active", svcInv.Status)
	}
}
