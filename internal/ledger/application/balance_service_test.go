package application

import (
	"context"
	"testing"
	"time"

	ledger "fundledger/internal/ledger/domain"
	"fundledger/internal/ledger/infrastructure/memory"
)

func TestAvailableBalanceReflectsFreshState(t *testing.T) {
	investments := memory.NewInvestmentRepository()
	topups := memory.NewTopupRepository(investments)
	withdrawals := memory.NewWithdrawalRepository()

	service, err := NewBalanceService(investments, withdrawals)
	if err != nil {
		t.Fatalf("new balance service: %v", err)
	}
	ctx := context.Background()

	available, err := service.AvailableBalance(ctx, "member-1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if available != 0 {
		t.Fatalf("empty ledger balance = %s, want 0.00", available)
	}

	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	seedInvestment(t, topups, &ledger.Investment{
		ID: "inv-1", MemberID: "member-1", Principal: 100000, Rate: 500,
		InterestEarned: 5000, Status: ledger.InvestmentActive, CreatedAt: now,
	})
	if err := withdrawals.Create(ctx, &ledger.WithdrawalRequest{
		ID: "wdr-1", MemberID: "member-1", Amount: 30000,
		Status: ledger.WithdrawalPending, CreatedAt: now,
	}); err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}

	available, err = service.AvailableBalance(ctx, "member-1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if available != 75000 {
		t.Fatalf("balance = %s, want 750.00", available)
	}

	// Other members are unaffected.
	other, err := service.AvailableBalance(ctx, "member-2")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if other != 0 {
		t.Fatalf("member-2 balance = %s, want 0.00", other)
	}
}
