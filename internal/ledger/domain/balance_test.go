package ledger

import (
	"testing"
	"time"
)

func TestAvailableBalance(t *testing.T) {
	investments := []Investment{
		{ID: "inv-1", Status: InvestmentActive, Principal: 100000, InterestEarned: 5000},
		{ID: "inv-2", Status: InvestmentPaused, Principal: 50000, InterestEarned: 1000},
		// Completed positions keep their accrued interest but not principal.
		{ID: "inv-3", Status: InvestmentCompleted, Principal: 200000, InterestEarned: 2500},
	}
	withdrawals := []WithdrawalRequest{
		{ID: "wdr-1", Status: WithdrawalPending, Amount: 20000},
		{ID: "wdr-2", Status: WithdrawalApproved, Amount: 10000},
		{ID: "wdr-3", Status: WithdrawalPaid, Amount: 5000},
		// Rejected requests release their hold.
		{ID: "wdr-4", Status: WithdrawalRejected, Amount: 99999},
	}

	// 1000.00 + 500.00 principal, 85.00 interest, minus 350.00 held.
	want := Money(100000 + 50000 + 5000 + 1000 + 2500 - 20000 - 10000 - 5000)
	if got := AvailableBalance(investments, withdrawals); got != want {
		t.Fatalf("AvailableBalance = %s, want %s", got, want)
	}
}

func TestAvailableBalanceEmpty(t *testing.T) {
	if got := AvailableBalance(nil, nil); got != 0 {
		t.Fatalf("AvailableBalance(nil, nil) = %s, want 0.00", got)
	}
}

func TestAvailableBalanceCanGoNegative(t *testing.T) {
	investments := []Investment{
		{ID: "inv-1", Status: InvestmentActive, Principal: 10000},
	}
	withdrawals := []WithdrawalRequest{
		{ID: "wdr-1", Status: WithdrawalPending, Amount: 15000},
	}
	if got := AvailableBalance(investments, withdrawals); got != -5000 {
		t.Fatalf("AvailableBalance = %s, want -50.00", got)
	}
}

func TestAccruedInMonth(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	var inv Investment
	if inv.AccruedInMonth(now) {
		t.Fatal("never-accrued investment reported as accrued")
	}

	sameMonth := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	inv.LastAccrualAt = &sameMonth
	if !inv.AccruedInMonth(now) {
		t.Fatal("same-month accrual not detected")
	}

	prevMonth := time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC)
	inv.LastAccrualAt = &prevMonth
	if inv.AccruedInMonth(now) {
		t.Fatal("previous-month accrual reported as current")
	}

	// Same month number, different year.
	lastYear := time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)
	inv.LastAccrualAt = &lastYear
	if inv.AccruedInMonth(now) {
		t.Fatal("same month of a previous year reported as current")
	}
}
