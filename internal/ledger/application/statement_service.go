package application

import (
	"context"
	"errors"
	"time"

	ledger "fundledger/internal/ledger/domain"
)

// Statement summarizes a member's capital position for one calendar month.
type Statement struct {
	MemberID         string                     `json:"member_id"`
	Month            time.Time                  `json:"month"`
	Investments      []ledger.Investment        `json:"investments"`
	Topups           []ledger.TopupRequest      `json:"topups"`
	Withdrawals      []ledger.WithdrawalRequest `json:"withdrawals"`
	TotalPrincipal   ledger.Money               `json:"total_principal"`
	TotalInterest    ledger.Money               `json:"total_interest"`
	TotalWithdrawn   ledger.Money               `json:"total_withdrawn"`
	AvailableBalance ledger.Money               `json:"available_balance"`
	GeneratedAt      time.Time                  `json:"generated_at"`
}

// StatementService assembles member monthly statements from ledger state.
type StatementService struct {
	investments ledger.InvestmentRepository
	topups      ledger.TopupRepository
	withdrawals ledger.WithdrawalRepository
	clock       Clock
}

// NewStatementService constructs the service.
func NewStatementService(investments ledger.InvestmentRepository, topups ledger.TopupRepository, withdrawals ledger.WithdrawalRepository, clock Clock) (*StatementService, error) {
	if investments == nil {
		return nil, errors.New("statement service: nil investment repository")
	}
	if topups == nil {
		return nil, errors.New("statement service: nil topup repository")
	}
	if withdrawals == nil {
		return nil, errors.New("statement service: nil withdrawal repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &StatementService{
		investments: investments,
		topups:      topups,
		withdrawals: withdrawals,
		clock:       clock,
	}, nil
}

// MonthlyStatement builds the statement for a member and month. The month
// value is truncated to its first day in UTC. Activity listings cover the
// requested month; totals and the balance reflect current ledger state.
func (s *StatementService) MonthlyStatement(ctx context.Context, memberID string, month time.Time) (*Statement, error) {
	if memberID == "" {
		return nil, ledger.ErrNotFound
	}
	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	investments, err := s.investments.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	topups, err := s.topups.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	withdrawals, err := s.withdrawals.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	stmt := &Statement{
		MemberID:    memberID,
		Month:       monthStart,
		Investments: investments,
		GeneratedAt: s.clock.Now().UTC(),
	}
	for _, inv := range investments {
		if inv.CountsTowardPrincipal() {
			stmt.TotalPrincipal += inv.Principal
		}
		stmt.TotalInterest += inv.InterestEarned
	}
	for _, req := range topups {
		if inMonth(req.CreatedAt, monthStart, monthEnd) {
			stmt.Topups = append(stmt.Topups, req)
		}
	}
	for _, req := range withdrawals {
		if inMonth(req.CreatedAt, monthStart, monthEnd) {
			stmt.Withdrawals = append(stmt.Withdrawals, req)
		}
		if req.HoldsBalance() {
			stmt.TotalWithdrawn += req.Amount
		}
	}
	stmt.AvailableBalance = ledger.AvailableBalance(investments, withdrawals)
	return stmt, nil
}

func inMonth(ts, start, end time.Time) bool {
	return !ts.Before(start) && ts.Before(end)
}
