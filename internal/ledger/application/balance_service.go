package application

import (
	"context"
	"errors"

	ledger "fundledger/internal/ledger/domain"
	"fundledger/internal/observability/metrics"
)

// BalanceService derives member balances from current ledger state. The
// balance is recomputed from freshly loaded records on every call; nothing
// is cached between reads.
type BalanceService struct {
	investments ledger.InvestmentRepository
	withdrawals ledger.WithdrawalRepository
}

// NewBalanceService constructs the service.
func NewBalanceService(investments ledger.InvestmentRepository, withdrawals ledger.WithdrawalRepository) (*BalanceService, error) {
	if investments == nil {
		return nil, errors.New("balance service: nil investment repository")
	}
	if withdrawals == nil {
		return nil, errors.New("balance service: nil withdrawal repository")
	}
	return &BalanceService{investments: investments, withdrawals: withdrawals}, nil
}

// AvailableBalance returns the member's current withdrawable amount.
func (s *BalanceService) AvailableBalance(ctx context.Context, memberID string) (ledger.Money, error) {
	investments, err := s.investments.ListByMember(ctx, memberID)
	if err != nil {
		return 0, err
	}
	withdrawals, err := s.withdrawals.ListByMember(ctx, memberID)
	if err != nil {
		return 0, err
	}
	metrics.IncBalanceQuery()
	return ledger.AvailableBalance(investments, withdrawals), nil
}
