package application

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"fundledger/internal/audit"
	ledger "fundledger/internal/ledger/domain"
	"fundledger/internal/observability/metrics"
)

// InvestmentService handles admin lifecycle transitions on investments:
// pausing and resuming accrual, and completing a paid-out position.
// Completed is terminal.
type InvestmentService struct {
	investments ledger.InvestmentRepository
	auditor     audit.Logger
	clock       Clock
	log         zerolog.Logger
}

// NewInvestmentService constructs the service.
func NewInvestmentService(investments ledger.InvestmentRepository, auditor audit.Logger, clock Clock, log zerolog.Logger) (*InvestmentService, error) {
	if investments == nil {
		return nil, errors.New("investment service: nil investment repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &InvestmentService{
		investments: investments,
		auditor:     auditor,
		clock:       clock,
		log:         log.With().Str("component", "investment_service").Logger(),
	}, nil
}

// SetStatus transitions an investment to the given status with a
// compare-and-swap guard on the status the service read.
func (s *InvestmentService) SetStatus(ctx context.Context, id, adminID string, to ledger.InvestmentStatus) (*ledger.Investment, error) {
	started := s.clock.Now()
	inv, err := s.setStatus(ctx, id, adminID, to)
	metrics.ObserveWorkflow("investment", "set_status", resultLabel(err), s.clock.Now().Sub(started))
	return inv, err
}

func (s *InvestmentService) setStatus(ctx context.Context, id, adminID string, to ledger.InvestmentStatus) (*ledger.Investment, error) {
	switch to {
	case ledger.InvestmentActive, ledger.InvestmentPaused, ledger.InvestmentCompleted:
	default:
		return nil, ledger.ErrInvalidStatus
	}
	inv, err := s.investments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ledger.ErrNotFound
	}
	if inv.Status == ledger.InvestmentCompleted || inv.Status == to {
		return nil, ledger.ErrAlreadyProcessed
	}

	from := inv.Status
	if err := s.investments.UpdateStatus(ctx, id, from, to); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	inv.Status = to
	inv.UpdatedAt = now

	if s.auditor != nil {
		meta, _ := json.Marshal(map[string]string{
			"from": string(from),
			"to":   string(to),
		})
		entry := audit.Entry{
			Actor:        adminID,
			Action:       "investment.set_status",
			ResourceType: "investment",
			ResourceID:   inv.ID,
			MemberID:     inv.MemberID,
			Before:       string(from),
			After:        string(to),
			Metadata:     meta,
			CreatedAt:    now,
		}
		if err := s.auditor.Log(ctx, entry); err != nil {
			s.log.Error().Err(err).Str("investment_id", inv.ID).Msg("audit write failed")
		}
	}
	return inv, nil
}
