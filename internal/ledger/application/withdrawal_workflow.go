package application

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fundledger/internal/audit"
	ledger "fundledger/internal/ledger/domain"
	"fundledger/internal/observability/metrics"
)

// SubmitWithdrawal carries the member's withdrawal submission.
type SubmitWithdrawal struct {
	MemberID        string
	Amount          ledger.Money
	DestinationType ledger.DestinationType
	AccountName     string
	AccountNumber   string
	BankName        string
}

// WithdrawalWorkflow moves a withdrawal request through
// pending -> approved -> paid, or to rejected. Submission alone reduces the
// member's derived available balance; rejection releases it again.
type WithdrawalWorkflow struct {
	withdrawals ledger.WithdrawalRepository
	balance     *BalanceService
	directory   MemberDirectory
	settings    Settings
	notifier    Notifier
	auditor     audit.Logger
	clock       Clock
	log         zerolog.Logger
}

// NewWithdrawalWorkflow constructs the workflow.
func NewWithdrawalWorkflow(
	withdrawals ledger.WithdrawalRepository,
	balance *BalanceService,
	directory MemberDirectory,
	settings Settings,
	notifier Notifier,
	auditor audit.Logger,
	clock Clock,
	log zerolog.Logger,
) (*WithdrawalWorkflow, error) {
	if withdrawals == nil {
		return nil, errors.New("withdrawal workflow: nil withdrawal repository")
	}
	if balance == nil {
		return nil, errors.New("withdrawal workflow: nil balance service")
	}
	if directory == nil {
		return nil, errors.New("withdrawal workflow: nil member directory")
	}
	if settings == nil {
		return nil, errors.New("withdrawal workflow: nil settings")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &WithdrawalWorkflow{
		withdrawals: withdrawals,
		balance:     balance,
		directory:   directory,
		settings:    settings,
		notifier:    notifier,
		auditor:     auditor,
		clock:       clock,
		log:         log.With().Str("component", "withdrawal_workflow").Logger(),
	}, nil
}

// Submit validates and persists a pending withdrawal request.
func (w *WithdrawalWorkflow) Submit(ctx context.Context, in SubmitWithdrawal) (*ledger.WithdrawalRequest, error) {
	started := w.clock.Now()
	req, err := w.submit(ctx, in)
	metrics.ObserveWorkflow("withdrawal", "submit", resultLabel(err), w.clock.Now().Sub(started))
	return req, err
}

func (w *WithdrawalWorkflow) submit(ctx context.Context, in SubmitWithdrawal) (*ledger.WithdrawalRequest, error) {
	if in.MemberID == "" {
		return nil, ledger.ErrNotFound
	}
	if in.Amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}

	frozen, err := w.directory.IsWithdrawalFrozen(ctx, in.MemberID)
	if err != nil {
		return nil, err
	}
	if frozen {
		return nil, ledger.ErrWithdrawalFrozen
	}
	if in.Amount < w.settings.MinimumWithdrawal() {
		return nil, ledger.ErrBelowMinimum
	}

	available, err := w.balance.AvailableBalance(ctx, in.MemberID)
	if err != nil {
		return nil, err
	}
	if in.Amount > available {
		return nil, ledger.ErrInsufficientBalance
	}

	if dailyCap := w.settings.MaxWithdrawalPerDay(); dailyCap > 0 {
		now := w.clock.Now()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		withdrawnToday, err := w.withdrawals.SumCreatedBetween(ctx, in.MemberID, dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		if withdrawnToday+in.Amount > dailyCap {
			return nil, ledger.ErrDailyLimitExceeded
		}
	}

	if in.DestinationType == ledger.DestinationBankTransfer && in.BankName == "" {
		return nil, ledger.ErrMissingBankName
	}

	now := w.clock.Now()
	req := &ledger.WithdrawalRequest{
		ID:              uuid.NewString(),
		Reference:       newReference("WDR"),
		MemberID:        in.MemberID,
		Amount:          in.Amount,
		DestinationType: in.DestinationType,
		AccountName:     in.AccountName,
		AccountNumber:   in.AccountNumber,
		BankName:        in.BankName,
		Status:          ledger.WithdrawalPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := w.withdrawals.Create(ctx, req); err != nil {
		return nil, err
	}

	w.recordTransition(ctx, "withdrawal.submit", req, in.MemberID, "", string(ledger.WithdrawalPending), now)
	return req, nil
}

// Approve transitions a pending request to approved. The available balance
// is re-validated here: concurrent withdrawals approved in the interim may
// have overdrawn the member since submission.
func (w *WithdrawalWorkflow) Approve(ctx context.Context, requestID, adminID, remarks string) (*ledger.WithdrawalRequest, error) {
	started := w.clock.Now()
	req, err := w.approve(ctx, requestID, adminID, remarks)
	metrics.ObserveWorkflow("withdrawal", "approve", resultLabel(err), w.clock.Now().Sub(started))
	return req, err
}

func (w *WithdrawalWorkflow) approve(ctx context.Context, requestID, adminID, remarks string) (*ledger.WithdrawalRequest, error) {
	req, err := w.withdrawals.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ledger.ErrNotFound
	}
	if req.Status != ledger.WithdrawalPending {
		return nil, ledger.ErrAlreadyProcessed
	}

	// The pending request is already counted against the balance, so any
	// negative value means sibling withdrawals have outrun the funds.
	available, err := w.balance.AvailableBalance(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if available < 0 {
		return nil, ledger.ErrInsufficientBalance
	}

	now := w.clock.Now()
	req.Status = ledger.WithdrawalApproved
	req.ProcessorID = adminID
	req.ProcessedAt = &now
	req.Remarks = remarks
	req.UpdatedAt = now

	if err := w.withdrawals.Transition(ctx, req, ledger.WithdrawalPending); err != nil {
		if errors.Is(err, ledger.ErrStatusConflict) {
			return nil, ledger.ErrAlreadyProcessed
		}
		return nil, err
	}

	w.recordTransition(ctx, "withdrawal.approve", req, adminID, string(ledger.WithdrawalPending), string(ledger.WithdrawalApproved), now)
	return req, nil
}

// MarkPaid records the payout of an approved request.
func (w *WithdrawalWorkflow) MarkPaid(ctx context.Context, requestID, adminID, payoutProofRef, remarks string) (*ledger.WithdrawalRequest, error) {
	started := w.clock.Now()
	req, err := w.markPaid(ctx, requestID, adminID, payoutProofRef, remarks)
	metrics.ObserveWorkflow("withdrawal", "mark_paid", resultLabel(err), w.clock.Now().Sub(started))
	return req, err
}

func (w *WithdrawalWorkflow) markPaid(ctx context.Context, requestID, adminID, payoutProofRef, remarks string) (*ledger.WithdrawalRequest, error) {
	req, err := w.withdrawals.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ledger.ErrNotFound
	}
	if req.Status != ledger.WithdrawalApproved {
		return nil, ledger.ErrNotApproved
	}

	now := w.clock.Now()
	req.Status = ledger.WithdrawalPaid
	req.ProcessorID = adminID
	req.ProcessedAt = &now
	req.PayoutProofRef = payoutProofRef
	if remarks != "" {
		req.Remarks = remarks
	}
	req.UpdatedAt = now

	if err := w.withdrawals.Transition(ctx, req, ledger.WithdrawalApproved); err != nil {
		if errors.Is(err, ledger.ErrStatusConflict) {
			return nil, ledger.ErrNotApproved
		}
		return nil, err
	}

	w.recordTransition(ctx, "withdrawal.mark_paid", req, adminID, string(ledger.WithdrawalApproved), string(ledger.WithdrawalPaid), now)
	return req, nil
}

// Reject closes a pending or approved request, releasing its amount back
// into the member's available balance.
func (w *WithdrawalWorkflow) Reject(ctx context.Context, requestID, adminID, reason, remarks string) (*ledger.WithdrawalRequest, error) {
	started := w.clock.Now()
	req, err := w.reject(ctx, requestID, adminID, reason, remarks)
	metrics.ObserveWorkflow("withdrawal", "reject", resultLabel(err), w.clock.Now().Sub(started))
	return req, err
}

func (w *WithdrawalWorkflow) reject(ctx context.Context, requestID, adminID, reason, remarks string) (*ledger.WithdrawalRequest, error) {
	if reason == "" {
		return nil, ledger.ErrMissingReason
	}
	req, err := w.withdrawals.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ledger.ErrNotFound
	}
	if !req.Rejectable() {
		return nil, ledger.ErrCannotReject
	}
	observed := req.Status

	now := w.clock.Now()
	req.Status = ledger.WithdrawalRejected
	req.ProcessorID = adminID
	req.ProcessedAt = &now
	req.RejectReason = reason
	req.Remarks = remarks
	req.UpdatedAt = now

	if err := w.withdrawals.Transition(ctx, req, observed); err != nil {
		if errors.Is(err, ledger.ErrStatusConflict) {
			return nil, ledger.ErrCannotReject
		}
		return nil, err
	}

	w.recordTransition(ctx, "withdrawal.reject", req, adminID, string(observed), string(ledger.WithdrawalRejected), now)
	return req, nil
}

func (w *WithdrawalWorkflow) recordTransition(ctx context.Context, action string, req *ledger.WithdrawalRequest, actor, before, after string, at time.Time) {
	event := TransitionEvent{
		Kind:       "withdrawal",
		RequestID:  req.ID,
		Reference:  req.Reference,
		MemberID:   req.MemberID,
		Actor:      actor,
		Amount:     req.Amount.String(),
		From:       before,
		To:         after,
		OccurredAt: at,
	}
	if w.notifier != nil {
		if err := w.notifier.NotifyTransition(ctx, event); err != nil {
			metrics.IncNotifyFailure("withdrawal")
			w.log.Error().Err(err).Str("request_id", req.ID).Msg("notify transition failed")
		}
	}
	if w.auditor != nil {
		meta, _ := json.Marshal(event)
		entry := audit.Entry{
			Actor:        actor,
			Action:       action,
			ResourceType: "withdrawal_request",
			ResourceID:   req.ID,
			MemberID:     req.MemberID,
			Before:       before,
			After:        after,
			Metadata:     meta,
			CreatedAt:    at,
		}
		if err := w.auditor.Log(ctx, entry); err != nil {
			w.log.Error().Err(err).Str("request_id", req.ID).Msg("audit write failed")
		}
	}
}
