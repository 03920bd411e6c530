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

// SubmitTopup carries the member's top-up submission.
type SubmitTopup struct {
	MemberID      string
	Amount        ledger.Money
	ProofRef      string
	PaymentMethod string
	Notes         string
}

// TopupWorkflow turns a submitted top-up into an approved investment or a
// rejection. All state transitions are guarded so that a terminal request
// can never be processed twice.
type TopupWorkflow struct {
	topups    ledger.TopupRepository
	directory MemberDirectory
	settings  Settings
	notifier  Notifier
	auditor   audit.Logger
	clock     Clock
	log       zerolog.Logger
}

// NewTopupWorkflow constructs the workflow.
func NewTopupWorkflow(
	topups ledger.TopupRepository,
	directory MemberDirectory,
	settings Settings,
	notifier Notifier,
	auditor audit.Logger,
	clock Clock,
	log zerolog.Logger,
) (*TopupWorkflow, error) {
	if topups == nil {
		return nil, errors.New("topup workflow: nil topup repository")
	}
	if directory == nil {
		return nil, errors.New("topup workflow: nil member directory")
	}
	if settings == nil {
		return nil, errors.New("topup workflow: nil settings")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &TopupWorkflow{
		topups:    topups,
		directory: directory,
		settings:  settings,
		notifier:  notifier,
		auditor:   auditor,
		clock:     clock,
		log:       log.With().Str("component", "topup_workflow").Logger(),
	}, nil
}

// Submit validates and persists a pending top-up request. No balance effect.
func (w *TopupWorkflow) Submit(ctx context.Context, in SubmitTopup) (*ledger.TopupRequest, error) {
	started := w.clock.Now()
	req, err := w.submit(ctx, in)
	metrics.ObserveWorkflow("topup", "submit", resultLabel(err), w.clock.Now().Sub(started))
	return req, err
}

func (w *TopupWorkflow) submit(ctx context.Context, in SubmitTopup) (*ledger.TopupRequest, error) {
	if in.MemberID == "" {
		return nil, ledger.ErrNotFound
	}
	if in.Amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	active, err := w.directory.IsActive(ctx, in.MemberID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ledger.ErrMemberInactive
	}
	if in.Amount < w.settings.MinimumTopup() {
		return nil, ledger.ErrBelowMinimum
	}

	now := w.clock.Now()
	req := &ledger.TopupRequest{
		ID:            uuid.NewString(),
		Reference:     newReference("TPU"),
		MemberID:      in.MemberID,
		Amount:        in.Amount,
		ProofRef:      in.ProofRef,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		Status:        ledger.TopupPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := w.topups.Create(ctx, req); err != nil {
		return nil, err
	}

	w.recordTransition(ctx, "topup.submit", req, in.MemberID, "", string(ledger.TopupPending), now)
	return req, nil
}

// Approve marks the request approved and atomically creates the spawned
// investment. The acting admin is stamped as processor.
func (w *TopupWorkflow) Approve(ctx context.Context, requestID, adminID, remarks string) (*ledger.Investment, error) {
	started := w.clock.Now()
	inv, err := w.approve(ctx, requestID, adminID, remarks)
	metrics.ObserveWorkflow("topup", "approve", resultLabel(err), w.clock.Now().Sub(started))
	return inv, err
}

func (w *TopupWorkflow) approve(ctx context.Context, requestID, adminID, remarks string) (*ledger.Investment, error) {
	req, err := w.topups.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ledger.ErrNotFound
	}
	if !req.IsPending() {
		return nil, ledger.ErrAlreadyProcessed
	}

	rate, err := w.directory.DefaultInterestRate(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if rate <= 0 {
		rate = w.settings.DefaultInterestRate()
	}

	now := w.clock.Now()
	inv := &ledger.Investment{
		ID:             uuid.NewString(),
		MemberID:       req.MemberID,
		TopupRequestID: req.ID,
		Principal:      req.Amount,
		Rate:           rate,
		Status:         ledger.InvestmentActive,
		StartedAt:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	req.Status = ledger.TopupApproved
	req.ProcessorID = adminID
	req.ProcessedAt = &now
	req.Remarks = remarks
	req.InvestmentID = inv.ID
	req.UpdatedAt = now

	if err := w.topups.Approve(ctx, req, inv); err != nil {
		if errors.Is(err, ledger.ErrStatusConflict) {
			return nil, ledger.ErrAlreadyProcessed
		}
		return nil, err
	}

	w.recordTransition(ctx, "topup.approve", req, adminID, string(ledger.TopupPending), string(ledger.TopupApproved), now)
	return inv, nil
}

// Reject marks the request rejected with a reason.
func (w *TopupWorkflow) Reject(ctx context.Context, requestID, adminID, reason, remarks string) (*ledger.TopupRequest, error) {
	started := w.clock.Now()
	req, err := w.reject(ctx, requestID, adminID, reason, remarks)
	metrics.ObserveWorkflow("topup", "reject", resultLabel(err), w.clock.Now().Sub(started))
	return req, err
}

func (w *TopupWorkflow) reject(ctx context.Context, requestID, adminID, reason, remarks string) (*ledger.TopupRequest, error) {
	if reason == "" {
		return nil, ledger.ErrMissingReason
	}
	req, err := w.topups.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ledger.ErrNotFound
	}
	if !req.IsPending() {
		return nil, ledger.ErrAlreadyProcessed
	}

	now := w.clock.Now()
	req.Status = ledger.TopupRejected
	req.ProcessorID = adminID
	req.ProcessedAt = &now
	req.RejectReason = reason
	req.Remarks = remarks
	req.UpdatedAt = now

	if err := w.topups.Reject(ctx, req); err != nil {
		if errors.Is(err, ledger.ErrStatusConflict) {
			return nil, ledger.ErrAlreadyProcessed
		}
		return nil, err
	}

	w.recordTransition(ctx, "topup.reject", req, adminID, string(ledger.TopupPending), string(ledger.TopupRejected), now)
	return req, nil
}

func (w *TopupWorkflow) recordTransition(ctx context.Context, action string, req *ledger.TopupRequest, actor, before, after string, at time.Time) {
	event := TransitionEvent{
		Kind:       "topup",
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
			metrics.IncNotifyFailure("topup")
			w.log.Error().Err(err).Str("request_id", req.ID).Msg("notify transition failed")
		}
	}
	if w.auditor != nil {
		meta, _ := json.Marshal(event)
		entry := audit.Entry{
			Actor:        actor,
			Action:       action,
			ResourceType: "topup_request",
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

func resultLabel(err error) string {
	if err != nil {
		return metrics.ResultError
	}
	return metrics.ResultSuccess
}
