package interfaces

import (
	"time"

	"fundledger/internal/ledger/application"
	ledger "fundledger/internal/ledger/domain"
)

type topupView struct {
	ID            string     `json:"id"`
	Reference     string     `json:"reference"`
	MemberID      string     `json:"member_id"`
	Amount        string     `json:"amount"`
	ProofRef      string     `json:"proof_ref,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Status        string     `json:"status"`
	ProcessorID   string     `json:"processor_id,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	Remarks       string     `json:"remarks,omitempty"`
	RejectReason  string     `json:"reject_reason,omitempty"`
	InvestmentID  string     `json:"investment_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newTopupView(req *ledger.TopupRequest) topupView {
	return topupView{
		ID:            req.ID,
		Reference:     req.Reference,
		MemberID:      req.MemberID,
		Amount:        req.Amount.String(),
		ProofRef:      req.ProofRef,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Status:        string(req.Status),
		ProcessorID:   req.ProcessorID,
		ProcessedAt:   req.ProcessedAt,
		Remarks:       req.Remarks,
		RejectReason:  req.RejectReason,
		InvestmentID:  req.InvestmentID,
		CreatedAt:     req.CreatedAt,
	}
}

type withdrawalView struct {
	ID              string     `json:"id"`
	Reference       string     `json:"reference"`
	MemberID        string     `json:"member_id"`
	Amount          string     `json:"amount"`
	DestinationType string     `json:"destination_type"`
	AccountName     string     `json:"account_name,omitempty"`
	AccountNumber   string     `json:"account_number,omitempty"`
	BankName        string     `json:"bank_name,omitempty"`
	Status          string     `json:"status"`
	ProcessorID     string     `json:"processor_id,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	PayoutProofRef  string     `json:"payout_proof_ref,omitempty"`
	Remarks         string     `json:"remarks,omitempty"`
	RejectReason    string     `json:"reject_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func newWithdrawalView(req *ledger.WithdrawalRequest) withdrawalView {
	return withdrawalView{
		ID:              req.ID,
		Reference:       req.Reference,
		MemberID:        req.MemberID,
		Amount:          req.Amount.String(),
		DestinationType: string(req.DestinationType),
		AccountName:     req.AccountName,
		AccountNumber:   req.AccountNumber,
		BankName:        req.BankName,
		Status:          string(req.Status),
		ProcessorID:     req.ProcessorID,
		ProcessedAt:     req.ProcessedAt,
		PayoutProofRef:  req.PayoutProofRef,
		Remarks:         req.Remarks,
		RejectReason:    req.RejectReason,
		CreatedAt:       req.CreatedAt,
	}
}

type investmentView struct {
	ID             string     `json:"id"`
	MemberID       string     `json:"member_id"`
	TopupRequestID string     `json:"topup_request_id"`
	Principal      string     `json:"principal"`
	RatePercent    string     `json:"rate_percent"`
	InterestEarned string     `json:"interest_earned"`
	Status         string     `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	LastAccrualAt  *time.Time `json:"last_accrual_at,omitempty"`
}

func newInvestmentView(inv *ledger.Investment) investmentView {
	return investmentView{
		ID:             inv.ID,
		MemberID:       inv.MemberID,
		TopupRequestID: inv.TopupRequestID,
		Principal:      inv.Principal.String(),
		RatePercent:    inv.Rate.String(),
		InterestEarned: inv.InterestEarned.String(),
		Status:         string(inv.Status),
		StartedAt:      inv.StartedAt,
		LastAccrualAt:  inv.LastAccrualAt,
	}
}

type accrualRunView struct {
	ID            string                    `json:"id"`
	Reference     string                    `json:"reference"`
	Status        string                    `json:"status"`
	Month         string                    `json:"month"`
	Processed     int                       `json:"processed"`
	Skipped       int                       `json:"skipped"`
	TotalInterest string                    `json:"total_interest"`
	Errors        []ledger.AccrualItemError `json:"errors,omitempty"`
	StartedAt     time.Time                 `json:"started_at"`
	FinishedAt    *time.Time                `json:"finished_at,omitempty"`
}

func newAccrualRunView(run *ledger.AccrualRun) accrualRunView {
	return accrualRunView{
		ID:            run.ID,
		Reference:     run.Reference,
		Status:        string(run.Status),
		Month:         run.Month.Format("2006-01"),
		Processed:     run.Processed,
		Skipped:       run.Skipped,
		TotalInterest: run.TotalInterest.String(),
		Errors:        run.Errors,
		StartedAt:     run.StartedAt,
		FinishedAt:    run.FinishedAt,
	}
}

type statementView struct {
	MemberID         string           `json:"member_id"`
	Month            string           `json:"month"`
	Investments      []investmentView `json:"investments"`
	Topups           []topupView      `json:"topups"`
	Withdrawals      []withdrawalView `json:"withdrawals"`
	TotalPrincipal   string           `json:"total_principal"`
	TotalInterest    string           `json:"total_interest"`
	TotalWithdrawn   string           `json:"total_withdrawn"`
	AvailableBalance string           `json:"available_balance"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

func newStatementView(stmt *application.Statement) statementView {
	view := statementView{
		MemberID:         stmt.MemberID,
		Month:            stmt.Month.Format("2006-01"),
		Investments:      make([]investmentView, 0, len(stmt.Investments)),
		Topups:           make([]topupView, 0, len(stmt.Topups)),
		Withdrawals:      make([]withdrawalView, 0, len(stmt.Withdrawals)),
		TotalPrincipal:   stmt.TotalPrincipal.String(),
		TotalInterest:    stmt.TotalInterest.String(),
		TotalWithdrawn:   stmt.TotalWithdrawn.String(),
		AvailableBalance: stmt.AvailableBalance.String(),
		GeneratedAt:      stmt.GeneratedAt,
	}
	for i := range stmt.Investments {
		view.Investments = append(view.Investments, newInvestmentView(&stmt.Investments[i]))
	}
	for i := range stmt.Topups {
		view.Topups = append(view.Topups, newTopupView(&stmt.Topups[i]))
	}
	for i := range stmt.Withdrawals {
		view.Withdrawals = append(view.Withdrawals, newWithdrawalView(&stmt.Withdrawals[i]))
	}
	return view
}
