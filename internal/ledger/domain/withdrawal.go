package ledger

import "time"

// WithdrawalStatus is the lifecycle state of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalPaid     WithdrawalStatus = "paid"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// DestinationType identifies where a withdrawal is paid out.
type DestinationType string

const (
	DestinationBankTransfer DestinationType = "bank_transfer"
	DestinationEWallet      DestinationType = "e_wallet"
)

// WithdrawalRequest is a member's claim on funds already in the ledger.
// A pending request already reduces the derived available balance. Paid and
// rejected are terminal.
type WithdrawalRequest struct {
	ID              string
	Reference       string
	MemberID        string
	Amount          Money
	DestinationType DestinationType
	AccountName     string
	AccountNumber   string
	BankName        string
	Status          WithdrawalStatus
	ProcessorID     string
	ProcessedAt     *time.Time
	PayoutProofRef  string
	Remarks         string
	RejectReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HoldsBalance reports whether the request amount is counted against the
// member's available balance.
func (r *WithdrawalRequest) HoldsBalance() bool {
	if r == nil {
		return false
	}
	switch r.Status {
	case WithdrawalPending, WithdrawalApproved, WithdrawalPaid:
		return true
	}
	return false
}

// Rejectable reports whether the request may still be rejected.
func (r *WithdrawalRequest) Rejectable() bool {
	if r == nil {
		return false
	}
	return r.Status == WithdrawalPending || r.Status == WithdrawalApproved
}
