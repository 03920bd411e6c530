package ledger

import "time"

// TopupStatus is the lifecycle state of a top-up request.
type TopupStatus string

const (
	TopupPending  TopupStatus = "pending"
	TopupApproved TopupStatus = "approved"
	TopupRejected TopupStatus = "rejected"
)

// TopupRequest is a member's claim to have paid principal externally.
// Approval is linked 1:1 to the investment it spawns; approved and rejected
// are terminal.
type TopupRequest struct {
	ID            string
	Reference     string
	MemberID      string
	Amount        Money
	ProofRef      string
	PaymentMethod string
	Notes         string
	Status        TopupStatus
	ProcessorID   string
	ProcessedAt   *time.Time
	Remarks       string
	RejectReason  string
	InvestmentID  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsPending reports whether the request can still be processed.
func (r *TopupRequest) IsPending() bool {
	return r != nil && r.Status == TopupPending
}
