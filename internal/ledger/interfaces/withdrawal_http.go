package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fundledger/internal/auth"
	"fundledger/internal/ledger/application"
	ledger "fundledger/internal/ledger/domain"
)

// WithdrawalHandler handles withdrawal request APIs under /api/v1/withdrawals.
type WithdrawalHandler struct {
	workflow    *application.WithdrawalWorkflow
	withdrawals ledger.WithdrawalRepository
}

// NewWithdrawalHandler constructs a handler.
func NewWithdrawalHandler(workflow *application.WithdrawalWorkflow, withdrawals ledger.WithdrawalRepository) (*WithdrawalHandler, error) {
	if workflow == nil {
		return nil, errors.New("withdrawal handler: nil workflow")
	}
	if withdrawals == nil {
		return nil, errors.New("withdrawal handler: nil withdrawal repository")
	}
	return &WithdrawalHandler{workflow: workflow, withdrawals: withdrawals}, nil
}

// ServeHTTP routes withdrawal requests.
func (h *WithdrawalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/withdrawals" {
		switch r.Method {
		case http.MethodPost:
			h.handleSubmit(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	if rest, ok := strings.CutPrefix(path, "/api/v1/withdrawals/"); ok {
		parts := strings.Split(rest, "/")
		if len(parts) == 2 && r.Method == http.MethodPost {
			switch parts[1] {
			case "approve":
				h.handleApprove(w, r, parts[0])
				return
			case "paid":
				h.handleMarkPaid(w, r, parts[0])
				return
			case "reject":
				h.handleReject(w, r, parts[0])
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *WithdrawalHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount          string `json:"amount"`
		DestinationType string `json:"destination_type"`
		AccountName     string `json:"account_name"`
		AccountNumber   string `json:"account_number"`
		BankName        string `json:"bank_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	amount, err := ledger.ParseMoney(body.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := h.workflow.Submit(r.Context(), application.SubmitWithdrawal{
		MemberID:        auth.SubjectFromContext(r.Context()),
		Amount:          amount,
		DestinationType: ledger.DestinationType(body.DestinationType),
		AccountName:     body.AccountName,
		AccountNumber:   body.AccountNumber,
		BankName:        body.BankName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newWithdrawalView(req))
}

func (h *WithdrawalHandler) handleList(w http.ResponseWriter, r *http.Request) {
	status := ledger.WithdrawalStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = ledger.WithdrawalPending
	}
	limit := parseLimit(r.URL.Query().Get("limit"))
	list, err := h.withdrawals.ListByStatus(r.Context(), status, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]withdrawalView, 0, len(list))
	for i := range list {
		views = append(views, newWithdrawalView(&list[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *WithdrawalHandler) handleApprove(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Remarks string `json:"remarks"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	req, err := h.workflow.Approve(r.Context(), id, auth.SubjectFromContext(r.Context()), body.Remarks)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWithdrawalView(req))
}

func (h *WithdrawalHandler) handleMarkPaid(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		PayoutProofRef string `json:"payout_proof_ref"`
		Remarks        string `json:"remarks"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	req, err := h.workflow.MarkPaid(r.Context(), id, auth.SubjectFromContext(r.Context()), body.PayoutProofRef, body.Remarks)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWithdrawalView(req))
}

func (h *WithdrawalHandler) handleReject(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Reason  string `json:"reason"`
		Remarks string `json:"remarks"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	req, err := h.workflow.Reject(r.Context(), id, auth.SubjectFromContext(r.Context()), body.Reason, body.Remarks)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWithdrawalView(req))
}
