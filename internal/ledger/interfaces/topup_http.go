package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fundledger/internal/auth"
	"fundledger/internal/ledger/application"
	ledger "fundledger/internal/ledger/domain"
)

// TopupHandler handles top-up request APIs under /api/v1/topups.
type TopupHandler struct {
	workflow *application.TopupWorkflow
	topups   ledger.TopupRepository
}

// NewTopupHandler constructs a handler.
func NewTopupHandler(workflow *application.TopupWorkflow, topups ledger.TopupRepository) (*TopupHandler, error) {
	if workflow == nil {
		return nil, errors.New("topup handler: nil workflow")
	}
	if topups == nil {
		return nil, errors.New("topup handler: nil topup repository")
	}
	return &TopupHandler{workflow: workflow, topups: topups}, nil
}

// ServeHTTP routes top-up requests.
func (h *TopupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/topups" {
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
	if rest, ok := strings.CutPrefix(path, "/api/v1/topups/"); ok {
		parts := strings.Split(rest, "/")
		if len(parts) == 2 && r.Method == http.MethodPost {
			switch parts[1] {
			case "approve":
				h.handleApprove(w, r, parts[0])
				return
			case "reject":
				h.handleReject(w, r, parts[0])
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *TopupHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount        string `json:"amount"`
		ProofRef      string `json:"proof_ref"`
		PaymentMethod string `json:"payment_method"`
		Notes         string `json:"notes"`
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
	req, err := h.workflow.Submit(r.Context(), application.SubmitTopup{
		MemberID:      auth.SubjectFromContext(r.Context()),
		Amount:        amount,
		ProofRef:      body.ProofRef,
		PaymentMethod: body.PaymentMethod,
		Notes:         body.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTopupView(req))
}

func (h *TopupHandler) handleList(w http.ResponseWriter, r *http.Request) {
	status := ledger.TopupStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = ledger.TopupPending
	}
	limit := parseLimit(r.URL.Query().Get("limit"))
	list, err := h.topups.ListByStatus(r.Context(), status, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]topupView, 0, len(list))
	for i := range list {
		views = append(views, newTopupView(&list[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *TopupHandler) handleApprove(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Remarks string `json:"remarks"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	inv, err := h.workflow.Approve(r.Context(), id, auth.SubjectFromContext(r.Context()), body.Remarks)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newInvestmentView(inv))
}

func (h *TopupHandler) handleReject(w http.ResponseWriter, r *http.Request, id string) {
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
	writeJSON(w, http.StatusOK, newTopupView(req))
}

func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
