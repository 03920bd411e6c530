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

// InvestmentHandler handles admin investment lifecycle APIs under
// /api/v1/investments.
type InvestmentHandler struct {
	service *application.InvestmentService
}

// NewInvestmentHandler constructs a handler.
func NewInvestmentHandler(service *application.InvestmentService) (*InvestmentHandler, error) {
	if service == nil {
		return nil, errors.New("investment handler: nil service")
	}
	return &InvestmentHandler{service: service}, nil
}

// ServeHTTP routes investment requests.
func (h *InvestmentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if rest, ok := strings.CutPrefix(r.URL.Path, "/api/v1/investments/"); ok {
		parts := strings.Split(rest, "/")
		if len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPost {
			h.handleSetStatus(w, r, parts[0])
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *InvestmentHandler) handleSetStatus(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	inv, err := h.service.SetStatus(r.Context(), id, auth.SubjectFromContext(r.Context()), ledger.InvestmentStatus(body.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newInvestmentView(inv))
}
