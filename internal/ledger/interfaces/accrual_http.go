package interfaces

import (
	"errors"
	"net/http"

	"fundledger/internal/ledger/application"
	ledger "fundledger/internal/ledger/domain"
)

// AccrualHandler exposes the monthly accrual batch under /api/v1/accrual.
type AccrualHandler struct {
	engine *application.AccrualEngine
	runs   ledger.AccrualRunRepository
}

// NewAccrualHandler constructs a handler.
func NewAccrualHandler(engine *application.AccrualEngine, runs ledger.AccrualRunRepository) (*AccrualHandler, error) {
	if engine == nil {
		return nil, errors.New("accrual handler: nil engine")
	}
	if runs == nil {
		return nil, errors.New("accrual handler: nil run repository")
	}
	return &AccrualHandler{engine: engine, runs: runs}, nil
}

// ServeHTTP routes accrual requests.
func (h *AccrualHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/accrual/run" && r.Method == http.MethodPost:
		h.handleRun(w, r)
	case r.URL.Path == "/api/v1/accrual/runs" && r.Method == http.MethodGet:
		h.handleListRuns(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AccrualHandler) handleRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.engine.RunMonthlyAccrual(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccrualRunView(run))
}

func (h *AccrualHandler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))
	runs, err := h.runs.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]accrualRunView, 0, len(runs))
	for i := range runs {
		views = append(views, newAccrualRunView(&runs[i]))
	}
	writeJSON(w, http.StatusOK, views)
}
