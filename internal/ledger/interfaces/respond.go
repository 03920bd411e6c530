package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"fundledger/internal/auth"
	ledger "fundledger/internal/ledger/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrMemberInactive),
		errors.Is(err, ledger.ErrWithdrawalFrozen),
		errors.Is(err, auth.ErrOwnershipMismatch):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrAlreadyProcessed),
		errors.Is(err, ledger.ErrNotApproved),
		errors.Is(err, ledger.ErrCannotReject),
		errors.Is(err, ledger.ErrStatusConflict),
		errors.Is(err, ledger.ErrAccrualRunning):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidRate),
		errors.Is(err, ledger.ErrBelowMinimum),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrDailyLimitExceeded),
		errors.Is(err, ledger.ErrMissingBankName),
		errors.Is(err, ledger.ErrMissingReason),
		errors.Is(err, ledger.ErrInvalidStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
