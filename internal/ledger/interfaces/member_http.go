package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"fundledger/internal/audit"
	"fundledger/internal/auth"
	"fundledger/internal/ledger/application"
	ledger "fundledger/internal/ledger/domain"
)

// MemberHandler serves member-scoped ledger reads under /api/v1/members.
// Every route enforces ownership: members see only their own data.
type MemberHandler struct {
	balance     *application.BalanceService
	statements  *application.StatementService
	topups      ledger.TopupRepository
	withdrawals ledger.WithdrawalRepository
	auditor     audit.Logger
}

// NewMemberHandler constructs a handler.
func NewMemberHandler(
	balance *application.BalanceService,
	statements *application.StatementService,
	topups ledger.TopupRepository,
	withdrawals ledger.WithdrawalRepository,
	auditor audit.Logger,
) (*MemberHandler, error) {
	if balance == nil {
		return nil, errors.New("member handler: nil balance service")
	}
	if statements == nil {
		return nil, errors.New("member handler: nil statement service")
	}
	if topups == nil {
		return nil, errors.New("member handler: nil topup repository")
	}
	if withdrawals == nil {
		return nil, errors.New("member handler: nil withdrawal repository")
	}
	return &MemberHandler{
		balance:     balance,
		statements:  statements,
		topups:      topups,
		withdrawals: withdrawals,
		auditor:     auditor,
	}, nil
}

// ServeHTTP routes member-scoped requests.
func (h *MemberHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest, ok := strings.CutPrefix(r.URL.Path, "/api/v1/members/")
	if !ok || r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	memberID := parts[0]
	if memberID == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err := auth.EnsureSelf(r.Context(), memberID); err != nil {
		writeError(w, err)
		return
	}
	switch {
	case len(parts) == 2 && parts[1] == "balance":
		h.handleBalance(w, r, memberID)
	case len(parts) == 2 && parts[1] == "topups":
		h.handleTopups(w, r, memberID)
	case len(parts) == 2 && parts[1] == "withdrawals":
		h.handleWithdrawals(w, r, memberID)
	case len(parts) == 2 && parts[1] == "statement":
		h.handleStatement(w, r, memberID)
	case len(parts) == 3 && parts[1] == "statement" && parts[2] == "export.pdf":
		h.handleExport(w, r, memberID, "pdf")
	case len(parts) == 3 && parts[1] == "statement" && parts[2] == "export.xlsx":
		h.handleExport(w, r, memberID, "xlsx")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *MemberHandler) handleBalance(w http.ResponseWriter, r *http.Request, memberID string) {
	available, err := h.balance.AvailableBalance(r.Context(), memberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"member_id": memberID,
		"available": available.String(),
	})
}

func (h *MemberHandler) handleTopups(w http.ResponseWriter, r *http.Request, memberID string) {
	list, err := h.topups.ListByMember(r.Context(), memberID)
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

func (h *MemberHandler) handleWithdrawals(w http.ResponseWriter, r *http.Request, memberID string) {
	list, err := h.withdrawals.ListByMember(r.Context(), memberID)
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

func (h *MemberHandler) handleStatement(w http.ResponseWriter, r *http.Request, memberID string) {
	stmt, err := h.loadStatement(r, memberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatementView(stmt))
}

func (h *MemberHandler) handleExport(w http.ResponseWriter, r *http.Request, memberID, format string) {
	stmt, err := h.loadStatement(r, memberID)
	if err != nil {
		writeError(w, err)
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "pdf":
		data, err = BuildStatementPDF(stmt)
		contentType = "application/pdf"
	case "xlsx":
		data, err = BuildStatementXLSX(stmt)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		http.Error(w, "statement export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logExport(r, memberID, stmt.Month, format)
}

func (h *MemberHandler) loadStatement(r *http.Request, memberID string) (*application.Statement, error) {
	month := time.Now().UTC()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			return nil, ledger.ErrNotFound
		}
		month = parsed
	}
	return h.statements.MonthlyStatement(r.Context(), memberID, month)
}

func (h *MemberHandler) logExport(r *http.Request, memberID string, month time.Time, format string) {
	if h.auditor == nil {
		return
	}
	meta, _ := json.Marshal(map[string]string{
		"format": format,
		"month":  month.Format("2006-01"),
	})
	_ = h.auditor.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "statement.export",
		ResourceType: "statement",
		ResourceID:   memberID + "/" + month.Format("2006-01"),
		MemberID:     memberID,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
		CreatedAt:    time.Now().UTC(),
	})
}
