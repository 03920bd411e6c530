package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"fundledger/internal/auth"
	"fundledger/internal/ledger/application"
	ledger "fundledger/internal/ledger/domain"
	"fundledger/internal/ledger/infrastructure/memory"
)

type httpFixture struct {
	topupHandler      *TopupHandler
	withdrawalHandler *WithdrawalHandler
	memberHandler     *MemberHandler
	accrualHandler    *AccrualHandler
	investmentHandler *InvestmentHandler
}

type allowAllDirectory struct{}

func (allowAllDirectory) IsActive(ctx context.Context, memberID string) (bool, error) {
	return true, nil
}

func (allowAllDirectory) IsWithdrawalFrozen(ctx context.Context, memberID string) (bool, error) {
	return false, nil
}

func (allowAllDirectory) DefaultInterestRate(ctx context.Context, memberID string) (ledger.Rate, error) {
	return 0, nil
}

type fixedSettings struct{}

func (fixedSettings) MinimumTopup() ledger.Money        { return 10000 }
func (fixedSettings) MinimumWithdrawal() ledger.Money   { return 50000 }
func (fixedSettings) MaxWithdrawalPerDay() ledger.Money { return 0 }
func (fixedSettings) DefaultInterestRate() ledger.Rate  { return 500 }

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()
	investments := memory.NewInvestmentRepository()
	topups := memory.NewTopupRepository(investments)
	withdrawals := memory.NewWithdrawalRepository()
	runs := memory.NewAccrualRunRepository()
	log := zerolog.Nop()

	balance, err := application.NewBalanceService(investments, withdrawals)
	if err != nil {
		t.Fatalf("balance service: %v", err)
	}
	topupFlow, err := application.NewTopupWorkflow(topups, allowAllDirectory{}, fixedSettings{}, nil, nil, nil, log)
	if err != nil {
		t.Fatalf("topup workflow: %v", err)
	}
	withdrawalFlow, err := application.NewWithdrawalWorkflow(withdrawals, balance, allowAllDirectory{}, fixedSettings{}, nil, nil, nil, log)
	if err != nil {
		t.Fatalf("withdrawal workflow: %v", err)
	}
	engine, err := application.NewAccrualEngine(investments, runs, nil, nil, log)
	if err != nil {
		t.Fatalf("accrual engine: %v", err)
	}
	statements, err := application.NewStatementService(investments, topups, withdrawals, nil)
	if err != nil {
		t.Fatalf("statement service: %v", err)
	}
	investmentSvc, err := application.NewInvestmentService(investments, nil, nil, log)
	if err != nil {
		t.Fatalf("investment service: %v", err)
	}

	topupHandler, err := NewTopupHandler(topupFlow, topups)
	if err != nil {
		t.Fatalf("topup handler: %v", err)
	}
	withdrawalHandler, err := NewWithdrawalHandler(withdrawalFlow, withdrawals)
	if err != nil {
		t.Fatalf("withdrawal handler: %v", err)
	}
	memberHandler, err := NewMemberHandler(balance, statements, topups, withdrawals, nil)
	if err != nil {
		t.Fatalf("member handler: %v", err)
	}
	accrualHandler, err := NewAccrualHandler(engine, runs)
	if err != nil {
		t.Fatalf("accrual handler: %v", err)
	}
	investmentHandler, err := NewInvestmentHandler(investmentSvc)
	if err != nil {
		t.Fatalf("investment handler: %v", err)
	}
	return &httpFixture{
		topupHandler:      topupHandler,
		withdrawalHandler: withdrawalHandler,
		memberHandler:     memberHandler,
		accrualHandler:    accrualHandler,
		investmentHandler: investmentHandler,
	}
}

func asMember(r *http.Request, memberID string) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), auth.RoleMember, memberID))
}

func asAdmin(r *http.Request, adminID string) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), auth.RoleAdmin, adminID))
}

func TestTopupSubmitAndApproveHTTP(t *testing.T) {
	f := newHTTPFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/topups", strings.NewReader(`{"amount":"1000.00","proof_ref":"slip-1"}`))
	resp := httptest.NewRecorder()
	f.topupHandler.ServeHTTP(resp, asMember(req, "member-1"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body %s", resp.Code, resp.Body.String())
	}
	var created topupView
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Amount != "1000.00" || created.Status != "pending" {
		t.Fatalf("unexpected view: %+v", created)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/topups/"+created.ID+"/approve", strings.NewReader(`{"remarks":"ok"}`))
	resp = httptest.NewRecorder()
	f.topupHandler.ServeHTTP(resp, asAdmin(req, "admin-1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body %s", resp.Code, resp.Body.String())
	}

	// Second approval conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/topups/"+created.ID+"/approve", strings.NewReader(`{}`))
	resp = httptest.NewRecorder()
	f.topupHandler.ServeHTTP(resp, asAdmin(req, "admin-1"))
	if resp.Code != http.StatusConflict {
		t.Fatalf("double approve status = %d, want 409", resp.Code)
	}

	// Balance shows the approved principal.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/members/member-1/balance", nil)
	resp = httptest.NewRecorder()
	f.memberHandler.ServeHTTP(resp, asMember(req, "member-1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("balance status = %d", resp.Code)
	}
	var balance map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &balance); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if balance["available"] != "1000.00" {
		t.Fatalf("available = %q, want 1000.00", balance["available"])
	}
}

func TestInvestmentStatusHTTP(t *testing.T) {
	f := newHTTPFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/topups", strings.NewReader(`{"amount":"1000.00"}`))
	resp := httptest.NewRecorder()
	f.topupHandler.ServeHTTP(resp, asMember(req, "member-1"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("submit status = %d", resp.Code)
	}
	var created topupView
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/api/v1/topups/"+created.ID+"/approve", strings.NewReader(`{}`))
	resp = httptest.NewRecorder()
	f.topupHandler.ServeHTTP(resp, asAdmin(req, "admin-1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("approve status = %d", resp.Code)
	}
	var inv investmentView
	if err := json.Unmarshal(resp.Body.Bytes(), &inv); err != nil {
		t.Fatalf("decode investment: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/investments/"+inv.ID+"/status", strings.NewReader(`{"status":"paused"}`))
	resp = httptest.NewRecorder()
	f.investmentHandler.ServeHTTP(resp, asAdmin(req, "admin-1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("pause status = %d, body %s", resp.Code, resp.Body.String())
	}
	var paused investmentView
	if err := json.Unmarshal(resp.Body.Bytes(), &paused); err != nil {
		t.Fatalf("decode paused: %v", err)
	}
	if paused.Status != "paused" {
		t.Fatalf("status = %q, want paused", paused.Status)
	}

	// Repeating the transition conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/investments/"+inv.ID+"/status", strings.NewReader(`{"status":"paused"}`))
	resp = httptest.NewRecorder()
	f.investmentHandler.ServeHTTP(resp, asAdmin(req, "admin-1"))
	if resp.Code != http.StatusConflict {
		t.Fatalf("double pause status = %d, want 409", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/investments/"+inv.ID+"/status", strings.NewReader(`{"status":"liquidated"}`))
	resp = httptest.NewRecorder()
	f.investmentHandler.ServeHTTP(resp, asAdmin(req, "admin-1"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad status = %d, want 400", resp.Code)
	}
}

func TestTopupSubmitBelowMinimumHTTP(t *testing.T) {
	f := newHTTPFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/topups", strings.NewReader(`{"amount":"50.00"}`))
	resp := httptest.NewRecorder()
	f.topupHandler.ServeHTTP(resp, asMember(req, "member-1"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestWithdrawalInsufficientBalanceHTTP(t *testing.T) {
	f := newHTTPFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals", strings.NewReader(`{"amount":"600.00","destination_type":"e_wallet"}`))
	resp := httptest.NewRecorder()
	f.withdrawalHandler.ServeHTTP(resp, asMember(req, "member-1"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestMemberOwnershipHTTP(t *testing.T) {
	f := newHTTPFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/members/member-2/balance", nil)
	resp := httptest.NewRecorder()
	f.memberHandler.ServeHTTP(resp, asMember(req, "member-1"))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("cross-member read status = %d, want 403", resp.Code)
	}

	// Admins may read any member.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/members/member-2/balance", nil)
	resp = httptest.NewRecorder()
	f.memberHandler.ServeHTTP(resp, asAdmin(req, "admin-1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("admin read status = %d, want 200", resp.Code)
	}
}

func TestAccrualRunHTTP(t *testing.T) {
	f := newHTTPFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accrual/run", nil)
	resp := httptest.NewRecorder()
	f.accrualHandler.ServeHTTP(resp, asAdmin(req, "admin-1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("run status = %d, body %s", resp.Code, resp.Body.String())
	}
	var run accrualRunView
	if err := json.Unmarshal(resp.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.Status != "succeeded" {
		t.Fatalf("run status = %q, want succeeded", run.Status)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/accrual/runs", nil)
	resp = httptest.NewRecorder()
	f.accrualHandler.ServeHTTP(resp, asAdmin(req, "admin-1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("list status = %d", resp.Code)
	}
	var runs []accrualRunView
	if err := json.Unmarshal(resp.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
}

func TestStatementExportHTTP(t *testing.T) {
	f := newHTTPFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/members/member-1/statement/export.pdf", nil)
	resp := httptest.NewRecorder()
	f.memberHandler.ServeHTTP(resp, asMember(req, "member-1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("export status = %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q, want application/pdf", ct)
	}
	if resp.Body.Len() == 0 {
		t.Fatal("empty pdf body")
	}
}
