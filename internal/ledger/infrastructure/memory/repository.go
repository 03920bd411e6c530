package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	ledger "fundledger/internal/ledger/domain"
)

// InvestmentRepository is an in-memory investment store.
type InvestmentRepository struct {
	mu          sync.RWMutex
	data        map[string]*ledger.Investment
	ownerActive func(memberID string) bool
}

// InvestmentOption customizes the repository.
type InvestmentOption func(*InvestmentRepository)

// WithOwnerFilter supplies the owner-activity predicate used by
// ListAccruable. Without it every owner counts as active.
func WithOwnerFilter(f func(memberID string) bool) InvestmentOption {
	return func(r *InvestmentRepository) { r.ownerActive = f }
}

// NewInvestmentRepository constructs a repository.
func NewInvestmentRepository(opts ...InvestmentOption) *InvestmentRepository {
	r := &InvestmentRepository{data: make(map[string]*ledger.Investment)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetByID loads an investment.
func (r *InvestmentRepository) GetByID(ctx context.Context, id string) (*ledger.Investment, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return cloneInvestment(inv), nil
}

// ListByMember lists a member's investments.
func (r *InvestmentRepository) ListByMember(ctx context.Context, memberID string) ([]ledger.Investment, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []ledger.Investment
	for _, inv := range r.data {
		if inv.MemberID == memberID {
			result = append(result, *cloneInvestment(inv))
		}
	}
	sortInvestments(result)
	return result, nil
}

// ListAccruable lists active investments whose owner is active.
func (r *InvestmentRepository) ListAccruable(ctx context.Context) ([]ledger.Investment, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []ledger.Investment
	for _, inv := range r.data {
		if inv.Status != ledger.InvestmentActive {
			continue
		}
		if r.ownerActive != nil && !r.ownerActive(inv.MemberID) {
			continue
		}
		result = append(result, *cloneInvestment(inv))
	}
	sortInvestments(result)
	return result, nil
}

// CreditInterest adds interest under the calendar-month guard.
func (r *InvestmentRepository) CreditInterest(ctx context.Context, id string, interest ledger.Money, accruedAt time.Time) (bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.data[id]
	if !ok {
		return false, ledger.ErrNotFound
	}
	if inv.AccruedInMonth(accruedAt) {
		return false, nil
	}
	inv.InterestEarned += interest
	at := accruedAt.UTC()
	inv.LastAccrualAt = &at
	inv.UpdatedAt = at
	return true, nil
}

// UpdateStatus transitions status with a compare-and-swap guard.
func (r *InvestmentRepository) UpdateStatus(ctx context.Context, id string, from, to ledger.InvestmentStatus) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.data[id]
	if !ok {
		return ledger.ErrNotFound
	}
	if inv.Status != from {
		return ledger.ErrStatusConflict
	}
	inv.Status = to
	inv.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InvestmentRepository) insert(inv *ledger.Investment) {
	r.mu.Lock()
	r.data[inv.ID] = cloneInvestment(inv)
	r.mu.Unlock()
}

// TopupRepository is an in-memory top-up request store. Approval inserts
// the spawned investment into the investment repository under the same
// logical transaction.
type TopupRepository struct {
	mu          sync.RWMutex
	data        map[string]*ledger.TopupRequest
	investments *InvestmentRepository
}

// NewTopupRepository constructs a repository.
func NewTopupRepository(investments *InvestmentRepository) *TopupRepository {
	return &TopupRepository{
		data:        make(map[string]*ledger.TopupRequest),
		investments: investments,
	}
}

// Create stores a new request.
func (r *TopupRepository) Create(ctx context.Context, req *ledger.TopupRequest) error {
	_ = ctx
	if req == nil {
		return ledger.ErrNilRequest
	}
	r.mu.Lock()
	r.data[req.ID] = cloneTopup(req)
	r.mu.Unlock()
	return nil
}

// GetByID loads a request.
func (r *TopupRepository) GetByID(ctx context.Context, id string) (*ledger.TopupRequest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return cloneTopup(req), nil
}

// ListByMember lists a member's requests.
func (r *TopupRepository) ListByMember(ctx context.Context, memberID string) ([]ledger.TopupRequest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []ledger.TopupRequest
	for _, req := range r.data {
		if req.MemberID == memberID {
			result = append(result, *cloneTopup(req))
		}
	}
	sortTopups(result)
	return result, nil
}

// ListByStatus lists requests in a given status.
func (r *TopupRepository) ListByStatus(ctx context.Context, status ledger.TopupStatus, limit int) ([]ledger.TopupRequest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []ledger.TopupRequest
	for _, req := range r.data {
		if req.Status == status {
			result = append(result, *cloneTopup(req))
		}
	}
	sortTopups(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Approve transitions to approved and creates the investment.
func (r *TopupRepository) Approve(ctx context.Context, req *ledger.TopupRequest, inv *ledger.Investment) error {
	_ = ctx
	if req == nil || inv == nil {
		return ledger.ErrNilRequest
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.data[req.ID]
	if !ok {
		return ledger.ErrNotFound
	}
	if stored.Status != ledger.TopupPending {
		return ledger.ErrStatusConflict
	}
	r.data[req.ID] = cloneTopup(req)
	if r.investments != nil {
		r.investments.insert(inv)
	}
	return nil
}

// Reject transitions to rejected.
func (r *TopupRepository) Reject(ctx context.Context, req *ledger.TopupRequest) error {
	_ = ctx
	if req == nil {
		return ledger.ErrNilRequest
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.data[req.ID]
	if !ok {
		return ledger.ErrNotFound
	}
	if stored.Status != ledger.TopupPending {
		return ledger.ErrStatusConflict
	}
	r.data[req.ID] = cloneTopup(req)
	return nil
}

// WithdrawalRepository is an in-memory withdrawal request store.
type WithdrawalRepository struct {
	mu   sync.RWMutex
	data map[string]*ledger.WithdrawalRequest
}

// NewWithdrawalRepository constructs a repository.
func NewWithdrawalRepository() *WithdrawalRepository {
	return &WithdrawalRepository{data: make(map[string]*ledger.WithdrawalRequest)}
}

// Create stores a new request.
func (r *WithdrawalRepository) Create(ctx context.Context, req *ledger.WithdrawalRequest) error {
	_ = ctx
	if req == nil {
		return ledger.ErrNilRequest
	}
	r.mu.Lock()
	r.data[req.ID] = cloneWithdrawal(req)
	r.mu.Unlock()
	return nil
}

// GetByID loads a request.
func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*ledger.WithdrawalRequest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return cloneWithdrawal(req), nil
}

// ListByMember lists a member's requests.
func (r *WithdrawalRepository) ListByMember(ctx context.Context, memberID string) ([]ledger.WithdrawalRequest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []ledger.WithdrawalRequest
	for _, req := range r.data {
		if req.MemberID == memberID {
			result = append(result, *cloneWithdrawal(req))
		}
	}
	sortWithdrawals(result)
	return result, nil
}

// ListByStatus lists requests in a given status.
func (r *WithdrawalRepository) ListByStatus(ctx context.Context, status ledger.WithdrawalStatus, limit int) ([]ledger.WithdrawalRequest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []ledger.WithdrawalRequest
	for _, req := range r.data {
		if req.Status == status {
			result = append(result, *cloneWithdrawal(req))
		}
	}
	sortWithdrawals(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Transition writes the request guarded by the observed status.
func (r *WithdrawalRepository) Transition(ctx context.Context, req *ledger.WithdrawalRequest, observed ledger.WithdrawalStatus) error {
	_ = ctx
	if req == nil {
		return ledger.ErrNilRequest
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.data[req.ID]
	if !ok {
		return ledger.ErrNotFound
	}
	if stored.Status != observed {
		return ledger.ErrStatusConflict
	}
	r.data[req.ID] = cloneWithdrawal(req)
	return nil
}

// SumCreatedBetween totals balance-holding withdrawals created in [from, to).
func (r *WithdrawalRepository) SumCreatedBetween(ctx context.Context, memberID string, from, to time.Time) (ledger.Money, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total ledger.Money
	for _, req := range r.data {
		if req.MemberID != memberID || !req.HoldsBalance() {
			continue
		}
		created := req.CreatedAt.UTC()
		if !created.Before(from.UTC()) && created.Before(to.UTC()) {
			total += req.Amount
		}
	}
	return total, nil
}

// AccrualRunRepository is an in-memory accrual run store.
type AccrualRunRepository struct {
	mu   sync.RWMutex
	runs []*ledger.AccrualRun
}

// NewAccrualRunRepository constructs a repository.
func NewAccrualRunRepository() *AccrualRunRepository {
	return &AccrualRunRepository{}
}

// Create stores a new run record.
func (r *AccrualRunRepository) Create(ctx context.Context, run *ledger.AccrualRun) error {
	_ = ctx
	if run == nil {
		return ledger.ErrNilRequest
	}
	r.mu.Lock()
	r.runs = append(r.runs, cloneRun(run))
	r.mu.Unlock()
	return nil
}

// Finish overwrites the run record with its final state.
func (r *AccrualRunRepository) Finish(ctx context.Context, run *ledger.AccrualRun) error {
	_ = ctx
	if run == nil {
		return ledger.ErrNilRequest
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, stored := range r.runs {
		if stored.ID == run.ID {
			r.runs[i] = cloneRun(run)
			return nil
		}
	}
	return ledger.ErrNotFound
}

// List returns runs, newest first.
func (r *AccrualRunRepository) List(ctx context.Context, limit int) ([]ledger.AccrualRun, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]ledger.AccrualRun, 0, len(r.runs))
	for i := len(r.runs) - 1; i >= 0; i-- {
		result = append(result, *cloneRun(r.runs[i]))
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func cloneInvestment(inv *ledger.Investment) *ledger.Investment {
	copy := *inv
	if inv.LastAccrualAt != nil {
		at := *inv.LastAccrualAt
		copy.LastAccrualAt = &at
	}
	return &copy
}

func cloneTopup(req *ledger.TopupRequest) *ledger.TopupRequest {
	copy := *req
	if req.ProcessedAt != nil {
		at := *req.ProcessedAt
		copy.ProcessedAt = &at
	}
	return &copy
}

func cloneWithdrawal(req *ledger.WithdrawalRequest) *ledger.WithdrawalRequest {
	copy := *req
	if req.ProcessedAt != nil {
		at := *req.ProcessedAt
		copy.ProcessedAt = &at
	}
	return &copy
}

func cloneRun(run *ledger.AccrualRun) *ledger.AccrualRun {
	copy := *run
	if run.FinishedAt != nil {
		at := *run.FinishedAt
		copy.FinishedAt = &at
	}
	copy.Errors = append([]ledger.AccrualItemError(nil), run.Errors...)
	return &copy
}

func sortInvestments(list []ledger.Investment) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

func sortTopups(list []ledger.TopupRequest) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

func sortWithdrawals(list []ledger.WithdrawalRequest) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
