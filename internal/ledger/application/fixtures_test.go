package application

import (
	"context"
	"sync"
	"time"

	"fundledger/internal/audit"
	ledger "fundledger/internal/ledger/domain"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock {
	return &fixedClock{now: now}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fixedClock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

type fakeDirectory struct {
	inactive map[string]bool
	frozen   map[string]bool
	rates    map[string]ledger.Rate
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		inactive: make(map[string]bool),
		frozen:   make(map[string]bool),
		rates:    make(map[string]ledger.Rate),
	}
}

func (d *fakeDirectory) IsActive(ctx context.Context, memberID string) (bool, error) {
	return !d.inactive[memberID], nil
}

func (d *fakeDirectory) IsWithdrawalFrozen(ctx context.Context, memberID string) (bool, error) {
	return d.frozen[memberID], nil
}

func (d *fakeDirectory) DefaultInterestRate(ctx context.Context, memberID string) (ledger.Rate, error) {
	return d.rates[memberID], nil
}

type stubSettings struct {
	minTopup      ledger.Money
	minWithdrawal ledger.Money
	dailyCap      ledger.Money
	rate          ledger.Rate
}

func (s stubSettings) MinimumTopup() ledger.Money        { return s.minTopup }
func (s stubSettings) MinimumWithdrawal() ledger.Money   { return s.minWithdrawal }
func (s stubSettings) MaxWithdrawalPerDay() ledger.Money { return s.dailyCap }
func (s stubSettings) DefaultInterestRate() ledger.Rate  { return s.rate }

type recordingNotifier struct {
	mu          sync.Mutex
	transitions []TransitionEvent
	accruals    []AccrualEvent
}

func (n *recordingNotifier) NotifyTransition(ctx context.Context, event TransitionEvent) error {
	n.mu.Lock()
	n.transitions = append(n.transitions, event)
	n.mu.Unlock()
	return nil
}

func (n *recordingNotifier) NotifyAccrual(ctx context.Context, event AccrualEvent) error {
	n.mu.Lock()
	n.accruals = append(n.accruals, event)
	n.mu.Unlock()
	return nil
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *recordingAuditor) Log(ctx context.Context, entry audit.Entry) error {
	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()
	return nil
}
