package ledger

import "time"

// AccrualRunStatus is the lifecycle state of a monthly accrual run.
type AccrualRunStatus string

const (
	AccrualRunRunning   AccrualRunStatus = "running"
	AccrualRunSucceeded AccrualRunStatus = "succeeded"
	AccrualRunFailed    AccrualRunStatus = "failed"
)

// AccrualItemError records a single investment that failed inside a run.
type AccrualItemError struct {
	InvestmentID string `json:"investment_id"`
	Error        string `json:"error"`
}

// AccrualRun is the persisted record of one monthly accrual batch.
type AccrualRun struct {
	ID            string
	Reference     string
	Status        AccrualRunStatus
	Month         time.Time
	Processed     int
	Skipped       int
	TotalInterest Money
	Errors        []AccrualItemError
	StartedAt     time.Time
	FinishedAt    *time.Time
}
