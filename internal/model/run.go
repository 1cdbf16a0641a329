package model

import "time"

// RunStatus is the coarse pipeline state exposed to observers. The
// pipeline writes it and never reads it back.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusGenerating RunStatus = "generating"
	RunStatusVerifying  RunStatus = "verifying"
	RunStatusSaving     RunStatus = "saving"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusError      RunStatus = "error"
)

// Terminal reports whether no further status transitions are possible.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusError
}

// Run is one tracked end-to-end execution for a single order.
type Run struct {
	ID        string    `json:"id"`
	OrderCode string    `json:"order_code"`
	Customer  Customer  `json:"customer"`
	Status    RunStatus `json:"status"`
	Message   string    `json:"message,omitempty"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunResult is the persisted outcome of a completed run.
type RunResult struct {
	Document      string          `json:"document"`
	Sections      []SectionResult `json:"sections"`
	VerifySummary VerifySummary   `json:"verify_summary"`
	TotalUsage    TokenUsage      `json:"total_usage"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// VerifySummary is the per-category mismatch tally stored with a run.
type VerifySummary struct {
	TotalErrors int `json:"totalErrors"`
	AutoFixed   int `json:"autoFixed"`
	NeedsReview int `json:"needsReview"`
}
