package domain

import (
	"time"
)

type Outcome string

const (
	OutcomeSubmitted Outcome = "submitted"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeDryRun    Outcome = "dry_run"
	OutcomeFailed    Outcome = "failed"
)

// CycleReport summarises one loop iteration.
type CycleReport struct {
	ID          string            `json:"id"`
	Pair        string            `json:"pair"`
	Stake       uint64            `json:"stake"`
	QuotedOut   uint64            `json:"quotedOut"`
	Profit      int64             `json:"profit"`
	Tip         uint64            `json:"tip"`
	Outcome     Outcome           `json:"outcome"`
	Stage       string            `json:"stage,omitempty"`
	Error       string            `json:"error,omitempty"`
	BundleID    string            `json:"bundleId,omitempty"`
	Signature   string            `json:"signature,omitempty"`
	ContextSlot uint64            `json:"contextSlot,omitempty"`
	Simulation  *SimulationResult `json:"simulation,omitempty"`
	StartedAt   time.Time         `json:"startedAt"`
	DurationMs  int64             `json:"durationMs"`
}

// CycleStats aggregates reports by outcome.
type CycleStats struct {
	Total       int             `json:"total"`
	ByOutcome   map[Outcome]int `json:"byOutcome"`
	BestProfit  int64           `json:"bestProfit"`
	TipsPaid    uint64          `json:"tipsPaid"`
	LastCycleAt *time.Time      `json:"lastCycleAt,omitempty"`
}
