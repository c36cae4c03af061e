package release

import "time"

// HistoryEntry records the outcome of one update step within a run.
type HistoryEntry struct {
	// RunID groups the steps applied by one manager run.
	RunID string
	// Version is the target version of the step.
	Version string
	// Success mirrors Result.Success.
	Success bool
	// Message mirrors Result.Message.
	Message string
	// AppliedAt is when the step finished.
	AppliedAt time.Time
}
