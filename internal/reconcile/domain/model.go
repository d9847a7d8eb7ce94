package domain

import (
	"context"
	"errors"

	providerdomain "github.com/smallbiznis/paysync/internal/provider/domain"
)

// RecordError keeps the external id of a failed record together with the
// reason, so operators can re-run or inspect specific records.
type RecordError struct {
	ExternalID string `json:"external_id"`
	Reason     string `json:"reason"`
}

// RunSummary is the outcome of one reconciliation run.
type RunSummary struct {
	Provider  string                `json:"provider"`
	Window    providerdomain.Window `json:"window"`
	Created   int                   `json:"created"`
	Updated   int                   `json:"updated"`
	Unchanged int                   `json:"unchanged"`
	Failed    int                   `json:"failed"`
	Errors    []RecordError         `json:"errors,omitempty"`

	// Incomplete marks a run that stopped before exhausting the window
	// (page fetch failure or deadline); the same window must be re-run.
	Incomplete       bool   `json:"incomplete"`
	IncompleteReason string `json:"incomplete_reason,omitempty"`
}

// Ok reports whether the run completed with zero per-record failures.
func (s RunSummary) Ok() bool {
	return s.Failed == 0 && !s.Incomplete
}

type Service interface {
	Reconcile(ctx context.Context, window providerdomain.Window) (RunSummary, error)
}

var ErrRunIncomplete = errors.New("run_incomplete")
