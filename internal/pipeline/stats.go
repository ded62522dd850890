package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// State is the orchestrator's position in a run.
type State string

const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateProcessing State = "processing"
	StateDone       State = "done"
	StateFatalError State = "fatal_error"
)

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFatalError
}

// Stats are the counters of a single run. Each run owns its Stats value.
type Stats struct {
	RunID     uuid.UUID
	Source    string
	DryRun    bool
	State     State
	Fetched   int
	Processed int
	Saved     int
	Skipped   int
	Errored   int
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration is the wall-clock time of the run, or zero while it is running.
func (s *Stats) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// SuccessRate is saved / max(fetched, 1).
func (s *Stats) SuccessRate() float64 {
	return float64(s.Saved) / float64(max(s.Fetched, 1))
}

// Totals aggregate several runs.
type Totals struct {
	Sources          int
	SourcesCompleted int
	Fetched          int
	Saved            int
	Errored          int
}

// SuccessRate is saved / max(fetched, 1) across all runs.
func (t *Totals) SuccessRate() float64 {
	return float64(t.Saved) / float64(max(t.Fetched, 1))
}
