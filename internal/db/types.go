package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents one recorded ingestion run
type Run struct {
	ID           uuid.UUID `json:"id"`
	Source       string    `json:"source"`
	DryRun       bool      `json:"dry_run"`
	State        string    `json:"state"`
	Fetched      int       `json:"fetched"`
	Processed    int       `json:"processed"`
	Saved        int       `json:"saved"`
	Skipped      int       `json:"skipped"`
	Errored      int       `json:"errored"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
}

// Duration returns the wall-clock length of the run.
func (r Run) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}
