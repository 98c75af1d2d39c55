package models

import (
	"time"

	"github.com/google/uuid"
)

// Room represents a collaboration space with an ordered message log
// and a single mutable rolling summary.
type Room struct {
	ID             uuid.UUID `json:"id"`
	OrgID          uuid.UUID `json:"org_id"`
	Name           string    `json:"name"`
	ProjectSummary string    `json:"project_summary,omitempty"`
	MemorySummary  string    `json:"memory_summary,omitempty"`
	SummaryVersion int64     `json:"summary_version"`
	SummaryUpdates int64     `json:"summary_updates"`
	CreatedAt      time.Time `json:"created_at"`
}
