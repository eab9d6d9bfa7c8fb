// Package event carries progress notifications from the executor to any
// number of per-task observers. Delivery is ordered and best-effort: a slow
// observer may miss events but never sees them out of order, and a failed
// delivery never aborts the run.
package event

import "time"

// Phase names the workflow phase a progress event reports.
type Phase string

const (
	PhaseResearch         Phase = "research"
	PhaseDraft            Phase = "draft"
	PhaseCritique         Phase = "critique"
	PhaseAwaitingApproval Phase = "awaitingApproval"
	PhaseCompleted        Phase = "completed"
	PhaseFailed           Phase = "failed"
)

// Terminal reports whether the phase ends a forward pass; an observer stream
// closes when it sees a terminal phase.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseAwaitingApproval, PhaseCompleted, PhaseFailed:
		return true
	}
	return false
}

// Progress is the outward notification published once per executed phase.
type Progress struct {
	TaskID    string      `json:"taskID"`
	Phase     Phase       `json:"phase"`
	Iteration int         `json:"iteration"`
	Message   string      `json:"message,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	CreatedAt time.Time   `json:"createdAt,omitempty"`
}
