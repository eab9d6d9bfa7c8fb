package model

// Origin identifies who produced a critique entry. Both origins participate
// identically in "is the feedback list empty" checks; the origin only changes
// how a drafter weighs the entry.
type Origin string

const (
	// OriginAI marks a critique produced by the critic capability.
	OriginAI Origin = "ai"
	// OriginHuman marks a critique carried in a human verdict.
	OriginHuman Origin = "human"
)

// Critique is a single actionable feedback entry.
type Critique struct {
	Text   string `json:"text"`
	Origin Origin `json:"origin"`
}

// State is the record passed between workflow steps. Steps never mutate a
// state in place: each step derives a new value with Clone and applies its
// writes to the copy, so a state referenced by a concurrently taken snapshot
// stays frozen.
type State struct {
	// Topic is the caller's content request, set once at task creation.
	Topic string `json:"topic"`

	// Research holds the findings produced by the research step. It is set
	// exactly once, before the first draft, and is read-only afterwards.
	Research map[string]interface{} `json:"research,omitempty"`

	// Draft is the current content draft.
	Draft string `json:"draft,omitempty"`

	// Feedback lists the outstanding critiques (AI or human). Cleared when a
	// refinement cycle resets.
	Feedback []Critique `json:"feedback,omitempty"`

	// Iteration counts completed draft passes since the last reset (task
	// creation or a human rejection). Always 0 <= Iteration <= MaxIterations.
	Iteration int `json:"iteration"`

	// MaxIterations bounds the critique/refine loop. Configured at task
	// creation, positive, immutable afterwards.
	MaxIterations int `json:"maxIterations"`

	// Approved is set once a human approves the draft; the workflow is then
	// terminal and Feedback is empty.
	Approved bool `json:"approved"`

	// ApprovalAttempts counts how many times a human verdict was recorded.
	// It only ever increases; unlike Iteration it survives resets.
	ApprovalAttempts int `json:"approvalAttempts"`
}

// NewState creates the initial state for a task.
func NewState(topic string, maxIterations int) *State {
	return &State{
		Topic:         topic,
		MaxIterations: maxIterations,
	}
}

// HasFeedback reports whether any critique is outstanding.
func (s *State) HasFeedback() bool {
	return len(s.Feedback) > 0
}

// HasHumanFeedback reports whether any outstanding critique carries a human
// origin.
func (s *State) HasHumanFeedback() bool {
	for i := range s.Feedback {
		if s.Feedback[i].Origin == OriginHuman {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the state so that a step can derive the next
// value without touching the source. The research map is copied shallowly at
// the key level; its values are treated as immutable once set.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Research != nil {
		clone.Research = make(map[string]interface{}, len(s.Research))
		for k, v := range s.Research {
			clone.Research[k] = v
		}
	}
	if s.Feedback != nil {
		clone.Feedback = append([]Critique(nil), s.Feedback...)
	}
	return &clone
}

// FeedbackTexts returns the outstanding critique texts in order.
func (s *State) FeedbackTexts() []string {
	if len(s.Feedback) == 0 {
		return nil
	}
	out := make([]string, len(s.Feedback))
	for i := range s.Feedback {
		out[i] = s.Feedback[i].Text
	}
	return out
}
