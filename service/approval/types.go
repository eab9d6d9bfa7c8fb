package approval

import (
	"strings"
	"time"

	"github.com/viant/reviso/model/types"
)

// VerdictKind enumerates the three reviewer responses.
type VerdictKind string

const (
	VerdictApprove  VerdictKind = "approve"
	VerdictReject   VerdictKind = "reject"
	VerdictFeedback VerdictKind = "feedback"
)

// Verdict is a reviewer's response to a pending approval request. Feedback
// text is meaningful only for VerdictFeedback.
type Verdict struct {
	Kind     VerdictKind `json:"kind"`
	Feedback string      `json:"feedback,omitempty"`
}

// Approve returns an approving verdict.
func Approve() Verdict { return Verdict{Kind: VerdictApprove} }

// Reject returns a rejecting verdict with no targeted guidance.
func Reject() Verdict { return Verdict{Kind: VerdictReject} }

// WithFeedback returns a feedback verdict carrying the reviewer's guidance.
func WithFeedback(text string) Verdict {
	return Verdict{Kind: VerdictFeedback, Feedback: text}
}

// Validate rejects unknown kinds and feedback verdicts with no text.
func (v Verdict) Validate() error {
	switch v.Kind {
	case VerdictApprove, VerdictReject:
		return nil
	case VerdictFeedback:
		if strings.TrimSpace(v.Feedback) == "" {
			return types.NewInvalidInputError("feedback verdict requires feedback text")
		}
		return nil
	}
	return types.NewInvalidInputError("unknown verdict kind %v", string(v.Kind))
}

// Event envelope published on the approval queue.
type Event struct {
	Topic string      `json:"topic"`
	Data  interface{} `json:"data"` // *Request | *Decision
}

// Standard event topics.
const (
	TopicRequestCreated  = "request.created"
	TopicDecisionCreated = "decision.created"
)

// Request represents a pending request for human approval of a draft. A task
// has at most one pending request at a time; re-requesting overwrites the
// previous copy.
type Request struct {
	TaskID    string    `json:"taskId"`
	Draft     string    `json:"draft"`
	Iteration int       `json:"iteration"`
	Attempt   int       `json:"attempt"` // 1-based approval attempt
	CreatedAt time.Time `json:"createdAt"`
}

// Decision records a reviewer verdict on a request.
type Decision struct {
	TaskID    string    `json:"taskId"`
	Verdict   Verdict   `json:"verdict"`
	DecidedAt time.Time `json:"decidedAt"`
}
