package approval

import (
	"github.com/viant/reviso/model"
)

// RejectGuidance is the generic improvement request recorded when a reviewer
// rejects a draft without targeted feedback.
const RejectGuidance = "Human reviewer requested general improvements to the overall post quality and effectiveness."

// Apply folds a verdict into a workflow state and returns the updated copy;
// the input state is not modified. Every verdict counts as one approval
// attempt. Approval marks the state approved and clears outstanding feedback;
// reject and feedback verdicts replace the feedback with a single critique
// tagged human and restart the refine loop from iteration zero. Feedback text
// is stored verbatim; the origin tag is what marks it as reviewer-authored.
func Apply(verdict Verdict, state *model.State) *model.State {
	next := state.Clone()
	next.ApprovalAttempts++
	switch verdict.Kind {
	case VerdictApprove:
		next.Approved = true
		next.Feedback = nil
	case VerdictReject:
		next.Approved = false
		next.Feedback = []model.Critique{{Text: RejectGuidance, Origin: model.OriginHuman}}
		next.Iteration = 0
	case VerdictFeedback:
		next.Approved = false
		next.Feedback = []model.Critique{{Text: verdict.Feedback, Origin: model.OriginHuman}}
		next.Iteration = 0
	}
	return next
}
