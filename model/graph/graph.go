// Package graph defines the fixed step graph of a content-refinement run and
// the typed routing predicates that pick the next step from the workflow
// state. Routing is a pure function of state; the executor owns all side
// effects.
package graph

import "github.com/viant/reviso/model"

// Step names a node of the workflow graph.
type Step string

const (
	// StepResearch produces the research findings (writes research only).
	StepResearch Step = "research"
	// StepDraft creates or refines the draft (reads research, feedback,
	// iteration; writes draft and increments iteration).
	StepDraft Step = "draft"
	// StepCritique analyses the draft (reads draft, research; writes feedback).
	StepCritique Step = "critique"
	// StepApproval suspends the run for a human verdict.
	StepApproval Step = "approval"
	// StepEnd terminates the run.
	StepEnd Step = "end"
)

// Entry returns the first step of a forward pass. Research runs exactly once
// per task; a pass resumed after a human verdict starts directly at the draft
// step.
func Entry(s *model.State) Step {
	if s.Research == nil {
		return StepResearch
	}
	return StepDraft
}

// Route picks the step following critique. The branches are evaluated in
// priority order:
//
//  1. approved                                  -> end
//  2. no feedback after at least one draft      -> approval
//  3. feedback outstanding, iterations left     -> draft (refine)
//  4. iteration bound reached                   -> approval (forced decision)
//  5. fallback                                  -> approval
//
// Branch 5 is unreachable when the run enters through draft (iteration > 0 by
// the time critique routes); it is kept as a safe default rather than a
// designed transition. Branch 2 requires iteration > 0 so that an empty
// feedback list at iteration 0 can never skip drafting.
func Route(s *model.State) Step {
	switch {
	case s.Approved:
		return StepEnd
	case !s.HasFeedback() && s.Iteration > 0:
		return StepApproval
	case s.HasFeedback() && s.Iteration < s.MaxIterations:
		return StepDraft
	case s.Iteration >= s.MaxIterations:
		return StepApproval
	default:
		return StepApproval
	}
}

// RouteAfterApproval picks the step following a human verdict: an approved
// state terminates, anything else re-enters the refine loop at draft.
func RouteAfterApproval(s *model.State) Step {
	if s.Approved {
		return StepEnd
	}
	return StepDraft
}
