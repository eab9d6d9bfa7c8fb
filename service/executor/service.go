// Package executor drives forward passes over the content graph. A pass
// starts at the entry step, threads an immutable state copy through research,
// draft and critique, and ends by suspending at the approval gate, completing
// or failing the task. A gate normally suspends for a human verdict; a review
// policy attached to the run may resolve it in-line instead. Resumption after
// a human verdict is a new pass scheduled by the registry; the executor
// itself never waits.
package executor

import (
	"context"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/viant/reviso/internal/clock"
	"github.com/viant/reviso/model"
	"github.com/viant/reviso/model/graph"
	"github.com/viant/reviso/model/types"
	"github.com/viant/reviso/policy"
	"github.com/viant/reviso/progress"
	"github.com/viant/reviso/service/approval"
	"github.com/viant/reviso/service/content"
	"github.com/viant/reviso/service/event"
	"github.com/viant/reviso/service/registry"
	"github.com/viant/reviso/tracing"
)

// DraftRevision is the payload of a draft progress event. Diff is empty for
// the first draft.
type DraftRevision struct {
	Draft string `json:"draft"`
	Diff  string `json:"diff,omitempty"`
}

// Option customizes the executor.
type Option func(*Service)

// WithPolicy sets the default review policy, used when the run context does
// not carry one.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// Service executes forward passes.
type Service struct {
	content  content.Service
	approver approval.Service
	feed     *event.Feed
	policy   *policy.Policy
}

// New creates an executor using the supplied collaborator, approval service
// and progress feed.
func New(collaborator content.Service, approver approval.Service, feed *event.Feed, options ...Option) *Service {
	ret := &Service{
		content:  collaborator,
		approver: approver,
		feed:     feed,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Run executes one forward pass for a running task. It returns once the task
// reaches the approval gate, completes or fails; the error reports an
// upstream or policy failure and is already folded into the task record.
func (s *Service) Run(ctx context.Context, task *registry.Task) (err error) {
	state, err := task.BeginPass()
	if err != nil {
		return err
	}
	ctx, span := tracing.StartSpan(ctx, "executor.pass", "")
	span.WithAttributes(map[string]string{"taskID": task.ID, "topic": state.Topic})
	defer func() {
		tracing.EndSpan(span, err)
	}()
	progress.UpdateCtx(ctx, progress.Delta{Passes: 1})

	step := graph.Entry(state)
	for {
		switch step {
		case graph.StepResearch:
			if state, err = s.research(ctx, task, state); err != nil {
				return s.fail(ctx, task, state, err)
			}
			step = graph.StepDraft
		case graph.StepDraft:
			if state, err = s.draft(ctx, task, state); err != nil {
				return s.fail(ctx, task, state, err)
			}
			step = graph.StepCritique
		case graph.StepCritique:
			if state, err = s.critique(ctx, task, state); err != nil {
				return s.fail(ctx, task, state, err)
			}
			step = graph.Route(state)
		case graph.StepApproval:
			var next *model.State
			if next, err = s.gate(ctx, task, state); err != nil {
				return s.fail(ctx, task, state, err)
			}
			if next == nil {
				// suspended or completed at the gate
				return nil
			}
			state = next
			step = graph.RouteAfterApproval(state)
		case graph.StepEnd:
			task.Complete(state)
			progress.UpdateCtx(ctx, progress.Delta{Completed: 1})
			s.publish(task.ID, event.PhaseCompleted, state.Iteration, "draft approved", state.Draft)
			return nil
		}
	}
}

func (s *Service) research(ctx context.Context, task *registry.Task, state *model.State) (*model.State, error) {
	ctx, span := tracing.StartSpan(ctx, "executor.research", "CLIENT")
	findings, err := s.content.Research(ctx, state.Topic)
	tracing.EndSpan(span, err)
	if err != nil {
		return state, types.NewUpstreamError("research", err)
	}
	next := state.Clone()
	next.Research = findings
	progress.UpdateCtx(ctx, progress.Delta{Researches: 1})
	s.publish(task.ID, event.PhaseResearch, next.Iteration, fmt.Sprintf("researched %q", next.Topic), nil)
	return next, nil
}

func (s *Service) draft(ctx context.Context, task *registry.Task, state *model.State) (*model.State, error) {
	ctx, span := tracing.StartSpan(ctx, "executor.draft", "CLIENT")
	draft, err := s.content.Draft(ctx, state.Topic, state.Research, state.Feedback)
	tracing.EndSpan(span, err)
	if err != nil {
		return state, types.NewUpstreamError("draft", err)
	}
	next := state.Clone()
	next.Draft = draft
	next.Iteration++

	message := "produced first draft"
	revision := &DraftRevision{Draft: draft}
	if state.Draft != "" {
		message = fmt.Sprintf("refined draft, iteration %v", next.Iteration)
		if diff, dErr := unifiedDiff(state.Draft, draft, state.Iteration, next.Iteration); dErr == nil {
			revision.Diff = diff
		}
	}
	progress.UpdateCtx(ctx, progress.Delta{Drafts: 1})
	s.publish(task.ID, event.PhaseDraft, next.Iteration, message, revision)
	return next, nil
}

func (s *Service) critique(ctx context.Context, task *registry.Task, state *model.State) (*model.State, error) {
	ctx, span := tracing.StartSpan(ctx, "executor.critique", "CLIENT")
	critiques, err := s.content.Critique(ctx, state.Draft, state.Research)
	tracing.EndSpan(span, err)
	if err != nil {
		return state, types.NewUpstreamError("critique", err)
	}
	for i := range critiques {
		if critiques[i].Origin == "" {
			critiques[i].Origin = model.OriginAI
		}
	}
	next := state.Clone()
	next.Feedback = critiques
	message := "no critiques, the draft is ready"
	if len(critiques) > 0 {
		message = fmt.Sprintf("%v critique(s) to address", len(critiques))
	}
	progress.UpdateCtx(ctx, progress.Delta{Critiques: len(critiques)})
	s.publish(task.ID, event.PhaseCritique, next.Iteration, message, next.FeedbackTexts())
	return next, nil
}

// gate commits the pass result and asks for a verdict. A nil state return
// means the pass is over: the task either suspended for a human or completed
// through an in-line policy approval. A non-nil state carries a policy
// verdict that re-enters the loop. The policy is consulted before a pending
// request is created so a blocked run leaves no orphaned request behind.
func (s *Service) gate(ctx context.Context, task *registry.Task, state *model.State) (*model.State, error) {
	verdict, resolved := s.resolve(ctx, state)
	if resolved && verdict == nil {
		return nil, fmt.Errorf("approval blocked by policy for topic %q", state.Topic)
	}

	task.AwaitApproval(state)
	request := &approval.Request{
		TaskID:    task.ID,
		Draft:     state.Draft,
		Iteration: state.Iteration,
		Attempt:   state.ApprovalAttempts + 1,
		CreatedAt: clock.Now(),
	}
	if err := s.approver.RequestApproval(ctx, request); err != nil {
		return nil, err
	}
	progress.UpdateCtx(ctx, progress.Delta{ApprovalRequests: 1})

	if !resolved {
		s.publish(task.ID, event.PhaseAwaitingApproval, state.Iteration, "awaiting human approval", state.Draft)
		return nil, nil
	}
	if _, err := s.approver.Decide(ctx, task.ID, *verdict); err != nil {
		return nil, err
	}
	_, resumed, err := task.ApplyVerdict(*verdict)
	if err != nil {
		return nil, err
	}
	if !resumed {
		snapshot := task.Snapshot()
		progress.UpdateCtx(ctx, progress.Delta{Completed: 1})
		s.publish(task.ID, event.PhaseCompleted, snapshot.Iteration, "draft approved by policy", snapshot.Draft)
		return nil, nil
	}
	// the verdict re-opened the refine loop; continue within this pass
	return task.BeginPass()
}

// resolve consults the run policy. The second return reports whether the
// gate was resolved; a resolved nil verdict means the policy blocked the run.
func (s *Service) resolve(ctx context.Context, state *model.State) (*approval.Verdict, bool) {
	p := policy.FromContext(ctx)
	if p == nil {
		p = s.policy
	}
	if p == nil {
		return nil, false
	}
	if !p.IsAllowed(state.Topic) {
		return nil, true
	}
	switch p.Mode {
	case policy.ModeAuto:
		verdict := approval.Approve()
		return &verdict, true
	case policy.ModeDeny:
		return nil, true
	case policy.ModeAsk:
		if p.Decide != nil {
			if verdict, ok := p.Decide(ctx, state.Topic, state.Draft, p); ok {
				return &verdict, true
			}
		}
	}
	return nil, false
}

// fail finishes the task; the last committed state stays inspectable.
func (s *Service) fail(ctx context.Context, task *registry.Task, state *model.State, err error) error {
	task.Fail(err)
	progress.UpdateCtx(ctx, progress.Delta{Failed: 1})
	s.publish(task.ID, event.PhaseFailed, state.Iteration, err.Error(), nil)
	return err
}

func (s *Service) publish(taskID string, phase event.Phase, iteration int, message string, payload interface{}) {
	s.feed.Publish(&event.Progress{
		TaskID:    taskID,
		Phase:     phase,
		Iteration: iteration,
		Message:   message,
		Payload:   payload,
		CreatedAt: clock.Now(),
	})
}

func unifiedDiff(before, after string, fromIteration, toIteration int) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: fmt.Sprintf("draft@%v", fromIteration),
		ToFile:   fmt.Sprintf("draft@%v", toIteration),
		Context:  2,
	})
}
