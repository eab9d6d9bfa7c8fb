package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/reviso/model"
	"github.com/viant/reviso/model/types"
	"github.com/viant/reviso/policy"
	"github.com/viant/reviso/service/approval"
	apmemory "github.com/viant/reviso/service/approval/memory"
	"github.com/viant/reviso/service/content/template"
	"github.com/viant/reviso/service/event"
	"github.com/viant/reviso/service/messaging/memory"
	"github.com/viant/reviso/service/registry"
)

// stubContent lets each test script the collaborator behaviour.
type stubContent struct {
	researchCalls int
	research      func(topic string) (map[string]interface{}, error)
	draft         func(topic string, feedback []model.Critique) (string, error)
	critique      func(draft string) ([]model.Critique, error)
}

func (s *stubContent) Research(_ context.Context, topic string) (map[string]interface{}, error) {
	s.researchCalls++
	if s.research != nil {
		return s.research(topic)
	}
	return map[string]interface{}{"topic": topic}, nil
}

func (s *stubContent) Draft(_ context.Context, topic string, _ map[string]interface{}, feedback []model.Critique) (string, error) {
	if s.draft != nil {
		return s.draft(topic, feedback)
	}
	return "draft of " + topic, nil
}

func (s *stubContent) Critique(_ context.Context, draft string, _ map[string]interface{}) ([]model.Critique, error) {
	if s.critique != nil {
		return s.critique(draft)
	}
	return nil, nil
}

type harness struct {
	registry *registry.Service
	approver approval.Service
	feed     *event.Feed
	executor *Service
}

func newHarness(collaborator *stubContent) *harness {
	feed := event.NewFeed(64)
	approver := apmemory.New()
	reg := registry.New(memory.NewQueue[registry.Run](memory.DefaultConfig()), approver, feed)
	var exec *Service
	if collaborator != nil {
		exec = New(collaborator, approver, feed)
	} else {
		exec = New(template.New(), approver, feed)
	}
	return &harness{registry: reg, approver: approver, feed: feed, executor: exec}
}

func (h *harness) startTask(t *testing.T, topic string, maxIterations int) *registry.Task {
	ctx := context.Background()
	snapshot, err := h.registry.Create(ctx, topic, maxIterations)
	assert.Nil(t, err)
	assert.Nil(t, h.registry.Start(ctx, snapshot.ID))
	task, err := h.registry.Lookup(ctx, snapshot.ID)
	assert.Nil(t, err)
	return task
}

func drainPhases(sub *event.Subscription) []event.Phase {
	var phases []event.Phase
	for {
		select {
		case progress := <-sub.Events():
			phases = append(phases, progress.Phase)
			if progress.Phase.Terminal() {
				return phases
			}
		default:
			return phases
		}
	}
}

func TestRunConvergesToGate(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()
	task := h.startTask(t, "marketing post about our new coffee shop opening", 3)
	sub := h.feed.Subscribe(task.ID)
	defer sub.Close()

	assert.Nil(t, h.executor.Run(ctx, task))

	snapshot := task.Snapshot()
	assert.EqualValues(t, registry.StatusAwaitingApproval, snapshot.Status)
	// first draft drew two critiques, the refined draft cleared them
	assert.EqualValues(t, 2, snapshot.Iteration)
	assert.Empty(t, snapshot.Feedback)
	assert.NotEmpty(t, snapshot.Draft)

	pending, err := h.approver.ListPending(ctx)
	assert.Nil(t, err)
	assert.EqualValues(t, 1, len(pending))
	assert.EqualValues(t, task.ID, pending[0].TaskID)
	assert.EqualValues(t, 1, pending[0].Attempt)

	phases := drainPhases(sub)
	assert.EqualValues(t, []event.Phase{
		event.PhaseResearch,
		event.PhaseDraft,
		event.PhaseCritique,
		event.PhaseDraft,
		event.PhaseCritique,
		event.PhaseAwaitingApproval,
	}, phases)
}

func TestRunForcesGateAtIterationBound(t *testing.T) {
	critical := &stubContent{
		critique: func(string) ([]model.Critique, error) {
			return []model.Critique{{Text: "1. still not good enough"}}, nil
		},
	}
	h := newHarness(critical)
	ctx := context.Background()
	task := h.startTask(t, "never good enough", 2)

	assert.Nil(t, h.executor.Run(ctx, task))

	snapshot := task.Snapshot()
	assert.EqualValues(t, registry.StatusAwaitingApproval, snapshot.Status)
	assert.EqualValues(t, 2, snapshot.Iteration)
	// the unresolved critique survives for the reviewer to see
	assert.EqualValues(t, 1, len(snapshot.Feedback))
	assert.EqualValues(t, model.OriginAI, snapshot.Feedback[0].Origin)
}

func TestRunUpstreamFailure(t *testing.T) {
	broken := &stubContent{
		research: func(string) (map[string]interface{}, error) {
			return nil, errors.New("research provider unavailable")
		},
	}
	h := newHarness(broken)
	ctx := context.Background()
	task := h.startTask(t, "doomed", 3)
	sub := h.feed.Subscribe(task.ID)
	defer sub.Close()

	err := h.executor.Run(ctx, task)
	assert.True(t, types.IsUpstream(err))

	snapshot := task.Snapshot()
	assert.EqualValues(t, registry.StatusFailed, snapshot.Status)
	assert.Contains(t, snapshot.LastError, "research provider unavailable")

	phases := drainPhases(sub)
	assert.EqualValues(t, []event.Phase{event.PhaseFailed}, phases)
}

func TestResumedPassSkipsResearch(t *testing.T) {
	collaborator := &stubContent{}
	h := newHarness(collaborator)
	ctx := context.Background()
	task := h.startTask(t, "one pass wonder", 3)

	assert.Nil(t, h.executor.Run(ctx, task))
	assert.EqualValues(t, registry.StatusAwaitingApproval, task.Status())
	assert.EqualValues(t, 1, collaborator.researchCalls)

	_, resumed, err := task.ApplyVerdict(approval.WithFeedback("mention the address"))
	assert.Nil(t, err)
	assert.True(t, resumed)

	assert.Nil(t, h.executor.Run(ctx, task))
	snapshot := task.Snapshot()
	assert.EqualValues(t, registry.StatusAwaitingApproval, snapshot.Status)
	// research ran once for the whole task
	assert.EqualValues(t, 1, collaborator.researchCalls)
	// the resumed loop restarted from iteration zero
	assert.EqualValues(t, 1, snapshot.Iteration)
	assert.EqualValues(t, 1, snapshot.ApprovalAttempts)
}

func TestDraftStepLeavesFeedbackToCritique(t *testing.T) {
	h := newHarness(&stubContent{})
	ctx := context.Background()
	task := h.startTask(t, "write discipline", 3)
	state, err := task.BeginPass()
	assert.Nil(t, err)
	state.Research = map[string]interface{}{"topic": "write discipline"}
	state.Draft = "draft v1"
	state.Iteration = 1
	state.Feedback = []model.Critique{{Text: "1. tighten the hook", Origin: model.OriginAI}}

	next, err := h.executor.draft(ctx, task, state)
	assert.Nil(t, err)
	assert.EqualValues(t, 2, next.Iteration)
	assert.NotEmpty(t, next.Draft)
	// the critique step owns the feedback field
	assert.EqualValues(t, state.Feedback, next.Feedback)
	// input state untouched
	assert.EqualValues(t, 1, state.Iteration)
	assert.EqualValues(t, "draft v1", state.Draft)
}

func TestDraftEventCarriesDiff(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()
	task := h.startTask(t, "coffee shop", 3)
	sub := h.feed.Subscribe(task.ID)
	defer sub.Close()

	assert.Nil(t, h.executor.Run(ctx, task))

	var revisions []*DraftRevision
	for _, progress := range drainAll(sub) {
		if progress.Phase == event.PhaseDraft {
			revision, ok := progress.Payload.(*DraftRevision)
			assert.True(t, ok)
			revisions = append(revisions, revision)
		}
	}
	assert.EqualValues(t, 2, len(revisions))
	assert.Empty(t, revisions[0].Diff)
	assert.Contains(t, revisions[1].Diff, "+")
}

func TestAutoPolicyCompletesInOnePass(t *testing.T) {
	h := newHarness(nil)
	ctx := policy.WithPolicy(context.Background(), &policy.Policy{Mode: policy.ModeAuto})
	task := h.startTask(t, "auto approved", 3)
	sub := h.feed.Subscribe(task.ID)
	defer sub.Close()

	assert.Nil(t, h.executor.Run(ctx, task))

	snapshot := task.Snapshot()
	assert.EqualValues(t, registry.StatusCompleted, snapshot.Status)
	assert.True(t, snapshot.Approved)
	assert.EqualValues(t, 1, snapshot.ApprovalAttempts)

	phases := drainPhases(sub)
	assert.EqualValues(t, event.PhaseCompleted, phases[len(phases)-1])
}

func TestDenyPolicyFailsAtGate(t *testing.T) {
	h := newHarness(nil)
	ctx := policy.WithPolicy(context.Background(), &policy.Policy{Mode: policy.ModeDeny})
	task := h.startTask(t, "blocked topic", 3)

	err := h.executor.Run(ctx, task)
	assert.NotNil(t, err)

	snapshot := task.Snapshot()
	assert.EqualValues(t, registry.StatusFailed, snapshot.Status)
	assert.Contains(t, snapshot.LastError, "blocked by policy")

	// the blocked gate never created a pending request
	pending, err := h.approver.ListPending(ctx)
	assert.Nil(t, err)
	assert.Empty(t, pending)
}

func TestAskPolicyDecidesInPass(t *testing.T) {
	h := newHarness(nil)
	gates := 0
	reviewer := &policy.Policy{
		Mode: policy.ModeAsk,
		Decide: func(_ context.Context, _, _ string, _ *policy.Policy) (approval.Verdict, bool) {
			gates++
			if gates == 1 {
				return approval.WithFeedback("add a question to spark comments"), true
			}
			return approval.Approve(), true
		},
	}
	ctx := policy.WithPolicy(context.Background(), reviewer)
	task := h.startTask(t, "scripted review", 3)

	assert.Nil(t, h.executor.Run(ctx, task))

	snapshot := task.Snapshot()
	assert.EqualValues(t, registry.StatusCompleted, snapshot.Status)
	assert.EqualValues(t, 2, gates)
	assert.EqualValues(t, 2, snapshot.ApprovalAttempts)

	// every in-line verdict settled its own request
	pending, err := h.approver.ListPending(ctx)
	assert.Nil(t, err)
	assert.Empty(t, pending)
}

func drainAll(sub *event.Subscription) []*event.Progress {
	var all []*event.Progress
	for {
		select {
		case progress := <-sub.Events():
			all = append(all, progress)
			if progress.Phase.Terminal() {
				return all
			}
		default:
			return all
		}
	}
}
