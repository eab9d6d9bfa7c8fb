package registry

import (
	"sync"
	"time"

	"github.com/viant/reviso/internal/clock"
	"github.com/viant/reviso/internal/idgen"
	"github.com/viant/reviso/model"
	"github.com/viant/reviso/model/types"
	"github.com/viant/reviso/progress"
	"github.com/viant/reviso/service/approval"
)

// Status enumerates the task lifecycle.
type Status string

const (
	StatusPending          Status = "pending"
	StatusRunning          Status = "running"
	StatusAwaitingApproval Status = "awaitingApproval"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
)

// Terminal reports whether no further work is possible for the status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Run schedules one forward pass for a task. It is the only message type on
// the scheduling queue; a task has at most one outstanding Run at a time.
type Run struct {
	TaskID string `json:"taskID"`
}

// Task is the registry record of one workflow run. All mutation goes through
// its methods, which serialize on the task mutex; this is what keeps a single
// writer on the state at any moment.
type Task struct {
	ID string

	mu         sync.Mutex
	status     Status
	state      *model.State
	tracker    *progress.Progress
	lastError  string
	createdAt  time.Time
	updatedAt  time.Time
	finishedAt *time.Time
}

// NewTask creates a pending task for the topic.
func NewTask(topic string, maxIterations int) *Task {
	now := clock.Now()
	id := idgen.New()
	return &Task{
		ID:        id,
		status:    StatusPending,
		state:     model.NewState(topic, maxIterations),
		tracker:   progress.New(id, topic),
		createdAt: now,
		updatedAt: now,
	}
}

// Progress returns the task's counter tracker. Counters accumulate over the
// whole task lifetime, across suspensions and resumed passes.
func (t *Task) Progress() *progress.Progress {
	return t.tracker
}

// Status returns the current lifecycle status.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Begin moves the task from pending to running.
func (t *Task) Begin() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusPending {
		return types.NewInvalidStateError("start", string(t.status))
	}
	t.status = StatusRunning
	t.touch()
	return nil
}

// BeginPass hands the executor a private copy of the state for one forward
// pass. The task must be running.
func (t *Task) BeginPass() (*model.State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusRunning {
		return nil, types.NewInvalidStateError("run", string(t.status))
	}
	return t.state.Clone(), nil
}

// AwaitApproval commits the pass result and suspends the task at the
// approval gate.
func (t *Task) AwaitApproval(state *model.State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
	t.status = StatusAwaitingApproval
	t.touch()
}

// Complete commits the pass result and finishes the task.
func (t *Task) Complete(state *model.State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state != nil {
		t.state = state
	}
	t.status = StatusCompleted
	now := clock.Now()
	t.finishedAt = &now
	t.touch()
}

// Fail finishes the task with an error. The last committed state survives so
// the failure can be inspected.
func (t *Task) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.lastError = err.Error()
	}
	t.status = StatusFailed
	now := clock.Now()
	t.finishedAt = &now
	t.touch()
}

// ApplyVerdict folds a reviewer verdict into the task. It returns the
// resulting snapshot and whether the refine loop resumes. Any verdict outside
// the approval gate is an invalid-state error.
func (t *Task) ApplyVerdict(verdict approval.Verdict) (*Snapshot, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusAwaitingApproval {
		return nil, false, types.NewInvalidStateError("verdict", string(t.status))
	}

	t.state = approval.Apply(verdict, t.state)
	if verdict.Kind == approval.VerdictApprove {
		t.status = StatusCompleted
		now := clock.Now()
		t.finishedAt = &now
		t.touch()
		return t.snapshot(), false, nil
	}
	t.status = StatusRunning
	t.touch()
	return t.snapshot(), true, nil
}

// Snapshot returns a point-in-time, caller-owned view of the task.
func (t *Task) Snapshot() *Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

// snapshot assumes the task mutex is held.
func (t *Task) snapshot() *Snapshot {
	state := t.state.Clone()
	return &Snapshot{
		ID:               t.ID,
		Status:           t.status,
		Topic:            state.Topic,
		Iteration:        state.Iteration,
		MaxIterations:    state.MaxIterations,
		Approved:         state.Approved,
		ApprovalAttempts: state.ApprovalAttempts,
		Draft:            state.Draft,
		Feedback:         state.Feedback,
		LastError:        t.lastError,
		CreatedAt:        t.createdAt,
		UpdatedAt:        t.updatedAt,
		FinishedAt:       t.finishedAt,
	}
}

func (t *Task) touch() {
	t.updatedAt = clock.Now()
}

// Snapshot is an immutable view of a task for API consumers.
type Snapshot struct {
	ID               string           `json:"id"`
	Status           Status           `json:"status"`
	Topic            string           `json:"topic"`
	Iteration        int              `json:"iteration"`
	MaxIterations    int              `json:"maxIterations"`
	Approved         bool             `json:"approved"`
	ApprovalAttempts int              `json:"approvalAttempts"`
	Draft            string           `json:"draft,omitempty"`
	Feedback         []model.Critique `json:"feedback,omitempty"`
	LastError        string           `json:"lastError,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
	FinishedAt       *time.Time       `json:"finishedAt,omitempty"`
}
