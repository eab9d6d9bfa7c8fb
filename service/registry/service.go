// Package registry tracks workflow tasks: it creates them, schedules forward
// passes on the run queue, folds reviewer verdicts back into suspended tasks
// and serves snapshots. It owns the task table and is the only component that
// transitions task status from the outside; the executor transitions it from
// within a pass.
package registry

import (
	"context"

	"github.com/viant/reviso/internal/clock"
	"github.com/viant/reviso/model/types"
	"github.com/viant/reviso/progress"
	"github.com/viant/reviso/service/approval"
	"github.com/viant/reviso/service/dao"
	"github.com/viant/reviso/service/dao/store"
	"github.com/viant/reviso/service/event"
	"github.com/viant/reviso/service/messaging"
)

// ParamStatus filters List results by task status.
const ParamStatus = "status"

func taskKey(t *Task) string { return t.ID }

// Service is the task registry.
type Service struct {
	tasks    dao.Service[string, Task]
	queue    messaging.Queue[Run]
	approver approval.Service
	feed     *event.Feed
}

// New creates a registry scheduling passes on queue, recording decisions with
// approver and publishing progress on feed.
func New(queue messaging.Queue[Run], approver approval.Service, feed *event.Feed) *Service {
	return &Service{
		tasks:    store.NewMemoryStore[string, Task](taskKey),
		queue:    queue,
		approver: approver,
		feed:     feed,
	}
}

// Create registers a new pending task. Topic must be non-empty and
// maxIterations positive.
func (s *Service) Create(ctx context.Context, topic string, maxIterations int) (*Snapshot, error) {
	if topic == "" {
		return nil, types.NewInvalidInputError("topic is required")
	}
	if maxIterations <= 0 {
		return nil, types.NewInvalidInputError("maxIterations must be positive, got %v", maxIterations)
	}
	task := NewTask(topic, maxIterations)
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task.Snapshot(), nil
}

// Lookup returns the live task record. Most callers want Get; the executor
// and processor need the record itself to drive a pass.
func (s *Service) Lookup(ctx context.Context, id string) (*Task, error) {
	task, err := s.tasks.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, types.NewNotFoundError(id)
	}
	return task, nil
}

// Get returns a snapshot of the task.
func (s *Service) Get(ctx context.Context, id string) (*Snapshot, error) {
	task, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return task.Snapshot(), nil
}

// Start moves a pending task to running and schedules its first forward
// pass.
func (s *Service) Start(ctx context.Context, id string) error {
	task, err := s.Lookup(ctx, id)
	if err != nil {
		return err
	}
	if err := task.Begin(); err != nil {
		return err
	}
	if err := s.queue.Publish(ctx, &Run{TaskID: id}); err != nil {
		task.Fail(err)
		return err
	}
	return nil
}

// SubmitVerdict resolves a pending approval gate. An approve verdict
// completes the task; reject and feedback verdicts restart the refine loop by
// scheduling a new forward pass. The verdict is also recorded with the
// approval service so queue listeners observe the decision.
func (s *Service) SubmitVerdict(ctx context.Context, id string, verdict approval.Verdict) (*Snapshot, error) {
	if err := verdict.Validate(); err != nil {
		return nil, err
	}
	task, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot, resumed, err := task.ApplyVerdict(verdict)
	if err != nil {
		return nil, err
	}
	// Record the decision for the audit stores and queue listeners. A Decide
	// issued on the approval service directly records only; resumption always
	// flows through here, so NotFound just means the slot is already freed.
	if _, err := s.approver.Decide(ctx, id, verdict); err != nil && !types.IsNotFound(err) {
		return nil, err
	}
	if resumed {
		if err := s.queue.Publish(ctx, &Run{TaskID: id}); err != nil {
			task.Fail(err)
			return nil, err
		}
		return snapshot, nil
	}
	if snapshot.Status == StatusCompleted {
		task.Progress().Update(progress.Delta{Completed: 1})
		s.feed.Publish(&event.Progress{
			TaskID:    id,
			Phase:     event.PhaseCompleted,
			Iteration: snapshot.Iteration,
			Message:   "draft approved",
			Payload:   snapshot.Draft,
			CreatedAt: clock.Now(),
		})
	}
	return snapshot, nil
}

// Evict removes a task from the registry. A task with an in-flight pass
// cannot be evicted.
func (s *Service) Evict(ctx context.Context, id string) error {
	task, err := s.Lookup(ctx, id)
	if err != nil {
		return err
	}
	if status := task.Status(); status == StatusRunning {
		return types.NewInvalidStateError("evict", string(status))
	}
	return s.tasks.Delete(ctx, id)
}

// List returns snapshots of known tasks, optionally filtered with a status
// parameter.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*Snapshot, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	var status Status
	for _, parameter := range parameters {
		if parameter != nil && parameter.Name == ParamStatus {
			if value, ok := parameter.Value.(string); ok {
				status = Status(value)
			}
		}
	}
	result := make([]*Snapshot, 0, len(tasks))
	for _, task := range tasks {
		snapshot := task.Snapshot()
		if status != "" && snapshot.Status != status {
			continue
		}
		result = append(result, snapshot)
	}
	return result, nil
}

// Feed exposes the progress feed for observers.
func (s *Service) Feed() *event.Feed {
	return s.feed
}
