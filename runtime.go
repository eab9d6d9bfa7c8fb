package reviso

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/reviso/progress"
	"github.com/viant/reviso/service/approval"
	"github.com/viant/reviso/service/event"
	"github.com/viant/reviso/service/processor"
	"github.com/viant/reviso/service/registry"
)

// TaskOption customises task creation.
type TaskOption func(*taskOptions)

type taskOptions struct {
	maxIterations int
}

// WithMaxIterations bounds the critique/refine loop for one task.
func WithMaxIterations(n int) TaskOption {
	return func(o *taskOptions) {
		o.maxIterations = n
	}
}

// Runtime is the task-facing facade of the engine.
type Runtime struct {
	config    *Config
	registry  *registry.Service
	approver  approval.Service
	processor *processor.Service
	feed      *event.Feed
}

// Start launches the processor workers.
func (r *Runtime) Start(ctx context.Context) error {
	return r.processor.Start(ctx)
}

// Shutdown stops the workers and waits for in-flight passes.
func (r *Runtime) Shutdown() {
	r.processor.Shutdown()
}

// CreateTask registers a new task for the topic and returns its id. The
// iteration bound defaults from the configuration.
func (r *Runtime) CreateTask(ctx context.Context, topic string, options ...TaskOption) (string, error) {
	opts := &taskOptions{maxIterations: r.config.Workflow.DefaultMaxIterations}
	for _, option := range options {
		option(opts)
	}
	snapshot, err := r.registry.Create(ctx, topic, opts.maxIterations)
	if err != nil {
		return "", err
	}
	return snapshot.ID, nil
}

// RunTask schedules the task's first pass and returns an ordered progress
// stream. The stream closes once the pass reaches a terminal phase (awaiting
// approval, completed or failed) or ctx is cancelled; use Observe to follow a
// resumed pass.
func (r *Runtime) RunTask(ctx context.Context, id string) (<-chan *event.Progress, error) {
	// subscribe before scheduling so no event is missed
	sub := r.feed.Subscribe(id)
	if err := r.registry.Start(ctx, id); err != nil {
		sub.Close()
		return nil, err
	}
	return r.stream(ctx, sub), nil
}

// Observe attaches a progress stream to an existing task. Like RunTask, the
// stream closes at the next terminal phase.
func (r *Runtime) Observe(ctx context.Context, id string) (<-chan *event.Progress, error) {
	if _, err := r.registry.Get(ctx, id); err != nil {
		return nil, err
	}
	return r.stream(ctx, r.feed.Subscribe(id)), nil
}

func (r *Runtime) stream(ctx context.Context, sub *event.Subscription) <-chan *event.Progress {
	out := make(chan *event.Progress, event.DefaultBuffer)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case progress, ok := <-sub.Events():
				if !ok {
					return
				}
				select {
				case out <- progress:
				case <-ctx.Done():
					return
				}
				if progress.Phase.Terminal() {
					return
				}
			}
		}
	}()
	return out
}

// SubmitVerdict resolves a pending approval gate with a reviewer verdict.
func (r *Runtime) SubmitVerdict(ctx context.Context, id string, verdict approval.Verdict) (*registry.Snapshot, error) {
	return r.registry.SubmitVerdict(ctx, id, verdict)
}

// GetSnapshot returns the task's current snapshot.
func (r *Runtime) GetSnapshot(ctx context.Context, id string) (*registry.Snapshot, error) {
	return r.registry.Get(ctx, id)
}

// EvictTask removes a task; tasks with an in-flight pass cannot be evicted.
func (r *Runtime) EvictTask(ctx context.Context, id string) error {
	return r.registry.Evict(ctx, id)
}

// TaskProgress returns the aggregated run counters of the task (passes,
// drafts, critiques, approval requests, …) accumulated across all its passes.
func (r *Runtime) TaskProgress(ctx context.Context, id string) (progress.Progress, error) {
	task, err := r.registry.Lookup(ctx, id)
	if err != nil {
		return progress.Progress{}, err
	}
	return task.Progress().Snapshot(), nil
}

// PendingApprovals lists the approval requests waiting for a verdict.
func (r *Runtime) PendingApprovals(ctx context.Context) ([]*approval.Request, error) {
	return r.approver.ListPending(ctx)
}

// WaitForTask polls until the task settles – suspends at the approval gate,
// completes or fails – and returns its snapshot.
func (r *Runtime) WaitForTask(ctx context.Context, id string, timeout time.Duration) (*registry.Snapshot, error) {
	deadline := time.Now().Add(timeout)
	for {
		snapshot, err := r.registry.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		switch snapshot.Status {
		case registry.StatusAwaitingApproval, registry.StatusCompleted, registry.StatusFailed:
			return snapshot, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("task %v still %v after %v", id, snapshot.Status, timeout)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}
