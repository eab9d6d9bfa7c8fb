// Package progress provides a lightweight tracker that keeps aggregated
// counters (passes, drafts, critiques, …) for a single task run. The tracker
// lives in the execution context – every component that receives the context
// can atomically update the counters via the Delta helper without requiring a
// global registry.
package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted while a pass runs.
// The fields are signed and can be either positive or negative.
type Delta struct {
	Passes           int
	Researches       int
	Drafts           int
	Critiques        int
	ApprovalRequests int
	Completed        int
	Failed           int
}

// Progress keeps aggregated counters for one task. It is safe for concurrent
// use.
type Progress struct {
	// Identification – informative only, filled when the task starts.
	TaskID    string
	Topic     string
	StartedAt time.Time

	// Counters – modified via Update().
	Passes           int
	Researches       int
	Drafts           int
	Critiques        int
	ApprovalRequests int
	Completed        int
	Failed           int

	sync.Mutex
	onChange func(Progress)
}

// Update applies the supplied delta to the tracker. If an onChange callback
// has been registered it is invoked with a copy of the updated tracker
// outside the critical section so slow callbacks do not block the engine.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.Lock()
	p.Passes += d.Passes
	p.Researches += d.Researches
	p.Drafts += d.Drafts
	p.Critiques += d.Critiques
	p.ApprovalRequests += d.ApprovalRequests
	p.Completed += d.Completed
	p.Failed += d.Failed

	snapshot := *p
	cb := p.onChange
	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return *p
}

// OnChange registers a callback invoked after every Update. Passing nil
// disables the callback; only one callback can be active at a time.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

// New creates a tracker for one task.
func New(taskID, topic string) *Progress {
	return &Progress{
		TaskID:    taskID,
		Topic:     topic,
		StartedAt: time.Now(),
	}
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithTracker embeds an existing tracker in a derived context so counters
// accumulate across forward passes of the same task.
func WithTracker(ctx context.Context, tracker *Progress) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if tracker == nil {
		return ctx
	}
	return context.WithValue(ctx, trackerKey, tracker)
}

// WithNewTracker creates a new Progress tracker, embeds it in a derived
// context and returns both.
func WithNewTracker(ctx context.Context, taskID, topic string, onChange func(Progress)) (context.Context, *Progress) {
	tracker := New(taskID, topic)
	tracker.onChange = onChange
	return WithTracker(ctx, tracker), tracker
}

// FromContext returns the tracker stored in ctx, or nil when absent.
func FromContext(ctx context.Context) *Progress {
	if ctx == nil {
		return nil
	}
	tracker, _ := ctx.Value(trackerKey).(*Progress)
	return tracker
}

// UpdateCtx is a convenience wrapper that applies the delta to the tracker in
// ctx when one is present.
func UpdateCtx(ctx context.Context, d Delta) {
	FromContext(ctx).Update(d)
}
