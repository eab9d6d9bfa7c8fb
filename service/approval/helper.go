package approval

import (
	"context"
	"time"
)

// DecisionFunc decides what to do with a pending request.
type DecisionFunc func(r *Request) Verdict

// AutoDecider starts a goroutine that polls ListPending and applies fn to
// every request.  It returns stop() – call it (or cancel ctx) to exit.
//
// Decisions made here are recorded with the approval service only: they free
// the pending slot, land in the audit store and appear on the event queue,
// but they do not move the task. Pair the decider with a queue listener that
// forwards each decision to the registry's verdict submission.
func AutoDecider(ctx context.Context, svc Service, fn DecisionFunc, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				reqs, _ := svc.ListPending(ctx)
				for _, r := range reqs {
					_, _ = svc.Decide(ctx, r.TaskID, fn(r))
				}
			}
		}
	}()
	return func() { close(done) }
}

// AutoApprove automatically approves all pending requests.
func AutoApprove(ctx context.Context, svc Service, interval time.Duration) func() {
	return AutoDecider(ctx, svc, func(*Request) Verdict { return Approve() }, interval)
}

// AutoReject automatically rejects all pending requests.
func AutoReject(ctx context.Context, svc Service, interval time.Duration) func() {
	return AutoDecider(ctx, svc, func(*Request) Verdict { return Reject() }, interval)
}

// WaitForDecision blocks until a decision for the given task appears on the
// service queue, the timeout elapses or ctx is cancelled. It consumes (and
// acks) every event it sees, so it is meant for single-listener setups such
// as CLIs and tests.
func WaitForDecision(ctx context.Context, svc Service, taskID string, timeout time.Duration) (*Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		message, err := svc.Queue().Consume(ctx)
		if err != nil {
			return nil, err
		}
		if message == nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(10 * time.Millisecond):
			}
			continue
		}
		event := message.T()
		_ = message.Ack()
		if event.Topic != TopicDecisionCreated {
			continue
		}
		decision, ok := event.Data.(*Decision)
		if !ok || decision.TaskID != taskID {
			continue
		}
		return decision, nil
	}
}
