// Package approval gates drafts behind a human verdict. The service stores
// pending requests, records decisions and fans both out on an event queue so
// external reviewers (UIs, bots, tests) can react without polling.
package approval

import (
	"context"

	"github.com/viant/reviso/service/messaging"
)

// Service defines the approval service interface. Decide records a decision
// against the pending request – audit store plus queue event – and frees the
// slot; it does not resume the task, which is the registry's job.
type Service interface {
	RequestApproval(ctx context.Context, r *Request) error
	ListPending(ctx context.Context) ([]*Request, error)
	Decide(ctx context.Context, taskID string, verdict Verdict) (*Decision, error)
	Queue() messaging.Queue[Event]
}
