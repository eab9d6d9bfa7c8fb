// Package memory provides the in-process approval service implementation.
package memory

import (
	"context"

	"github.com/viant/reviso/internal/clock"
	"github.com/viant/reviso/model/types"
	"github.com/viant/reviso/service/approval"
	"github.com/viant/reviso/service/dao"
	"github.com/viant/reviso/service/dao/store"
	"github.com/viant/reviso/service/messaging"
	qmem "github.com/viant/reviso/service/messaging/memory"
)

type service struct {
	// DAO-backed stores
	reqDAO dao.Service[string, approval.Request]
	decDAO dao.Service[string, approval.Decision]

	// fan-out queue
	events messaging.Queue[approval.Event]
}

// key selectors – one pending request and one latest decision per task
func reqKey(r *approval.Request) string  { return r.TaskID }
func decKey(d *approval.Decision) string { return d.TaskID }

// Option customizes the approval service.
type Option func(*service)

// WithQueue overrides the event queue.
func WithQueue(queue messaging.Queue[approval.Event]) Option {
	return func(s *service) {
		s.events = queue
	}
}

// New creates an in-memory approval service.
func New(options ...Option) approval.Service {
	ret := &service{
		reqDAO: store.NewMemoryStore[string, approval.Request](reqKey),
		decDAO: store.NewMemoryStore[string, approval.Decision](decKey),
		events: qmem.NewQueue[approval.Event](qmem.DefaultConfig()),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *service) RequestApproval(ctx context.Context, r *approval.Request) error {
	if r == nil || r.TaskID == "" {
		return types.NewInvalidInputError("approval request requires a task id")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = clock.Now()
	}
	// Idempotent save – a re-requested gate overwrites the previous copy.
	if err := s.reqDAO.Save(ctx, r); err != nil {
		return err
	}
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicRequestCreated, Data: r})
	return nil
}

func (s *service) ListPending(ctx context.Context) ([]*approval.Request, error) {
	return s.reqDAO.List(ctx)
}

func (s *service) Decide(ctx context.Context, taskID string, verdict approval.Verdict) (*approval.Decision, error) {
	if taskID == "" {
		return nil, types.NewInvalidInputError("empty task id")
	}
	if err := verdict.Validate(); err != nil {
		return nil, err
	}
	request, err := s.reqDAO.Load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, types.NewNotFoundError(taskID)
	}
	decision := &approval.Decision{
		TaskID:    taskID,
		Verdict:   verdict,
		DecidedAt: clock.Now(),
	}
	if err := s.decDAO.Save(ctx, decision); err != nil {
		return nil, err
	}
	// The pending slot frees up so a later gate on the same task can
	// re-request approval.
	_ = s.reqDAO.Delete(ctx, taskID)
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicDecisionCreated, Data: decision})
	return decision, nil
}

func (s *service) Queue() messaging.Queue[approval.Event] { return s.events }

var _ approval.Service = (*service)(nil)
