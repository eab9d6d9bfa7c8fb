package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/reviso/model/types"
	"github.com/viant/reviso/service/approval"
)

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := New()

	// no pending request yet
	_, err := svc.Decide(ctx, "t1", approval.Approve())
	assert.True(t, types.IsNotFound(err))

	assert.Nil(t, svc.RequestApproval(ctx, &approval.Request{TaskID: "t1", Draft: "v1", Attempt: 1}))
	pending, err := svc.ListPending(ctx)
	assert.Nil(t, err)
	assert.EqualValues(t, 1, len(pending))

	// re-requesting overwrites rather than duplicates
	assert.Nil(t, svc.RequestApproval(ctx, &approval.Request{TaskID: "t1", Draft: "v2", Attempt: 1}))
	pending, _ = svc.ListPending(ctx)
	assert.EqualValues(t, 1, len(pending))
	assert.EqualValues(t, "v2", pending[0].Draft)

	decision, err := svc.Decide(ctx, "t1", approval.WithFeedback("tighten the hook"))
	assert.Nil(t, err)
	assert.EqualValues(t, approval.VerdictFeedback, decision.Verdict.Kind)

	// decided requests leave the pending list
	pending, _ = svc.ListPending(ctx)
	assert.Empty(t, pending)

	// a later gate on the same task can request again
	assert.Nil(t, svc.RequestApproval(ctx, &approval.Request{TaskID: "t1", Draft: "v3", Attempt: 2}))
	decision, err = svc.Decide(ctx, "t1", approval.Approve())
	assert.Nil(t, err)
	assert.EqualValues(t, approval.VerdictApprove, decision.Verdict.Kind)
}

func TestServiceValidation(t *testing.T) {
	ctx := context.Background()
	svc := New()

	assert.True(t, types.IsInvalidInput(svc.RequestApproval(ctx, nil)))
	assert.True(t, types.IsInvalidInput(svc.RequestApproval(ctx, &approval.Request{})))

	_, err := svc.Decide(ctx, "", approval.Approve())
	assert.True(t, types.IsInvalidInput(err))

	_ = svc.RequestApproval(ctx, &approval.Request{TaskID: "t1", Draft: "v1"})
	_, err = svc.Decide(ctx, "t1", approval.WithFeedback(" "))
	assert.True(t, types.IsInvalidInput(err))

	_, err = svc.Decide(ctx, "t1", approval.Verdict{Kind: "maybe"})
	assert.True(t, types.IsInvalidInput(err))
}
