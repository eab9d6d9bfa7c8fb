package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerUpdates(t *testing.T) {
	ctx, tracker := WithNewTracker(context.Background(), "t1", "coffee shop", nil)

	UpdateCtx(ctx, Delta{Passes: 1, Researches: 1, Drafts: 1})
	UpdateCtx(ctx, Delta{Drafts: 1, Critiques: 2, ApprovalRequests: 1})

	snapshot := tracker.Snapshot()
	assert.EqualValues(t, "t1", snapshot.TaskID)
	assert.EqualValues(t, 1, snapshot.Passes)
	assert.EqualValues(t, 1, snapshot.Researches)
	assert.EqualValues(t, 2, snapshot.Drafts)
	assert.EqualValues(t, 2, snapshot.Critiques)
	assert.EqualValues(t, 1, snapshot.ApprovalRequests)
}

func TestTrackerOnChange(t *testing.T) {
	_, tracker := WithNewTracker(context.Background(), "t1", "topic", nil)
	var seen []int
	tracker.OnChange(func(p Progress) {
		seen = append(seen, p.Drafts)
	})
	tracker.Update(Delta{Drafts: 1})
	tracker.Update(Delta{Drafts: 1})
	assert.EqualValues(t, []int{1, 2}, seen)
}

func TestTrackerAccumulatesAcrossContexts(t *testing.T) {
	tracker := New("t1", "topic")

	// each pass derives its own context from the same tracker
	UpdateCtx(WithTracker(context.Background(), tracker), Delta{Passes: 1, Drafts: 2})
	UpdateCtx(WithTracker(context.Background(), tracker), Delta{Passes: 1, Drafts: 1})

	snapshot := tracker.Snapshot()
	assert.EqualValues(t, 2, snapshot.Passes)
	assert.EqualValues(t, 3, snapshot.Drafts)
}

func TestMissingTrackerIsNoop(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	// must not panic
	UpdateCtx(context.Background(), Delta{Passes: 1})
	var none *Progress
	none.Update(Delta{Passes: 1})
	assert.EqualValues(t, Progress{}, none.Snapshot())
}
