package fs

import (
	"context"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

type payload struct {
	TaskID string `json:"taskId"`
}

func TestQueueRoundTrip(t *testing.T) {
	ctx := context.Background()
	config := Config{BasePath: path.Join(t.TempDir(), "queue"), MaxRetries: 1}
	q, err := NewQueue[payload](afs.New(), config)
	assert.NoError(t, err)

	empty, err := q.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, empty)

	assert.NoError(t, q.Publish(ctx, &payload{TaskID: "t1"}))

	msg, err := q.Consume(ctx)
	assert.NoError(t, err)
	if !assert.NotNil(t, msg) {
		return
	}
	assert.EqualValues(t, "t1", msg.T().TaskID)
	assert.NoError(t, msg.Ack())

	// Acked message is settled; the queue is empty again.
	empty, err = q.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, empty)
}

func TestQueueNackRedelivers(t *testing.T) {
	ctx := context.Background()
	config := Config{BasePath: path.Join(t.TempDir(), "queue"), MaxRetries: 1}
	q, err := NewQueue[payload](afs.New(), config)
	assert.NoError(t, err)

	assert.NoError(t, q.Publish(ctx, &payload{TaskID: "t1"}))

	msg, err := q.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, msg.Nack(assert.AnError))

	redelivered, err := q.Consume(ctx)
	assert.NoError(t, err)
	if !assert.NotNil(t, redelivered) {
		return
	}
	assert.EqualValues(t, "t1", redelivered.T().TaskID)

	// Second failure exceeds MaxRetries and parks the message.
	assert.NoError(t, redelivered.Nack(assert.AnError))
	empty, err := q.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, empty)
}
