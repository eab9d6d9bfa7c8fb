package event

import (
	"log"
	"sync"

	"github.com/viant/reviso/internal/idgen"
)

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 64

// Subscription is one observer's ordered view of a task's progress events.
type Subscription struct {
	id     string
	taskID string
	events chan *Progress
	feed   *Feed
	once   sync.Once
}

// Events returns the subscription channel. The channel is closed when the
// subscription is closed; it is never closed by the publisher side.
func (s *Subscription) Events() <-chan *Progress {
	return s.events
}

// Close detaches the subscription from the feed and closes its channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.feed.remove(s)
		close(s.events)
	})
}

// Feed fans progress events out to per-task subscribers. Publishing never
// blocks: when a subscriber's buffer is full the event is dropped for that
// subscriber only, preserving order of whatever it does receive.
type Feed struct {
	mu     sync.RWMutex
	subs   map[string]map[string]*Subscription
	buffer int
}

// NewFeed creates a feed with the given per-subscription buffer; a
// non-positive buffer falls back to DefaultBuffer.
func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Feed{
		subs:   make(map[string]map[string]*Subscription),
		buffer: buffer,
	}
}

// Subscribe attaches a new observer to the given task id. Subscribing to an
// unknown or finished task is allowed; the observer simply receives whatever
// is published afterwards.
func (f *Feed) Subscribe(taskID string) *Subscription {
	sub := &Subscription{
		id:     idgen.New(),
		taskID: taskID,
		events: make(chan *Progress, f.buffer),
		feed:   f,
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	byTask, ok := f.subs[taskID]
	if !ok {
		byTask = make(map[string]*Subscription)
		f.subs[taskID] = byTask
	}
	byTask[sub.id] = sub
	return sub
}

// Publish delivers an event to every subscriber of its task. Full buffers
// drop the event for that subscriber; the drop is logged and the run
// continues.
func (f *Feed) Publish(progress *Progress) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, sub := range f.subs[progress.TaskID] {
		select {
		case sub.events <- progress:
		default:
			log.Printf("event: dropped %v event for slow observer of task %v", progress.Phase, progress.TaskID)
		}
	}
}

// SubscriberCount returns how many observers are attached to the task.
func (f *Feed) SubscriberCount(taskID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[taskID])
}

func (f *Feed) remove(sub *Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byTask, ok := f.subs[sub.taskID]
	if !ok {
		return
	}
	delete(byTask, sub.id)
	if len(byTask) == 0 {
		delete(f.subs, sub.taskID)
	}
}
