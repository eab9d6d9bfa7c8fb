// Package processor consumes run messages and hands them to the executor. A
// fixed pool of workers drains the scheduling queue; each message triggers at
// most one forward pass. Stale messages (task evicted, already decided or
// failed) are acknowledged and dropped.
package processor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/viant/reviso/model/types"
	"github.com/viant/reviso/progress"
	"github.com/viant/reviso/service/executor"
	"github.com/viant/reviso/service/messaging"
	"github.com/viant/reviso/service/registry"
)

// DefaultWorkerCount is used when the configuration does not set one.
const DefaultWorkerCount = 4

// emptyPollDelay backs off polling on journal-backed queues that return no
// message instead of blocking.
const emptyPollDelay = 20 * time.Millisecond

// Config holds processor settings.
type Config struct {
	WorkerCount int `yaml:"workerCount" json:"workerCount"`
}

// Service is the worker pool that executes scheduled passes.
type Service struct {
	config   Config
	queue    messaging.Queue[registry.Run]
	registry *registry.Service
	executor *executor.Service

	mu         sync.Mutex
	started    bool
	shutdownCh chan struct{}
	cancel     context.CancelFunc
	workerWg   sync.WaitGroup
}

// New creates a processor draining queue into the executor.
func New(config Config, queue messaging.Queue[registry.Run], reg *registry.Service, exec *executor.Service) *Service {
	return &Service{
		config:   config,
		queue:    queue,
		registry: reg,
		executor: exec,
	}
}

// Start launches the worker pool. It is idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.shutdownCh = make(chan struct{})
	workers := s.config.WorkerCount
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	for i := 0; i < workers; i++ {
		s.workerWg.Add(1)
		go s.worker(runCtx)
	}
	s.started = true
	return nil
}

// Shutdown stops the workers and waits for in-flight passes to finish.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	close(s.shutdownCh)
	s.cancel()
	s.workerWg.Wait()
	s.started = false
}

func (s *Service) worker(ctx context.Context) {
	defer s.workerWg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdownCh:
			return
		default:
		}
		message, err := s.queue.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("processor: consume failed: %v", err)
			continue
		}
		if message == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(emptyPollDelay):
			}
			continue
		}
		s.process(ctx, message)
	}
}

func (s *Service) process(ctx context.Context, message messaging.Message[registry.Run]) {
	run := message.T()
	task, err := s.registry.Lookup(ctx, run.TaskID)
	if err != nil {
		if types.IsNotFound(err) {
			log.Printf("processor: task %v gone before its run", run.TaskID)
			_ = message.Ack()
			return
		}
		_ = message.Nack(err)
		return
	}
	if status := task.Status(); status != registry.StatusRunning {
		// stale message – the task moved on without this pass
		log.Printf("processor: skipping task %v in status %v", run.TaskID, status)
		_ = message.Ack()
		return
	}
	// counters accumulate on the task tracker across resumed passes
	ctx = progress.WithTracker(ctx, task.Progress())
	if err := s.executor.Run(ctx, task); err != nil {
		// the failure is already folded into the task record
		log.Printf("processor: task %v failed: %v", run.TaskID, err)
	}
	_ = message.Ack()
}
