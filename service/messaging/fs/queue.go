// Package fs provides a file-system journal implementation of
// messaging.Queue built on viant/afs. Every message lives as a JSON file that
// moves between state directories, so a queue survives process restarts and
// its history remains inspectable on disk.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/reviso/internal/idgen"
	"github.com/viant/reviso/service/messaging"
)

// State tracks where a message sits in its lifecycle.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateDone       State = "done"
	StateDead       State = "dead"
)

// Message implements messaging.Message for the file-system queue.
type Message[T any] struct {
	ID        string    `json:"id"`
	Data      T         `json:"data"`
	State     State     `json:"state"`
	Error     string    `json:"error,omitempty"`
	Retries   int       `json:"retries"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack moves the message to the done directory.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = StateDone
	m.UpdatedAt = time.Now()
	return m.queue.settle(context.Background(), m, m.queue.doneDir)
}

// Nack requeues the message for another attempt, or parks it in the dead
// directory once retries are exhausted.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.Retries++
	m.UpdatedAt = time.Now()
	if err != nil {
		m.Error = err.Error()
	}
	if m.Retries > m.queue.config.MaxRetries {
		m.State = StateDead
		return m.queue.settle(context.Background(), m, m.queue.deadDir)
	}
	m.State = StatePending
	return m.queue.settle(context.Background(), m, m.queue.pendingDir)
}

// Config holds the file-system queue settings.
type Config struct {
	BasePath   string
	MaxRetries int
}

// DefaultConfig returns a config rooted under /tmp/reviso/queue.
func DefaultConfig() Config {
	return Config{
		BasePath:   "/tmp/reviso/queue",
		MaxRetries: 3,
	}
}

// Queue implements a file-system backed messaging.Queue.
type Queue[T any] struct {
	fs            afs.Service
	config        Config
	pendingDir    string
	processingDir string
	doneDir       string
	deadDir       string
	mu            sync.Mutex
}

// NewQueue creates a file-system queue and ensures its directory layout.
func NewQueue[T any](fs afs.Service, config Config) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultConfig().MaxRetries
	}
	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingDir:    path.Join(config.BasePath, "pending"),
		processingDir: path.Join(config.BasePath, "processing"),
		doneDir:       path.Join(config.BasePath, "done"),
		deadDir:       path.Join(config.BasePath, "dead"),
	}
	ctx := context.Background()
	for _, dir := range []string{q.pendingDir, q.processingDir, q.doneDir, q.deadDir} {
		if exists, _ := fs.Exists(ctx, dir); exists {
			continue
		}
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return q, nil
}

// Publish writes a new pending message file.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	message := &Message[T]{
		ID:        idgen.New(),
		Data:      *t,
		State:     StatePending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return q.upload(ctx, path.Join(q.pendingDir, message.ID+".json"), data)
}

// Consume picks the oldest pending message and moves it to processing. It
// returns (nil, nil) when the queue is empty.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	objects, err := q.fs.List(ctx, q.pendingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending messages: %w", err)
	}
	var pending []storage.Object
	for _, object := range objects {
		if !object.IsDir() && strings.HasSuffix(object.Name(), ".json") {
			pending = append(pending, object)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}
	object := pending[0]
	message, err := q.read(ctx, object.URL())
	if err != nil {
		// An unreadable file can never succeed; park it immediately.
		_ = q.fs.Move(ctx, object.URL(), path.Join(q.deadDir, "invalid-"+object.Name()))
		return nil, err
	}
	message.State = StateProcessing
	message.UpdatedAt = time.Now()
	message.queue = q

	data, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := q.upload(ctx, path.Join(q.processingDir, object.Name()), data); err != nil {
		return nil, fmt.Errorf("failed to move message to processing: %w", err)
	}
	if err := q.fs.Delete(ctx, object.URL()); err != nil {
		return nil, fmt.Errorf("failed to remove pending message: %w", err)
	}
	return message, nil
}

// settle rewrites the message under destDir and clears its processing copy.
func (q *Queue[T]) settle(ctx context.Context, m *Message[T], destDir string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	name := m.ID + ".json"
	if err := q.upload(ctx, path.Join(destDir, name), data); err != nil {
		return fmt.Errorf("failed to write message to %s: %w", destDir, err)
	}
	processingPath := path.Join(q.processingDir, name)
	if exists, _ := q.fs.Exists(ctx, processingPath); exists {
		if err := q.fs.Delete(ctx, processingPath); err != nil {
			return fmt.Errorf("failed to remove processing message: %w", err)
		}
	}
	return nil
}

func (q *Queue[T]) upload(ctx context.Context, path string, data []byte) error {
	return q.fs.Upload(ctx, path, file.DefaultFileOsMode, bytes.NewBuffer(data))
}

func (q *Queue[T]) read(ctx context.Context, URL string) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", URL, err)
	}
	var message Message[T]
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", URL, err)
	}
	return &message, nil
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
