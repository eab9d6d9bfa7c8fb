// Package messaging defines the queue abstraction that decouples run
// scheduling and approval events from their consumers.
package messaging

import "context"

// Vendor names a queue implementation.
type Vendor string

const (
	// VendorMemory is the in-process channel-backed queue.
	VendorMemory Vendor = "memory"
	// VendorFS is the file-system journal queue.
	VendorFS Vendor = "fs"
)

// Message is a consumable queue entry. A message must be either Ack-ed or
// Nack-ed exactly once.
type Message[T any] interface {
	// T returns the message payload.
	T() *T

	// Ack acknowledges successful processing.
	Ack() error

	// Nack reports failed processing; the queue may redeliver.
	Nack(err error) error
}

// Queue is an ordered message transport with at-most-one consumer per
// message.
type Queue[T any] interface {
	Publish(ctx context.Context, t *T) error

	Consume(ctx context.Context) (Message[T], error)
}
