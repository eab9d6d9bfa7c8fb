// Package dao defines the generic persistence contract used by the task
// registry and the approval gate. Implementations are free to back it with
// memory, a file system or a database; the engine only relies on this
// interface.
package dao

import (
	"context"
)

// Service is a generic store of entities T keyed by K.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
