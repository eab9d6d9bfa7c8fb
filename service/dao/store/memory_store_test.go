package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type entity struct {
	ID   string
	Name string
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[string, entity](func(e *entity) string { return e.ID })

	loaded, err := s.Load(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, loaded)

	assert.NoError(t, s.Save(ctx, &entity{ID: "e1", Name: "first"}))
	assert.NoError(t, s.Save(ctx, &entity{ID: "e2", Name: "second"}))
	assert.NoError(t, s.Save(ctx, &entity{ID: "e1", Name: "first-updated"}))

	loaded, err = s.Load(ctx, "e1")
	assert.NoError(t, err)
	assert.EqualValues(t, "first-updated", loaded.Name)

	all, err := s.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	assert.NoError(t, s.Delete(ctx, "e1"))
	loaded, err = s.Load(ctx, "e1")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}
