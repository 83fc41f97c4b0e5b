// Package store defines persistence for the development backend.
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/idilsaglam/tada/internal/model"
)

var ErrNotFound = errors.New("todo not found")

// Filter narrows List. A nil Complete lists everything.
type Filter struct {
	Complete *bool
}

// Store is implemented by sqlitestore and jsonstore. Implementations
// assign IDs and timestamps; Update applies only non-nil fields.
type Store interface {
	List(ctx context.Context, f Filter) ([]model.Todo, error)
	Get(ctx context.Context, id int64) (model.Todo, error)
	Create(ctx context.Context, in model.CreateTodoData) (model.Todo, error)
	Update(ctx context.Context, id int64, in model.UpdateTodoData) (model.Todo, error)
	SetComplete(ctx context.Context, id int64, complete bool) (model.Todo, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Close() error
}

// SortNewestFirst orders by created_at descending, ties broken by id descending.
func SortNewestFirst(todos []model.Todo) {
	sort.SliceStable(todos, func(i, j int) bool {
		a, b := todos[i], todos[j]
		if !a.CreatedAt.Equal(b.CreatedAt.Time) {
			return a.CreatedAt.After(b.CreatedAt.Time)
		}
		return a.ID > b.ID
	})
}

// Apply copies the non-nil fields of in onto t.
func Apply(t *model.Todo, in model.UpdateTodoData) {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = model.Ptr(*in.Description)
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.IsComplete != nil {
		t.IsComplete = *in.IsComplete
	}
}
