package page

import (
	"context"

	"github.com/idilsaglam/tada/internal/model"
)

// DeletePrompt is asked before any delete is sent.
const DeletePrompt = "Are you sure you want to delete this todo?"

type Op string

const (
	OpComplete Op = "complete"
	OpReopen   Op = "reopen"
	OpDelete   Op = "delete"
	OpSaveEdit Op = "patch"
	OpReplace  Op = "update"
)

// Mutation is a single non-create request. Build one with ToggleComplete,
// Complete, Reopen, Delete, SaveEdit or Replace.
type Mutation struct {
	Op  Op
	ID  int64
	run func(ctx context.Context, api API) error
}

type MutationResult struct {
	Mutation Mutation
	Err      error
	Todos    []model.Todo
	LoadErr  error
}

// ToggleComplete reopens a complete todo and completes an open one.
func ToggleComplete(t model.Todo) Mutation {
	if t.IsComplete {
		return Reopen(t.ID)
	}
	return Complete(t.ID)
}

func Complete(id int64) Mutation {
	return Mutation{Op: OpComplete, ID: id, run: func(ctx context.Context, api API) error {
		_, err := api.Complete(ctx, id)
		return err
	}}
}

func Reopen(id int64) Mutation {
	return Mutation{Op: OpReopen, ID: id, run: func(ctx context.Context, api API) error {
		_, err := api.Reopen(ctx, id)
		return err
	}}
}

func Delete(id int64) Mutation {
	return Mutation{Op: OpDelete, ID: id, run: func(ctx context.Context, api API) error {
		return api.Delete(ctx, id)
	}}
}

// SaveEdit sends a partial update (PATCH).
func SaveEdit(id int64, data model.UpdateTodoData) Mutation {
	return Mutation{Op: OpSaveEdit, ID: id, run: func(ctx context.Context, api API) error {
		_, err := api.Patch(ctx, id, data)
		return err
	}}
}

// Replace sends the PUT variant.
func Replace(id int64, data model.UpdateTodoData) Mutation {
	return Mutation{Op: OpReplace, ID: id, run: func(ctx context.Context, api API) error {
		_, err := api.Update(ctx, id, data)
		return err
	}}
}

// Item carries the per-row flags of one rendered todo. Loading blocks
// further actions on the row while a request is in flight; Editing swaps
// the row for its inline edit form; Confirming means a delete prompt is open.
type Item struct {
	ID         int64
	Loading    bool
	Editing    bool
	Confirming bool
}

// Begin marks the row busy. It returns false if the row already is.
func (it *Item) Begin() bool {
	if it.Loading {
		return false
	}
	it.Loading = true
	return true
}

// Finish clears Loading. A successful save also leaves edit mode; a failed
// one keeps the draft open.
func (it *Item) Finish(r MutationResult) {
	it.Loading = false
	if r.Err == nil && (r.Mutation.Op == OpSaveEdit || r.Mutation.Op == OpReplace) {
		it.Editing = false
	}
}

// RequestDelete opens the confirmation step. No request is made.
func (it *Item) RequestDelete() bool {
	if it.Loading {
		return false
	}
	it.Confirming = true
	return true
}

// Confirm closes the prompt and returns the delete mutation only when
// the user said yes.
func (it *Item) Confirm(yes bool) (Mutation, bool) {
	it.Confirming = false
	if !yes {
		return Mutation{}, false
	}
	return Delete(it.ID), true
}

// SyncItems rebuilds row state after a reload, keeping flags for ids that
// are still present.
func SyncItems(prev map[int64]*Item, todos []model.Todo) map[int64]*Item {
	next := make(map[int64]*Item, len(todos))
	for _, t := range todos {
		if it, ok := prev[t.ID]; ok {
			next[t.ID] = it
			continue
		}
		next[t.ID] = &Item{ID: t.ID}
	}
	return next
}
