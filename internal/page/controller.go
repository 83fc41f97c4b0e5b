// Package page owns the authoritative in-memory todo collection.
//
// Consistency rule: create merges the server's returned entity at the
// front of the list; every other mutation (update, patch, toggle, delete)
// is followed by a full reload. A reload costs one extra request and keeps
// the local list identical to the server's view, including server-computed
// updated_at and ordering.
//
// The controller is not safe for concurrent use. Callers that do network
// I/O off the main loop use the Fetch/Run halves there and apply the
// results on the loop that owns the controller.
package page

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/model"
)

// User-facing messages. All other failures are logged only.
const (
	MsgLoadFailed   = "Failed to load todos"
	MsgCreateFailed = "Failed to create todo"
)

var errEmptyMutation = errors.New("empty mutation")

// ReloadError means the mutation reached the server but the reload after
// it failed. The collection still holds the pre-mutation list.
type ReloadError struct {
	Err error
}

func (e *ReloadError) Error() string { return "reload after mutation: " + e.Err.Error() }

func (e *ReloadError) Unwrap() error { return e.Err }

// API is the slice of the REST client the controller drives.
type API interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, data model.CreateTodoData) (model.Todo, error)
	Update(ctx context.Context, id int64, data model.UpdateTodoData) (model.Todo, error)
	Patch(ctx context.Context, id int64, data model.UpdateTodoData) (model.Todo, error)
	Complete(ctx context.Context, id int64) (model.Todo, error)
	Reopen(ctx context.Context, id int64) (model.Todo, error)
	Delete(ctx context.Context, id int64) error
}

type Controller struct {
	api    API
	logger *log.Logger

	todos   []model.Todo
	loading bool
	err     string
}

// New starts in the loading state with an empty collection.
func New(api API, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{api: api, logger: logger, todos: []model.Todo{}, loading: true}
}

// Todos returns a copy of the current collection.
func (c *Controller) Todos() []model.Todo {
	out := make([]model.Todo, len(c.todos))
	copy(out, c.todos)
	return out
}

func (c *Controller) Loading() bool { return c.loading }

// Error is the current user-facing message, or "".
func (c *Controller) Error() string { return c.err }

// ClearError dismisses the banner without touching the collection.
func (c *Controller) ClearError() { c.err = "" }

func (c *Controller) Find(id int64) (model.Todo, bool) {
	for _, t := range c.todos {
		if t.ID == id {
			return t, true
		}
	}
	return model.Todo{}, false
}

func (c *Controller) Stats() (done, pending int) {
	for _, t := range c.todos {
		if t.IsComplete {
			done++
		} else {
			pending++
		}
	}
	return
}

// Load fetches the collection and applies it.
func (c *Controller) Load(ctx context.Context) error {
	return c.ApplyLoad(c.Fetch(ctx))
}

// Fetch performs the list request without touching state.
func (c *Controller) Fetch(ctx context.Context) ([]model.Todo, error) {
	return c.api.List(ctx)
}

// ApplyLoad replaces the collection on success. On failure the previous
// collection stays on screen and the load message is set. Loading is
// cleared either way.
func (c *Controller) ApplyLoad(todos []model.Todo, err error) error {
	defer func() { c.loading = false }()
	if err != nil {
		c.err = MsgLoadFailed
		c.logger.Error("load todos", "err", err)
		return err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	c.todos = todos
	c.err = ""
	return nil
}

// Create sends data as-is; validation belongs to the form.
func (c *Controller) Create(ctx context.Context, data model.CreateTodoData) (model.Todo, error) {
	todo, err := c.api.Create(ctx, data)
	return todo, c.ApplyCreate(todo, err)
}

// ApplyCreate prepends the server's entity without reloading.
func (c *Controller) ApplyCreate(todo model.Todo, err error) error {
	if err != nil {
		c.err = MsgCreateFailed
		c.logger.Error("create todo", "err", err)
		return err
	}
	next := make([]model.Todo, 0, len(c.todos)+1)
	next = append(next, todo)
	c.todos = append(next, c.todos...)
	return nil
}

// Apply runs a non-create mutation and then reloads.
func (c *Controller) Apply(ctx context.Context, m Mutation) error {
	return c.ApplyMutation(c.RunMutation(ctx, m))
}

// RunMutation sends the mutation and, only if it succeeded, fetches the
// fresh collection. It does not touch controller state.
func (c *Controller) RunMutation(ctx context.Context, m Mutation) MutationResult {
	r := MutationResult{Mutation: m}
	if m.run == nil {
		r.Err = errEmptyMutation
		return r
	}
	if r.Err = m.run(ctx, c.api); r.Err != nil {
		return r
	}
	r.Todos, r.LoadErr = c.Fetch(ctx)
	return r
}

// ApplyMutation logs a failed mutation and leaves state alone; a
// successful one is followed by applying the reload. A failed reload is
// returned as a *ReloadError.
func (c *Controller) ApplyMutation(r MutationResult) error {
	if r.Err != nil {
		c.logger.Error("mutation failed", "op", r.Mutation.Op, "id", r.Mutation.ID, "err", r.Err)
		return r.Err
	}
	if err := c.ApplyLoad(r.Todos, r.LoadErr); err != nil {
		return &ReloadError{Err: err}
	}
	return nil
}
