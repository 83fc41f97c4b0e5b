// Package form holds the create and edit drafts and the single validation
// rule they share: nothing is sent unless the trimmed title is non-empty.
package form

import (
	"context"
	"errors"
	"strings"

	"github.com/idilsaglam/tada/internal/model"
)

var ErrEmptyTitle = errors.New("title cannot be empty")

// NormalizeTitle trims s and rejects what is left if it is empty.
func NormalizeTitle(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyTitle
	}
	return s, nil
}

// Optional trims s; blank becomes nil so the field is left out of a payload.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// CreateForm is the draft behind "add".
type CreateForm struct {
	Title       string
	Description string
	Priority    model.Priority
}

func NewCreateForm() CreateForm {
	return CreateForm{Priority: model.DefaultPriority}
}

func (f CreateForm) Valid() bool { return strings.TrimSpace(f.Title) != "" }

// Data trims the draft into a payload. An empty description becomes absent.
func (f CreateForm) Data() (model.CreateTodoData, error) {
	title, err := NormalizeTitle(f.Title)
	if err != nil {
		return model.CreateTodoData{}, err
	}
	priority := f.Priority
	if !priority.Valid() {
		priority = model.DefaultPriority
	}
	return model.CreateTodoData{
		Title:       title,
		Description: Optional(f.Description),
		Priority:    priority,
	}, nil
}

// Reset restores the defaults.
func (f *CreateForm) Reset() { *f = NewCreateForm() }

// Submit hands the payload to create and resets the draft once it succeeds.
// An invalid draft returns ErrEmptyTitle without calling create.
func (f *CreateForm) Submit(ctx context.Context, create func(context.Context, model.CreateTodoData) error) error {
	data, err := f.Data()
	if err != nil {
		return err
	}
	if err := create(ctx, data); err != nil {
		return err
	}
	f.Reset()
	return nil
}

// EditForm is a transient draft of one todo being edited inline.
type EditForm struct {
	ID          int64
	Title       string
	Description string
	Priority    model.Priority
}

func NewEditForm(t model.Todo) EditForm {
	return EditForm{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.DescriptionText(),
		Priority:    t.Priority,
	}
}

func (f EditForm) Valid() bool { return strings.TrimSpace(f.Title) != "" }

// Data builds the partial update. A blank description is left out of the
// payload rather than sent as "".
func (f EditForm) Data() (model.UpdateTodoData, error) {
	title, err := NormalizeTitle(f.Title)
	if err != nil {
		return model.UpdateTodoData{}, err
	}
	data := model.UpdateTodoData{
		Title:       &title,
		Description: Optional(f.Description),
	}
	if f.Priority.Valid() {
		data.Priority = model.Ptr(f.Priority)
	}
	return data, nil
}

// Submit calls save with the payload; the caller leaves edit mode on nil.
func (f EditForm) Submit(ctx context.Context, save func(context.Context, int64, model.UpdateTodoData) error) error {
	data, err := f.Data()
	if err != nil {
		return err
	}
	return save(ctx, f.ID, data)
}
