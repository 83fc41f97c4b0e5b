package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// The whole file is rewritten on every mutation; fine for a local dev backend.

type fileData struct {
	NextID int64        `json:"next_id"`
	Todos  []model.Todo `json:"todos"`
}

type Store struct {
	path string
	now  func() time.Time

	mu   sync.Mutex
	data fileData
}

var _ store.Store = (*Store)(nil)

// Open reads path if it exists; a missing file starts an empty store.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("json store path is required")
	}
	s := &Store{path: path, now: time.Now, data: fileData{NextID: 1}}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read file: %w", err)
	}
	var data fileData
	if err := json.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	if data.NextID < 1 {
		data.NextID = 1
	}
	for _, t := range data.Todos {
		if t.ID >= data.NextID {
			data.NextID = t.ID + 1
		}
	}
	s.data = data
	return nil
}

// save must be called with mu held.
func (s *Store) save() error {
	b, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) Ping(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("json store dir: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, f store.Filter) ([]model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Todo, 0, len(s.data.Todos))
	for _, t := range s.data.Todos {
		if f.Complete != nil && t.IsComplete != *f.Complete {
			continue
		}
		out = append(out, clone(t))
	}
	store.SortNewestFirst(out)
	return out, nil
}

func (s *Store) Get(ctx context.Context, id int64) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Todo{}, store.ErrNotFound
	}
	return clone(s.data.Todos[i]), nil
}

func (s *Store) Create(ctx context.Context, in model.CreateTodoData) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	priority := in.Priority
	if priority == "" {
		priority = model.DefaultPriority
	}
	now := model.Timestamp{Time: s.now().UTC()}
	todo := model.Todo{
		ID:         s.data.NextID,
		Title:      in.Title,
		Priority:   priority,
		IsComplete: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Description != nil {
		todo.Description = model.Ptr(*in.Description)
	}
	s.data.NextID++
	s.data.Todos = append(s.data.Todos, todo)
	if err := s.save(); err != nil {
		return model.Todo{}, err
	}
	return clone(todo), nil
}

func (s *Store) Update(ctx context.Context, id int64, in model.UpdateTodoData) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Todo{}, store.ErrNotFound
	}
	todo := s.data.Todos[i]
	store.Apply(&todo, in)
	todo.UpdatedAt = model.Timestamp{Time: s.now().UTC()}
	s.data.Todos[i] = todo
	if err := s.save(); err != nil {
		return model.Todo{}, err
	}
	return clone(todo), nil
}

func (s *Store) SetComplete(ctx context.Context, id int64, complete bool) (model.Todo, error) {
	return s.Update(ctx, id, model.UpdateTodoData{IsComplete: &complete})
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.data.Todos = append(s.data.Todos[:i], s.data.Todos[i+1:]...)
	return s.save()
}

func (s *Store) indexOf(id int64) int {
	for i, t := range s.data.Todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func clone(t model.Todo) model.Todo {
	if t.Description != nil {
		t.Description = model.Ptr(*t.Description)
	}
	return t
}
