package jsonstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

func TestStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	first, err := s.Create(context.Background(), model.CreateTodoData{Title: "Water plants", Priority: model.PriorityLow})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.SetComplete(context.Background(), first.ID, true); err != nil {
		t.Fatalf("complete: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Get(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsComplete || got.Title != "Water plants" || got.Priority != model.PriorityLow {
		t.Fatalf("unexpected todo after reopen: %+v", got)
	}

	second, err := reopened.Create(context.Background(), model.CreateTodoData{Title: "Call mom"})
	if err != nil {
		t.Fatalf("create after reopen: %v", err)
	}
	if second.ID != first.ID+1 {
		t.Fatalf("expected next id %d, got %d", first.ID+1, second.ID)
	}
}

func TestDeleteRemovesTodo(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "todos.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	todo, err := s.Create(context.Background(), model.CreateTodoData{Title: "Temp"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(context.Background(), todo.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, err := s.List(context.Background(), store.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty store, got %d todos", len(all))
	}
	if err := s.Delete(context.Background(), todo.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
