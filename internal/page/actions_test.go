package page

import (
	"errors"
	"testing"

	"github.com/idilsaglam/tada/internal/model"
)

func TestItemBeginBlocksWhileLoading(t *testing.T) {
	it := &Item{ID: 1}
	if !it.Begin() {
		t.Fatalf("expected first Begin to succeed")
	}
	if it.Begin() {
		t.Fatalf("expected second Begin to be refused while loading")
	}
	if it.RequestDelete() {
		t.Fatalf("expected delete request to be refused while loading")
	}
	it.Finish(MutationResult{Mutation: ToggleComplete(model.Todo{ID: 1})})
	if it.Loading {
		t.Fatalf("expected Finish to clear loading")
	}
}

func TestItemDeleteNeedsConfirmation(t *testing.T) {
	it := &Item{ID: 9}
	if !it.RequestDelete() || !it.Confirming {
		t.Fatalf("expected confirmation prompt to open")
	}
	if _, ok := it.Confirm(false); ok {
		t.Fatalf("declined prompt must not produce a delete")
	}
	if it.Confirming {
		t.Fatalf("expected prompt closed")
	}

	it.RequestDelete()
	m, ok := it.Confirm(true)
	if !ok || m.Op != OpDelete || m.ID != 9 {
		t.Fatalf("expected delete mutation for 9, got %+v ok=%v", m, ok)
	}
}

func TestItemFinishEditing(t *testing.T) {
	it := &Item{ID: 3, Editing: true}
	it.Begin()
	it.Finish(MutationResult{Mutation: SaveEdit(3, model.UpdateTodoData{}), Err: errors.New("boom")})
	if !it.Editing {
		t.Fatalf("failed save must keep edit mode")
	}

	it.Begin()
	it.Finish(MutationResult{Mutation: SaveEdit(3, model.UpdateTodoData{})})
	if it.Editing {
		t.Fatalf("successful save must leave edit mode")
	}
}

func TestSyncItemsKeepsFlags(t *testing.T) {
	prev := map[int64]*Item{1: {ID: 1, Editing: true}, 2: {ID: 2}}
	next := SyncItems(prev, []model.Todo{{ID: 1}, {ID: 3}})
	if len(next) != 2 {
		t.Fatalf("expected 2 items, got %d", len(next))
	}
	if !next[1].Editing {
		t.Fatalf("expected item 1 to keep its editing flag")
	}
	if _, ok := next[2]; ok {
		t.Fatalf("expected item 2 to be dropped")
	}
	if next[3] == nil || next[3].ID != 3 {
		t.Fatalf("expected fresh item for 3")
	}
}

func TestMutationOps(t *testing.T) {
	cases := []struct {
		m  Mutation
		op Op
	}{
		{ToggleComplete(model.Todo{ID: 1}), OpComplete},
		{ToggleComplete(model.Todo{ID: 1, IsComplete: true}), OpReopen},
		{Complete(2), OpComplete},
		{Reopen(2), OpReopen},
		{Delete(3), OpDelete},
		{SaveEdit(4, model.UpdateTodoData{}), OpSaveEdit},
		{Replace(4, model.UpdateTodoData{}), OpReplace},
	}
	for _, c := range cases {
		if c.m.Op != c.op {
			t.Fatalf("expected %s, got %s", c.op, c.m.Op)
		}
		if c.m.run == nil {
			t.Fatalf("%s: mutation has no request", c.op)
		}
	}
}
