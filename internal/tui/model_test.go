package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/form"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/page"
	"github.com/idilsaglam/tada/internal/server"
	"github.com/idilsaglam/tada/internal/store/sqlitestore"
)

// countingAPI wraps the real client to count reloads and inject failures.
type countingAPI struct {
	page.API
	lists      int
	failList   error
	failCreate error
}

func (c *countingAPI) List(ctx context.Context) ([]model.Todo, error) {
	c.lists++
	if c.failList != nil {
		return nil, c.failList
	}
	return c.API.List(ctx)
}

func (c *countingAPI) Create(ctx context.Context, data model.CreateTodoData) (model.Todo, error) {
	if c.failCreate != nil {
		return model.Todo{}, c.failCreate
	}
	return c.API.Create(ctx, data)
}

func newBackend(t *testing.T) *countingAPI {
	t.Helper()
	st, err := sqlitestore.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	srv := httptest.NewServer(server.New(st, log.New(io.Discard), server.Options{}).RegisterRoutes())
	t.Cleanup(func() {
		srv.Close()
		_ = st.Close()
	})
	return &countingAPI{API: api.New(srv.URL, api.WithHTTPClient(srv.Client()))}
}

func seed(t *testing.T, backend page.API, data ...model.CreateTodoData) {
	t.Helper()
	for _, d := range data {
		if _, err := backend.Create(context.Background(), d); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func newTestModel(t *testing.T, backend page.API) Model {
	t.Helper()
	m := New(context.Background(), backend, log.New(io.Discard))
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return run(t, m, m.Init())
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

// run executes a network command and feeds its result back.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	m, _ = send(t, m, cmd())
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyCtrlP = tea.KeyMsg{Type: tea.KeyCtrlP}
)

func TestInitialLoad(t *testing.T) {
	backend := newBackend(t)
	seed(t, backend,
		model.CreateTodoData{Title: "first", Priority: model.PriorityLow},
		model.CreateTodoData{Title: "second", Priority: model.PriorityHigh},
	)

	m := newTestModel(t, backend)
	if m.Controller().Loading() {
		t.Fatalf("expected loading to be cleared")
	}
	if got := len(m.list.Items()); got != 2 {
		t.Fatalf("expected 2 rows, got %d", got)
	}
	if got := m.Controller().Todos()[0].Title; got != "second" {
		t.Fatalf("expected newest first, got %q", got)
	}
	if len(m.items) != 2 {
		t.Fatalf("expected row state for every todo, got %d", len(m.items))
	}
}

func TestCreatePrependsWithoutReload(t *testing.T) {
	backend := newBackend(t)
	seed(t, backend, model.CreateTodoData{Title: "old", Priority: model.PriorityMedium})
	m := newTestModel(t, backend)
	lists := backend.lists

	m, _ = send(t, m, runes("a"))
	if m.mode != modeCreate {
		t.Fatalf("expected create mode")
	}
	m, _ = send(t, m, runes("  Buy milk  "))
	m, _ = send(t, m, keyCtrlP)
	m, cmd := send(t, m, keyEnter)
	m = run(t, m, cmd)

	todos := m.Controller().Todos()
	if len(todos) != 2 || todos[0].Title != "Buy milk" {
		t.Fatalf("expected new todo first, got %+v", todos)
	}
	if todos[0].Priority != model.PriorityHigh {
		t.Fatalf("expected cycled priority high, got %s", todos[0].Priority)
	}
	if backend.lists != lists {
		t.Fatalf("create must not reload, saw %d extra list calls", backend.lists-lists)
	}
	if m.mode != modeBrowse || m.createIn[fieldTitle].Value() != "" {
		t.Fatalf("expected form to close and reset after success")
	}
	if m.create.Priority != model.DefaultPriority {
		t.Fatalf("expected priority reset to default, got %s", m.create.Priority)
	}
}

func TestCreateBlankTitleSendsNothing(t *testing.T) {
	backend := newBackend(t)
	m := newTestModel(t, backend)

	m, _ = send(t, m, runes("a"))
	m, _ = send(t, m, runes("   "))
	m, cmd := send(t, m, keyEnter)
	if cmd != nil {
		t.Fatalf("expected no request for a blank title")
	}
	if m.formErr != form.ErrEmptyTitle.Error() {
		t.Fatalf("expected empty title error, got %q", m.formErr)
	}
}

func TestCreateFailureKeepsDraft(t *testing.T) {
	backend := newBackend(t)
	m := newTestModel(t, backend)
	backend.failCreate = errors.New("boom")

	m, _ = send(t, m, runes("a"))
	m, _ = send(t, m, runes("Buy milk"))
	m, cmd := send(t, m, keyEnter)
	m = run(t, m, cmd)

	if got := m.Controller().Error(); got != page.MsgCreateFailed {
		t.Fatalf("expected %q, got %q", page.MsgCreateFailed, got)
	}
	if m.mode != modeCreate || m.createIn[fieldTitle].Value() != "Buy milk" {
		t.Fatalf("expected the draft to stay open")
	}
	if !strings.Contains(m.View(), page.MsgCreateFailed) {
		t.Fatalf("expected banner in view")
	}
}

func TestToggleBlocksRowAndReloads(t *testing.T) {
	backend := newBackend(t)
	seed(t, backend, model.CreateTodoData{Title: "a", Priority: model.PriorityMedium})
	m := newTestModel(t, backend)
	lists := backend.lists

	m, cmd := send(t, m, keySpace)
	if cmd == nil {
		t.Fatalf("expected toggle request")
	}
	id := m.Controller().Todos()[0].ID
	if !m.items[id].Loading {
		t.Fatalf("expected row to be loading")
	}
	if _, again := send(t, m, keySpace); again != nil {
		t.Fatalf("expected busy row to ignore a second toggle")
	}

	m = run(t, m, cmd)
	if !m.Controller().Todos()[0].IsComplete {
		t.Fatalf("expected todo to be complete after reload")
	}
	if backend.lists != lists+1 {
		t.Fatalf("expected exactly one reload, got %d", backend.lists-lists)
	}
	if m.items[id].Loading {
		t.Fatalf("expected row loading to clear")
	}

	m, cmd = send(t, m, keySpace)
	m = run(t, m, cmd)
	if m.Controller().Todos()[0].IsComplete {
		t.Fatalf("expected second toggle to reopen")
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	backend := newBackend(t)
	seed(t, backend, model.CreateTodoData{Title: "a", Priority: model.PriorityMedium})
	m := newTestModel(t, backend)

	m, cmd := send(t, m, runes("d"))
	if cmd != nil || m.mode != modeConfirm {
		t.Fatalf("expected a confirmation prompt and no request")
	}
	if !strings.Contains(m.View(), page.DeletePrompt) {
		t.Fatalf("expected prompt in view")
	}
	m, cmd = send(t, m, runes("n"))
	if cmd != nil || m.mode != modeBrowse {
		t.Fatalf("expected decline to close the prompt without a request")
	}
	if len(m.Controller().Todos()) != 1 {
		t.Fatalf("expected todo to survive a declined delete")
	}

	m, _ = send(t, m, runes("d"))
	m, cmd = send(t, m, runes("y"))
	m = run(t, m, cmd)
	if len(m.Controller().Todos()) != 0 {
		t.Fatalf("expected todo to be gone after confirmed delete")
	}
	if len(m.items) != 0 {
		t.Fatalf("expected row state to be dropped, got %d", len(m.items))
	}
}

func TestEditSendsPatchAndLeavesEditMode(t *testing.T) {
	backend := newBackend(t)
	seed(t, backend, model.CreateTodoData{Title: "old title", Description: model.Ptr("old"), Priority: model.PriorityLow})
	m := newTestModel(t, backend)
	id := m.Controller().Todos()[0].ID

	m, _ = send(t, m, runes("e"))
	if m.mode != modeEdit || !m.items[id].Editing {
		t.Fatalf("expected edit mode")
	}
	if got := m.editIn[fieldTitle].Value(); got != "old title" {
		t.Fatalf("expected title prefilled, got %q", got)
	}
	m.editIn[fieldTitle].SetValue("  new title ")
	m.editIn[fieldDescription].SetValue("")

	m, cmd := send(t, m, keyEnter)
	m = run(t, m, cmd)

	got := m.Controller().Todos()[0]
	if got.Title != "new title" {
		t.Fatalf("expected trimmed title, got %q", got.Title)
	}
	// A cleared description is left out of the patch, so the server keeps it.
	if got.DescriptionText() != "old" {
		t.Fatalf("expected description untouched, got %q", got.DescriptionText())
	}
	if m.mode != modeBrowse || m.items[id].Editing {
		t.Fatalf("expected edit mode to end after a successful save")
	}
}

func TestEditCancelKeepsTodo(t *testing.T) {
	backend := newBackend(t)
	seed(t, backend, model.CreateTodoData{Title: "keep", Priority: model.PriorityLow})
	m := newTestModel(t, backend)
	id := m.Controller().Todos()[0].ID

	m, _ = send(t, m, runes("e"))
	m.editIn[fieldTitle].SetValue("changed")
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil {
		t.Fatalf("expected cancel to send nothing")
	}
	if m.mode != modeBrowse || m.items[id].Editing {
		t.Fatalf("expected edit mode to end on cancel")
	}
	if m.Controller().Todos()[0].Title != "keep" {
		t.Fatalf("expected title unchanged")
	}
}

func TestReloadFailureKeepsStaleList(t *testing.T) {
	backend := newBackend(t)
	seed(t, backend, model.CreateTodoData{Title: "a", Priority: model.PriorityMedium})
	m := newTestModel(t, backend)
	backend.failList = errors.New("down")

	m, cmd := send(t, m, runes("r"))
	m = run(t, m, cmd)
	if got := m.Controller().Error(); got != page.MsgLoadFailed {
		t.Fatalf("expected %q, got %q", page.MsgLoadFailed, got)
	}
	if len(m.Controller().Todos()) != 1 {
		t.Fatalf("expected stale list to stay")
	}

	m, _ = send(t, m, runes("x"))
	if m.Controller().Error() != "" {
		t.Fatalf("expected banner to be dismissed")
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, newBackend(t))
	_, cmd := send(t, m, runes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestPageKeysMoveOnePage(t *testing.T) {
	backend := newBackend(t)
	const n = 60
	for i := 0; i < n; i++ {
		seed(t, backend, model.CreateTodoData{Title: fmt.Sprintf("task-%d", i), Priority: model.PriorityLow})
	}
	m := newTestModel(t, backend)

	per := m.list.Paginator.PerPage
	if per <= 1 || per >= n {
		t.Fatalf("expected the window height to set the page length, got %d", per)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.list.Index(); got != per {
		t.Fatalf("expected next page to select row %d, got %d", per, got)
	}

	m, _ = send(t, m, runes("a"))
	if m.list.Paginator.PerPage >= per {
		t.Fatalf("expected the form bar to shrink the page, got %d (was %d)", m.list.Paginator.PerPage, per)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.list.Paginator.PerPage != per {
		t.Fatalf("expected page length %d after closing the form, got %d", per, m.list.Paginator.PerPage)
	}

	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 20})
	if m.list.Paginator.PerPage >= per {
		t.Fatalf("expected a shorter window to shrink the page, got %d", m.list.Paginator.PerPage)
	}
}
