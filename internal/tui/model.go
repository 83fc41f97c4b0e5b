// Package tui is the interactive todo screen. Network calls run inside
// tea.Cmd functions; their results come back as messages and every write
// to the page controller happens in Update.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/form"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/page"
)

type mode int

const (
	modeBrowse mode = iota
	modeCreate
	modeEdit
	modeConfirm
)

const (
	fieldTitle = iota
	fieldDescription
	fieldCount
)

type loadedMsg struct {
	todos []model.Todo
	err   error
}

type createdMsg struct {
	todo model.Todo
	err  error
}

type mutatedMsg struct {
	result page.MutationResult
}

type Model struct {
	ctx    context.Context
	api    page.API
	ctrl   *page.Controller
	logger *log.Logger
	keys   keyMap

	items map[int64]*page.Item
	list  list.Model

	mode     mode
	create   form.CreateForm
	createIn [fieldCount]textinput.Model
	edit     form.EditForm
	editIn   [fieldCount]textinput.Model
	focus    int
	formErr  string
	creating bool
	targetID int64 // row being edited or confirmed

	width, height int
}

func New(ctx context.Context, api page.API, logger *log.Logger) Model {
	if logger == nil {
		logger = log.Default()
	}
	keys := defaultKeys()

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	l.AdditionalShortHelpKeys = keys.listHelp
	l.AdditionalFullHelpKeys = keys.listHelp
	// q and esc are handled here so a cancelled form never quits.
	l.KeyMap.Quit.SetEnabled(false)

	m := Model{
		ctx:    ctx,
		api:    api,
		ctrl:   page.New(api, logger),
		logger: logger,
		keys:   keys,
		items:  map[int64]*page.Item{},
		list:   l,
		create: form.NewCreateForm(),
		width:  80,
		height: 24,
	}
	m.createIn = newInputs("What needs doing?")
	m.editIn = newInputs("Title")
	m.list.Title = m.header()
	m.resize()
	return m
}

func newInputs(titlePlaceholder string) [fieldCount]textinput.Model {
	var in [fieldCount]textinput.Model
	in[fieldTitle] = textinput.New()
	in[fieldTitle].Prompt = "> "
	in[fieldTitle].Placeholder = titlePlaceholder
	in[fieldTitle].CharLimit = 200

	in[fieldDescription] = textinput.New()
	in[fieldDescription].Prompt = "> "
	in[fieldDescription].Placeholder = "Description (optional)"
	in[fieldDescription].CharLimit = 2000
	return in
}

// Controller exposes the page state, mostly for tests.
func (m Model) Controller() *page.Controller { return m.ctrl }

func (m Model) Init() tea.Cmd { return m.fetch() }

// ---- commands: network I/O only, no state writes ----

func (m Model) fetch() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		todos, err := ctrl.Fetch(ctx)
		return loadedMsg{todos: todos, err: err}
	}
}

func (m Model) submitCreate(data model.CreateTodoData) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		todo, err := api.Create(ctx, data)
		return createdMsg{todo: todo, err: err}
	}
}

func (m Model) runMutation(mu page.Mutation) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return mutatedMsg{result: ctrl.RunMutation(ctx, mu)}
	}
}

// ---- update ----

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		_ = m.ctrl.ApplyLoad(msg.todos, msg.err)
		return m, m.refresh()

	case createdMsg:
		m.creating = false
		if err := m.ctrl.ApplyCreate(msg.todo, msg.err); err == nil {
			m.create.Reset()
			m.createIn = newInputs("What needs doing?")
			if m.mode == modeCreate {
				m.closeForm()
			}
		}
		return m, m.refresh()

	case mutatedMsg:
		r := msg.result
		if it, ok := m.items[r.Mutation.ID]; ok {
			it.Finish(r)
			if m.mode == modeEdit && m.targetID == r.Mutation.ID && !it.Editing {
				m.closeForm()
			}
		}
		_ = m.ctrl.ApplyMutation(r)
		return m, m.refresh()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeCreate, modeEdit:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		if m.list.FilterState() != list.Filtering {
			if next, cmd, handled := m.updateBrowse(msg); handled {
				return next, cmd
			}
		}
	}

	if m.mode == modeCreate || m.mode == modeEdit {
		in := m.inputs()
		var cmd tea.Cmd
		in[m.focus], cmd = in[m.focus].Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if msg.String() == "esc" && m.list.FilterState() == list.FilterApplied {
			return m, nil, false
		}
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Add):
		m.setMode(modeCreate)
		m.formErr = ""
		return m, m.focusField(fieldTitle), true

	case key.Matches(msg, m.keys.Reload):
		return m, m.fetch(), true

	case key.Matches(msg, m.keys.Dismiss):
		m.ctrl.ClearError()
		return m, nil, true

	case key.Matches(msg, m.keys.Toggle):
		it, todo, ok := m.selected()
		if !ok || !it.Begin() {
			return m, nil, true
		}
		return m, m.runMutation(page.ToggleComplete(todo)), true

	case key.Matches(msg, m.keys.Edit):
		it, todo, ok := m.selected()
		if !ok || it.Loading {
			return m, nil, true
		}
		it.Editing = true
		m.edit = form.NewEditForm(todo)
		m.editIn = newInputs("Title")
		m.editIn[fieldTitle].SetValue(m.edit.Title)
		m.editIn[fieldDescription].SetValue(m.edit.Description)
		m.targetID = todo.ID
		m.setMode(modeEdit)
		m.formErr = ""
		return m, m.focusField(fieldTitle), true

	case key.Matches(msg, m.keys.Delete):
		it, todo, ok := m.selected()
		if !ok || !it.RequestDelete() {
			return m, nil, true
		}
		m.targetID = todo.ID
		m.setMode(modeConfirm)
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.mode == modeEdit {
			if it, ok := m.items[m.targetID]; ok {
				it.Editing = false
			}
		}
		m.closeForm()
		return m, nil

	case key.Matches(msg, m.keys.Next):
		return m, m.focusField((m.focus + 1) % fieldCount)

	case key.Matches(msg, m.keys.Prev):
		return m, m.focusField((m.focus + fieldCount - 1) % fieldCount)

	case key.Matches(msg, m.keys.Priority):
		if m.mode == modeCreate {
			m.create.Priority = m.create.Priority.Next()
		} else {
			m.edit.Priority = m.edit.Priority.Next()
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submitForm()
	}

	in := m.inputs()
	var cmd tea.Cmd
	in[m.focus], cmd = in[m.focus].Update(msg)
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	if m.mode == modeCreate {
		if m.creating {
			return m, nil
		}
		m.create.Title = m.createIn[fieldTitle].Value()
		m.create.Description = m.createIn[fieldDescription].Value()
		data, err := m.create.Data()
		if err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		m.formErr = ""
		m.creating = true
		return m, m.submitCreate(data)
	}

	it, ok := m.items[m.targetID]
	if !ok {
		m.closeForm()
		return m, nil
	}
	m.edit.Title = m.editIn[fieldTitle].Value()
	m.edit.Description = m.editIn[fieldDescription].Value()
	data, err := m.edit.Data()
	if err != nil {
		m.formErr = err.Error()
		return m, nil
	}
	m.formErr = ""
	if !it.Begin() {
		return m, nil
	}
	return m, m.runMutation(page.SaveEdit(m.edit.ID, data))
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	it, ok := m.items[m.targetID]
	if !ok {
		m.setMode(modeBrowse)
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Yes):
		m.setMode(modeBrowse)
		mu, yes := it.Confirm(true)
		if !yes || !it.Begin() {
			return m, nil
		}
		return m, m.runMutation(mu)
	case key.Matches(msg, m.keys.No):
		m.setMode(modeBrowse)
		it.Confirm(false)
	}
	return m, nil
}

// ---- helpers ----

// refresh rebuilds rows from the controller after any state change.
func (m *Model) refresh() tea.Cmd {
	todos := m.ctrl.Todos()
	m.items = page.SyncItems(m.items, todos)
	rows := make([]list.Item, 0, len(todos))
	for _, t := range todos {
		rows = append(rows, todoItem{todo: t, state: m.items[t.ID]})
	}
	m.list.Title = m.header()
	return m.list.SetItems(rows)
}

func (m Model) header() string {
	d, p := m.ctrl.Stats()
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), d,
		pendingStyle.Render("•"), p,
		accentStyle.Render("Total"), d+p,
	)
}

func (m Model) selected() (*page.Item, model.Todo, bool) {
	row, ok := m.list.SelectedItem().(todoItem)
	if !ok {
		return nil, model.Todo{}, false
	}
	it, ok := m.items[row.todo.ID]
	if !ok {
		return nil, model.Todo{}, false
	}
	return it, row.todo, true
}

func (m *Model) inputs() *[fieldCount]textinput.Model {
	if m.mode == modeEdit {
		return &m.editIn
	}
	return &m.createIn
}

func (m *Model) focusField(i int) tea.Cmd {
	in := m.inputs()
	for j := range in {
		in[j].Blur()
	}
	m.focus = i
	return in[i].Focus()
}

func (m *Model) closeForm() {
	in := m.inputs()
	for j := range in {
		in[j].Blur()
	}
	m.setMode(modeBrowse)
	m.focus = fieldTitle
	m.formErr = ""
}

// setMode switches screens and gives the list whatever room the bottom
// bar leaves.
func (m *Model) setMode(md mode) {
	m.mode = md
	m.resize()
}

// resize keeps the list's size, and so its page length, in step with the
// window and the open bar.
func (m *Model) resize() {
	h := m.height - 6
	if m.mode != modeBrowse {
		h -= 7
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

// ---- view ----

func (m Model) View() string {
	var b strings.Builder
	if msg := m.ctrl.Error(); msg != "" {
		b.WriteString(errorStyle.Render("✖ "+msg) + mutedStyle.Render("  (x to dismiss, r to retry)") + "\n")
	}
	if m.ctrl.Loading() && len(m.ctrl.Todos()) == 0 {
		b.WriteString(mutedStyle.Render("Loading todos..."))
	} else {
		b.WriteString(m.list.View())
	}

	switch m.mode {
	case modeCreate, modeEdit:
		b.WriteString("\n" + barString(m.formView()))
	case modeConfirm:
		b.WriteString("\n" + barString(errorStyle.Render(page.DeletePrompt)+mutedStyle.Render("  (y/n)")))
	}
	return panelString(b.String())
}

func (m Model) formView() string {
	title, priority, in := "Add todo", m.create.Priority, m.createIn
	if m.mode == modeEdit {
		title, priority, in = "Edit todo", m.edit.Priority, m.editIn
	}
	if m.formErr != "" {
		title += ": " + errorStyle.Render(m.formErr)
	}
	lines := []string{
		title,
		in[fieldTitle].View(),
		in[fieldDescription].View(),
		"Priority " + priorityBadge(priority) + mutedStyle.Render("  (ctrl+p to change)"),
	}
	if m.creating {
		lines = append(lines, mutedStyle.Render("Saving..."))
	}
	return strings.Join(lines, "\n")
}
