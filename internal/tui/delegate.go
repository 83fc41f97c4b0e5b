package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/page"
	"github.com/idilsaglam/tada/internal/ui"
)

// todoItem adapts a todo and its row state to bubbles/list.Item.
type todoItem struct {
	todo  model.Todo
	state *page.Item
}

func (i todoItem) Title() string       { return i.todo.Title }
func (i todoItem) Description() string { return i.todo.DescriptionText() }
func (i todoItem) FilterValue() string { return i.todo.Title + " " + i.todo.DescriptionText() }

// Custom delegate to control how rows render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(todoItem)
	if !ok {
		return
	}
	fmt.Fprintln(w, renderRow(it, index == m.Index(), m.Width()))
}

func renderRow(it todoItem, selected bool, width int) string {
	box := mutedStyle.Render(boxUnchecked)
	title := it.todo.Title
	if it.todo.IsComplete {
		box = successStyle.Render(boxChecked)
		title = doneStyle.Render(title)
	}

	line := fmt.Sprintf("%s %s %s", box, title, priorityBadge(it.todo.Priority))
	if desc := it.todo.DescriptionText(); desc != "" {
		room := width - len(it.todo.Title) - 20
		if room < 10 {
			room = 10
		}
		line += mutedStyle.Render("  " + ui.Truncate(desc, room))
	}
	if it.state != nil {
		switch {
		case it.state.Loading:
			line += mutedStyle.Render("  …")
		case it.state.Confirming:
			line += errorStyle.Render("  delete?")
		case it.state.Editing:
			line += accentStyle.Render("  editing")
		}
	}

	prefix := "  "
	if selected {
		prefix = selectedStyle.Render("> ")
	}
	return prefix + line
}
