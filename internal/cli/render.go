package cli

import (
	"fmt"
	"time"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

func stats(todos []model.Todo) (done, pending int) {
	for _, t := range todos {
		if t.IsComplete {
			done++
		} else {
			pending++
		}
	}
	return
}

func listLines(todos []model.Todo, group bool) []string {
	t := ui.Current()
	d, p := stats(todos)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Todos"),
		ui.C(t.Success, t.SymDone), d,
		ui.C(t.Pending, t.SymPending), p,
		ui.C(t.Accent, "Total"), len(todos),
	)

	lines := []string{header, ui.C(t.Muted, ui.ProgressBar(d, d+p, 28)), ""}
	if group {
		lines = append(lines, groupLines(todos)...)
	} else {
		lines = append(lines, flatLines(todos)...)
	}
	lines = append(lines, "", ui.C(t.Muted, "Tip: add with `todo add \"Buy milk\"`"))
	return lines
}

func flatLines(todos []model.Todo) []string {
	t := ui.Current()
	if len(todos) == 0 {
		return []string{ui.C(t.Muted, "no todos")}
	}
	out := make([]string, 0, len(todos))
	for _, todo := range todos {
		box, color := t.BoxUnchecked, t.Muted
		if todo.IsComplete {
			box, color = t.BoxChecked, t.Success
		}
		line := fmt.Sprintf("%s %s %s %s",
			ui.Dim(fmt.Sprintf("#%-3d", todo.ID)),
			ui.C(color, box),
			ui.Truncate(todo.Title, 60),
			ui.C(t.PriorityColor(string(todo.Priority)), string(todo.Priority)))
		if desc := todo.DescriptionText(); desc != "" {
			line += "  " + ui.C(t.Muted, ui.Truncate(desc, 40))
		}
		out = append(out, line)
	}
	return out
}

func groupLines(todos []model.Todo) []string {
	var pend, done []model.Todo
	for _, todo := range todos {
		if todo.IsComplete {
			done = append(done, todo)
		} else {
			pend = append(pend, todo)
		}
	}
	t := ui.Current()
	var lines []string
	lines = append(lines, ui.C(t.Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}

func detailLines(todo model.Todo) []string {
	t := ui.Current()
	status := ui.C(t.Pending, "pending")
	if todo.IsComplete {
		status = ui.C(t.Success, "done")
	}
	desc := todo.DescriptionText()
	if desc == "" {
		desc = ui.C(t.Muted, "(none)")
	}
	return []string{
		ui.C(t.Title, fmt.Sprintf("#%d %s", todo.ID, todo.Title)),
		"",
		"Description  " + desc,
		"Priority     " + ui.C(t.PriorityColor(string(todo.Priority)), string(todo.Priority)),
		"Status       " + status,
		"Created      " + formatTime(todo.CreatedAt.Time),
		"Updated      " + formatTime(todo.UpdatedAt.Time),
	}
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}
