package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/tada/internal/model"
)

var (
	titleStyle    lipgloss.Style
	successStyle  lipgloss.Style
	pendingStyle  lipgloss.Style
	accentStyle   lipgloss.Style
	mutedStyle    lipgloss.Style
	errorStyle    lipgloss.Style
	selectedStyle lipgloss.Style
	doneStyle     lipgloss.Style
	helpStyle     lipgloss.Style
	borderColor   lipgloss.Color

	priorityStyles map[model.Priority]lipgloss.Style

	boxChecked   string
	boxUnchecked string
)

func init() { setTheme("classic") }

// setTheme mirrors the plain-terminal themes of internal/ui.
func setTheme(name string) {
	titleStyle = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	doneStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	helpStyle = lipgloss.NewStyle().Faint(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
	boxChecked, boxUnchecked = "☑", "☐"

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mono":
		plain := lipgloss.NewStyle()
		successStyle, pendingStyle, accentStyle = plain, plain, plain
		errorStyle = plain.Bold(true)
		borderColor = ""
		boxChecked, boxUnchecked = "[x]", "[ ]"
		priorityStyles = map[model.Priority]lipgloss.Style{
			model.PriorityLow: plain, model.PriorityMedium: plain, model.PriorityHigh: plain.Bold(true),
		}
		return
	case "neon":
		titleStyle = titleStyle.Foreground(lipgloss.Color("201"))
		successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("48"))
		pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
		accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
		borderColor = lipgloss.Color("201")
		boxChecked, boxUnchecked = "◼", "◻"
	default:
		successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
		accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
		borderColor = lipgloss.Color("8")
	}
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	priorityStyles = map[model.Priority]lipgloss.Style{
		model.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		model.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		model.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

func priorityBadge(p model.Priority) string {
	return priorityStyles[p].Render(string(p))
}

func panelString(inner string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1)
	return border.Render(inner)
}

func barString(inner string) string {
	bar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1)
	return bar.Render(inner)
}
