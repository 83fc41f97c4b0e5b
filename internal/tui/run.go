package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/page"
)

type Options struct {
	Theme  string
	Logger *log.Logger
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, api page.API, opt Options) error {
	setTheme(opt.Theme)
	m := New(ctx, api, opt.Logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
