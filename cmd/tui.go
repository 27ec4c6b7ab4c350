package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/notehub/internal/session"
	"github.com/desertthunder/notehub/internal/shared"
	"github.com/desertthunder/notehub/internal/ui"
	"github.com/urfave/cli/v3"
)

// Browse launches the interactive terminal notes browser.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/notehub-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	api, err := r.backend(ctx, cmd)
	if err != nil {
		return err
	}

	provider := session.NewProvider(api, session.NewStore(), shared.WithLogger(fileLogger, "component", "session"))
	model := ui.NewModel(ctx, provider, api, ui.Options{
		PerPage:   r.config.Search.PerPage,
		Debounce:  r.config.Search.Debounce(),
		StaleTime: r.config.Search.StaleTime(),
		Logger:    fileLogger,
	})
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
