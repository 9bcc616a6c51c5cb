package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/custctl/internal/shared"
	"github.com/desertthunder/custctl/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive customer dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, ui.Deps{
		Client:         r.client,
		Session:        r.session,
		PageSize:       r.config.Listing.PageSize,
		ExportDir:      r.config.Export.Dir,
		ExportFilename: r.config.Export.Filename,
		Now:            r.now,
		Logger:         fileLogger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
