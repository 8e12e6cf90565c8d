package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/juke/internal/repositories"
	"github.com/desertthunder/juke/internal/shared"
	"github.com/desertthunder/juke/internal/tasks"
	"github.com/desertthunder/juke/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive submissions dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase(cmd.String("config"))
	if err != nil {
		return err
	}
	defer db.Close()

	submissions := repositories.NewSubmissionRepository(db)
	engine := tasks.NewRelayEngine(tasks.RelayOpts{
		Submissions: submissions,
		Logger:      r.logger,
	})

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/juke-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(engine, submissions)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
