package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/soundctl/rewind/internal/shared"
	"github.com/soundctl/rewind/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive report browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	year := cmd.Int("year")
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	engine, err := r.reportEngine()
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/rewind-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, engine, year)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
