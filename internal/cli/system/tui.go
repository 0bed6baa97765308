package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nudge/internal/cli"
	"github.com/julianstephens/nudge/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Manager.Refresh(ctx.Ctx); err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(ctx.Ctx, ctx.Manager, ctx.Gate, ctx.Center), tea.WithAltScreen(), tea.WithContext(ctx.Ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
