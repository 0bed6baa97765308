package reminders

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/nudge/internal/cli"
	"github.com/julianstephens/nudge/internal/models"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

type ListCmd struct {
	JSON bool `help:"Print reminders as JSON."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Manager.Refresh(ctx.Ctx); err != nil {
		return err
	}

	reminders := ctx.Manager.ListReminders()

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reminders)
	}

	if len(reminders) == 0 {
		fmt.Println("No reminders set. Add one with 'nudge add HH:MM \"message\"'.")
		return nil
	}

	fmt.Println(renderTable(reminders))
	return nil
}

func renderTable(reminders []models.Reminder) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TIME", "SCHEDULE", "BODY", "ID").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range reminders {
		t.Row(r.Time, r.FormatSchedule(), r.Body, r.ID)
	}
	return t.Render()
}
