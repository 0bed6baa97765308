package reminders

import (
	"fmt"

	"github.com/julianstephens/nudge/internal/cli"
)

type DeleteCmd struct {
	ID string `arg:"" help:"Reminder ID to delete."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Store.GetReminder(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find reminder with ID %s: %w", c.ID, err)
	}

	if err := ctx.Manager.DeleteReminder(ctx.Ctx, c.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted reminder: %s at %s (ID: %s)\n", r.FormatSchedule(), r.Time, c.ID)
	return nil
}
