package reminders

import (
	"fmt"

	"github.com/julianstephens/nudge/internal/cli"
	"github.com/julianstephens/nudge/internal/models"
	"github.com/julianstephens/nudge/internal/reminder"
)

type AddCmd struct {
	Time   string `arg:"" help:"Time of day (HH:MM, 24-hour)."`
	Body   string `arg:"" optional:"" help:"Notification text (defaults to a generic message, max 60 characters)."`
	Weekly string `help:"Repeat weekly on this day instead of daily (name, abbreviation or 1=Sunday..7=Saturday)." placeholder:"DAY"`
}

// input converts the flags to a manager request.
func (c *AddCmd) input() (reminder.Input, error) {
	in := reminder.Input{
		Kind: models.ScheduleDaily,
		Time: c.Time,
		Body: c.Body,
	}
	if c.Weekly != "" {
		day, err := models.ParseDayOfWeek(c.Weekly)
		if err != nil {
			return reminder.Input{}, fmt.Errorf("%w: %v", reminder.ErrInvalidInput, err)
		}
		in.Kind = models.ScheduleWeekly
		in.DayOfWeek = day
	}
	return in, nil
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	in, err := c.input()
	if err != nil {
		return err
	}

	r, err := ctx.Manager.SetReminder(ctx.Ctx, in)
	if err != nil {
		return err
	}

	fmt.Printf("Set reminder: %s at %s (ID: %s)\n", r.FormatSchedule(), r.Time, r.ID)
	fmt.Printf("  %s\n", r.Body)
	return nil
}
