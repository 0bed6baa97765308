package reminders

import (
	"errors"
	"fmt"

	"github.com/julianstephens/nudge/internal/cli"
	"github.com/julianstephens/nudge/internal/models"
	"github.com/julianstephens/nudge/internal/reminder"
)

type EditCmd struct {
	ID     string  `arg:"" help:"Reminder ID to edit."`
	Time   *string `help:"New time of day (HH:MM)."`
	Body   *string `help:"New notification text."`
	Weekly *string `help:"Repeat weekly on this day." placeholder:"DAY" xor:"kind"`
	Daily  bool    `help:"Repeat every day." xor:"kind"`
}

// merge applies the flags that were set on top of r.
func (c *EditCmd) merge(r models.Reminder) (reminder.Input, error) {
	in := reminder.Input{
		Kind:      r.Kind,
		DayOfWeek: r.DayOfWeek,
		Time:      r.Time,
		Body:      r.Body,
	}

	if c.Time != nil {
		in.Time = *c.Time
	}
	if c.Body != nil {
		in.Body = *c.Body
	}
	if c.Daily {
		in.Kind = models.ScheduleDaily
		in.DayOfWeek = 0
	}
	if c.Weekly != nil {
		day, err := models.ParseDayOfWeek(*c.Weekly)
		if err != nil {
			return reminder.Input{}, fmt.Errorf("%w: %v", reminder.ErrInvalidInput, err)
		}
		in.Kind = models.ScheduleWeekly
		in.DayOfWeek = day
	}

	if c.Time == nil && c.Body == nil && c.Weekly == nil && !c.Daily {
		return reminder.Input{}, errors.New("nothing to change: pass --time, --body, --daily or --weekly")
	}
	return in, nil
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	existing, err := ctx.Store.GetReminder(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find reminder with ID %s: %w", c.ID, err)
	}

	in, err := c.merge(existing)
	if err != nil {
		return err
	}

	r, err := ctx.Manager.EditReminder(ctx.Ctx, c.ID, in)
	if err != nil {
		return err
	}

	fmt.Printf("Updated reminder: %s at %s (new ID: %s)\n", r.FormatSchedule(), r.Time, r.ID)
	return nil
}
