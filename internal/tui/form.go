package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/nudge/internal/constants"
	"github.com/julianstephens/nudge/internal/models"
	"github.com/julianstephens/nudge/internal/reminder"
)

type ReminderFormModel struct {
	Kind      models.ScheduleKind
	DayOfWeek int
	Time      string
	Body      string
}

func newReminderFormModel(r *models.Reminder) *ReminderFormModel {
	if r == nil {
		return &ReminderFormModel{Kind: models.ScheduleDaily, DayOfWeek: constants.MinDayOfWeek}
	}
	fm := &ReminderFormModel{Kind: r.Kind, DayOfWeek: r.DayOfWeek, Time: r.Time, Body: r.Body}
	if !models.ValidDayOfWeek(fm.DayOfWeek) {
		fm.DayOfWeek = constants.MinDayOfWeek
	}
	return fm
}

func (fm *ReminderFormModel) Input() reminder.Input {
	return reminder.Input{Kind: fm.Kind, DayOfWeek: fm.DayOfWeek, Time: fm.Time, Body: fm.Body}
}

func validateClock(s string) error {
	_, _, err := models.ParseClock(s)
	return err
}

func NewReminderForm(fm *ReminderFormModel) *huh.Form {
	days := make([]huh.Option[int], 0, constants.MaxDayOfWeek)
	for d := constants.MinDayOfWeek; d <= constants.MaxDayOfWeek; d++ {
		days = append(days, huh.NewOption(models.WeekdayName(d), d))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.ScheduleKind]().
				Title("Repeat").
				Options(
					huh.NewOption("Daily", models.ScheduleDaily),
					huh.NewOption("Weekly", models.ScheduleWeekly),
				).
				Value(&fm.Kind),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Day").
				Options(days...).
				Value(&fm.DayOfWeek),
		).WithHideFunc(func() bool { return fm.Kind != models.ScheduleWeekly }),
		huh.NewGroup(
			huh.NewInput().
				Title("Time").
				Placeholder("HH:MM").
				Validate(validateClock).
				Value(&fm.Time),
			huh.NewInput().
				Title("Message").
				Description(fmt.Sprintf("Up to %d characters", constants.MaxBodyLength)).
				Placeholder(constants.DefaultReminderBody).
				CharLimit(constants.MaxBodyLength).
				Value(&fm.Body),
		),
	).WithShowHelp(true)
}
