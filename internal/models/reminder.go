package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/nudge/internal/constants"
)

type ScheduleKind = constants.ScheduleKind

const (
	ScheduleDaily  = constants.ScheduleDaily
	ScheduleWeekly = constants.ScheduleWeekly
)

// Reminder is a recurring notification request persisted by the store.
//
// NotificationID is generated independently of ID and is the only key used
// to address the scheduled trigger.
type Reminder struct {
	ID             string       `json:"id"`
	NotificationID string       `json:"notification_id"`
	Kind           ScheduleKind `json:"kind"`
	DayOfWeek      int          `json:"day_of_week,omitempty"` // 1=Sunday .. 7=Saturday, weekly only
	Time           string       `json:"time"`                  // HH:MM format
	Body           string       `json:"body"`
	CreatedAt      time.Time    `json:"created_at"`
}

func (r *Reminder) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("reminder id cannot be empty")
	}
	if r.NotificationID == "" {
		return fmt.Errorf("reminder notification id cannot be empty")
	}

	if _, _, err := ParseClock(r.Time); err != nil {
		return err
	}

	switch r.Kind {
	case ScheduleDaily:
	case ScheduleWeekly:
		if !ValidDayOfWeek(r.DayOfWeek) {
			return fmt.Errorf("day of week must be between %d and %d for weekly reminders, got %d",
				constants.MinDayOfWeek, constants.MaxDayOfWeek, r.DayOfWeek)
		}
	default:
		return fmt.Errorf("invalid schedule kind: %q (must be daily or weekly)", r.Kind)
	}

	body := strings.TrimSpace(r.Body)
	if body == "" {
		return fmt.Errorf("reminder body cannot be empty")
	}
	if utf8.RuneCountInString(body) > constants.MaxBodyLength {
		return fmt.Errorf("reminder body exceeds %d characters", constants.MaxBodyLength)
	}

	return nil
}

// IsWeekly returns true if the reminder repeats on a single day each week
func (r *Reminder) IsWeekly() bool {
	return r.Kind == ScheduleWeekly
}

// FormatSchedule returns a human-readable description of the reminder's schedule
func (r *Reminder) FormatSchedule() string {
	switch r.Kind {
	case ScheduleDaily:
		return "Daily"
	case ScheduleWeekly:
		if ValidDayOfWeek(r.DayOfWeek) {
			return fmt.Sprintf("Weekly: %s", WeekdayName(r.DayOfWeek))
		}
		return "Weekly"
	default:
		return "Unknown"
	}
}

// NormalizeBody trims the body, falls back to the default message when empty,
// and truncates it to MaxBodyLength characters.
func NormalizeBody(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return constants.DefaultReminderBody
	}
	if utf8.RuneCountInString(body) > constants.MaxBodyLength {
		runes := []rune(body)
		body = strings.TrimSpace(string(runes[:constants.MaxBodyLength]))
	}
	return body
}

// ParseClock parses an HH:MM string into hour and minute.
func ParseClock(s string) (int, int, error) {
	t, err := time.Parse(constants.TimeFormat, strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time format (expected HH:MM): %w", err)
	}
	return t.Hour(), t.Minute(), nil
}

// ClockOf formats the time-of-day of t as HH:MM. The date is discarded.
func ClockOf(t time.Time) string {
	return t.Format(constants.TimeFormat)
}

func ValidDayOfWeek(day int) bool {
	return day >= constants.MinDayOfWeek && day <= constants.MaxDayOfWeek
}

// DayOfWeekFromWeekday converts a time.Weekday (Sunday=0) to the 1-based day of week.
func DayOfWeekFromWeekday(wd time.Weekday) int {
	return int(wd) + 1
}

// Weekday converts a 1-based day of week to a time.Weekday.
func Weekday(day int) time.Weekday {
	return time.Weekday(day - 1)
}

func WeekdayName(day int) string {
	if !ValidDayOfWeek(day) {
		return ""
	}
	return Weekday(day).String()
}

// ParseDayOfWeek accepts a weekday name, a three-letter abbreviation or a number 1-7.
func ParseDayOfWeek(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))

	dayMap := map[string]time.Weekday{
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}
	if wd, ok := dayMap[s]; ok {
		return DayOfWeekFromWeekday(wd), nil
	}

	// Fall back to the numeric form (1=Sunday, 7=Saturday)
	day, err := strconv.Atoi(s)
	if err == nil && ValidDayOfWeek(day) {
		return day, nil
	}
	return 0, fmt.Errorf("invalid day of week: %s", s)
}

// ParseScheduleKind parses "daily" or "weekly" case-insensitively.
func ParseScheduleKind(s string) (ScheduleKind, error) {
	switch ScheduleKind(strings.ToLower(strings.TrimSpace(s))) {
	case ScheduleDaily:
		return ScheduleDaily, nil
	case ScheduleWeekly:
		return ScheduleWeekly, nil
	default:
		return "", fmt.Errorf("invalid schedule kind: %s (must be daily or weekly)", s)
	}
}
