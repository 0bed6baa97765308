package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/nudge/internal/constants"
)

var (
	// ErrNotAuthorized is returned when scheduling without notification permission.
	ErrNotAuthorized = errors.New("notifications are not authorized")
	// ErrNoPrompter is returned when authorization must be requested but nothing can ask the user.
	ErrNoPrompter = errors.New("no permission prompt available")
	// ErrInvalidTrigger is returned for triggers that cannot be expressed as a recurring calendar match.
	ErrInvalidTrigger = errors.New("invalid trigger")
)

// Options are the presentation capabilities requested from the user.
type Options struct {
	Alert bool
	Sound bool
	Badge bool
}

// Content is what the user sees when a trigger fires.
type Content struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound bool   `json:"sound"`
}

// Trigger is a repeating wall-clock match. Weekday is 1 (Sunday) .. 7 (Saturday)
// and restricts the match to a single day when set.
type Trigger struct {
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
	Weekday *int `json:"weekday,omitempty"`
	Repeats bool `json:"repeats"`
}

// Request is a scheduled notification addressed by ID.
type Request struct {
	ID      string  `json:"id"`
	Content Content `json:"content"`
	Trigger Trigger `json:"trigger"`
}

// Center is the notification capability: it owns authorization state and the
// set of pending triggers.
type Center interface {
	AuthorizationStatus(ctx context.Context) (constants.AuthorizationStatus, error)
	// RequestAuthorization prompts the user at most once per call. It reports
	// true without prompting when already authorized.
	RequestAuthorization(ctx context.Context, opts Options) (bool, error)
	// Schedule registers req, replacing any pending request with the same ID.
	Schedule(ctx context.Context, req Request) error
	// Cancel removes the pending requests with the given IDs. Unknown IDs are ignored.
	Cancel(ctx context.Context, ids ...string) error
	Pending(ctx context.Context) ([]Request, error)
}

func (t Trigger) Validate() error {
	if !t.Repeats {
		return fmt.Errorf("%w: only repeating triggers are supported", ErrInvalidTrigger)
	}
	if t.Hour < 0 || t.Hour > 23 {
		return fmt.Errorf("%w: hour %d out of range", ErrInvalidTrigger, t.Hour)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("%w: minute %d out of range", ErrInvalidTrigger, t.Minute)
	}
	if t.Weekday != nil && (*t.Weekday < constants.MinDayOfWeek || *t.Weekday > constants.MaxDayOfWeek) {
		return fmt.Errorf("%w: weekday %d out of range", ErrInvalidTrigger, *t.Weekday)
	}
	return nil
}

// CronSpec renders the trigger as a standard five-field cron expression.
// Cron numbers weekdays from 0 (Sunday), one less than the trigger.
func (t Trigger) CronSpec() (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	dow := "*"
	if t.Weekday != nil {
		dow = fmt.Sprint(*t.Weekday - 1)
	}
	return fmt.Sprintf("%d %d * * %s", t.Minute, t.Hour, dow), nil
}

// Next returns the first firing strictly after from, in from's location.
func (t Trigger) Next(from time.Time) (time.Time, error) {
	spec, err := t.CronSpec()
	if err != nil {
		return time.Time{}, err
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTrigger, err)
	}
	return schedule.Next(from), nil
}

func (r Request) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: request id cannot be empty", ErrInvalidTrigger)
	}
	return r.Trigger.Validate()
}
