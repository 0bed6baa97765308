package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/julianstephens/nudge/internal/constants"
	"github.com/julianstephens/nudge/internal/logger"
	"github.com/julianstephens/nudge/internal/models"
	"github.com/julianstephens/nudge/internal/notifier"
)

// SchedulingError reports a trigger registration that failed after the
// reminder was already stored.
type SchedulingError struct {
	NotificationID string
	Err            error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("failed to schedule notification %s: %v", e.NotificationID, e.Err)
}

func (e *SchedulingError) Unwrap() error {
	return e.Err
}

// Pending is the single result of an asynchronous registration.
type Pending struct {
	NotificationID string

	done chan struct{}
	err  error
}

// Done is closed once the registration has finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the registration result. It is nil until Done is closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the registration finishes or ctx ends.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Scheduler turns reminders into recurring notification requests.
type Scheduler struct {
	center notifier.Center
	title  string
	sound  bool

	inflight sync.WaitGroup

	// mu guards registrations and withdrawn, both keyed by notification ID
	mu            sync.Mutex
	registrations map[string]*Pending
	withdrawn     map[string]bool
}

type Option func(*Scheduler)

// WithTitle overrides the notification title.
func WithTitle(title string) Option {
	return func(s *Scheduler) {
		if title != "" {
			s.title = title
		}
	}
}

// WithSound toggles the default notification sound.
func WithSound(enabled bool) Option {
	return func(s *Scheduler) { s.sound = enabled }
}

func New(center notifier.Center, opts ...Option) *Scheduler {
	s := &Scheduler{
		center: center,
		title:  constants.DefaultTitle,
		sound:  true,

		registrations: map[string]*Pending{},
		withdrawn:     map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildRequest maps a reminder onto a repeating trigger addressed by its
// notification ID. The weekday is only set for weekly reminders.
func (s *Scheduler) BuildRequest(r models.Reminder) (notifier.Request, error) {
	hour, minute, err := models.ParseClock(r.Time)
	if err != nil {
		return notifier.Request{}, err
	}

	trigger := notifier.Trigger{
		Hour:    hour,
		Minute:  minute,
		Repeats: true,
	}
	if r.IsWeekly() {
		day := r.DayOfWeek
		trigger.Weekday = &day
	}

	req := notifier.Request{
		ID: r.NotificationID,
		Content: notifier.Content{
			Title: s.title,
			Body:  r.Body,
			Sound: s.sound,
		},
		Trigger: trigger,
	}
	if err := req.Validate(); err != nil {
		return notifier.Request{}, err
	}
	return req, nil
}

// Register schedules the reminder's trigger in the background. Failures are
// logged and reported through the returned Pending; they are never retried.
// A Cancel issued while the registration is in flight withdraws the trigger
// once it lands.
func (s *Scheduler) Register(ctx context.Context, r models.Reminder) *Pending {
	p := &Pending{
		NotificationID: r.NotificationID,
		done:           make(chan struct{}),
	}

	// Registration outlives the caller's context.
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	s.registrations[r.NotificationID] = p
	delete(s.withdrawn, r.NotificationID)
	s.mu.Unlock()

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer close(p.done)

		p.err = s.register(ctx, r)
		if s.settle(p) {
			if err := s.center.Cancel(ctx, r.NotificationID); err != nil {
				logger.Error("Failed to withdraw cancelled notification", "reminder", r.ID, "notification", r.NotificationID, "error", err)
			} else {
				logger.Debug("Notification withdrawn after cancel", "reminder", r.ID, "notification", r.NotificationID)
			}
			return
		}
		if p.err != nil {
			logger.Error("Failed to schedule notification", "reminder", r.ID, "notification", r.NotificationID, "error", p.err)
			return
		}
		logger.Debug("Notification scheduled", "reminder", r.ID, "notification", r.NotificationID)
	}()

	return p
}

func (s *Scheduler) register(ctx context.Context, r models.Reminder) error {
	req, err := s.BuildRequest(r)
	if err != nil {
		return &SchedulingError{NotificationID: r.NotificationID, Err: err}
	}
	if err := s.center.Schedule(ctx, req); err != nil {
		return &SchedulingError{NotificationID: r.NotificationID, Err: err}
	}
	return nil
}

// settle forgets a finished registration and reports whether it was
// cancelled while in flight.
func (s *Scheduler) settle(p *Pending) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	withdrawn := s.withdrawn[p.NotificationID]
	if s.registrations[p.NotificationID] == p {
		delete(s.registrations, p.NotificationID)
		delete(s.withdrawn, p.NotificationID)
	}
	return withdrawn
}

// Cancel removes the trigger for notificationID. Unknown IDs are not an error.
// If a registration for the ID is still in flight, Cancel waits for it; when
// ctx ends first, the registration withdraws its own trigger on completion.
func (s *Scheduler) Cancel(ctx context.Context, notificationID string) error {
	s.mu.Lock()
	p := s.registrations[notificationID]
	if p != nil {
		s.withdrawn[notificationID] = true
	}
	s.mu.Unlock()

	if p != nil {
		if err := p.Wait(ctx); err != nil && ctx.Err() != nil {
			logger.Debug("Cancel deferred to in-flight registration", "notification", notificationID)
			return nil
		}
	}

	if err := s.center.Cancel(ctx, notificationID); err != nil {
		return fmt.Errorf("failed to cancel notification %s: %w", notificationID, err)
	}
	return nil
}

// Wait blocks until every registration started so far has finished or ctx ends.
func (s *Scheduler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Prune cancels every pending trigger whose ID is not in keep and returns how
// many were removed.
func (s *Scheduler) Prune(ctx context.Context, keep map[string]bool) (int, error) {
	pending, err := s.center.Pending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending notifications: %w", err)
	}

	var orphans []string
	for _, req := range pending {
		if !keep[req.ID] {
			orphans = append(orphans, req.ID)
		}
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	if err := s.center.Cancel(ctx, orphans...); err != nil {
		return 0, fmt.Errorf("failed to cancel orphaned notifications: %w", err)
	}
	logger.Info("Pruned orphaned notifications", "count", len(orphans))
	return len(orphans), nil
}
