package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/nudge/internal/constants"
	"github.com/julianstephens/nudge/internal/logger"
	"github.com/julianstephens/nudge/internal/models"
	"github.com/julianstephens/nudge/internal/permission"
	"github.com/julianstephens/nudge/internal/scheduler"
	"github.com/julianstephens/nudge/internal/storage"
)

// ErrInvalidInput wraps every validation failure of SetReminder and EditReminder.
var ErrInvalidInput = errors.New("invalid reminder")

// Input is a request to create a reminder. DayOfWeek is ignored for daily
// reminders. Time is a wall-clock HH:MM; any date component is discarded.
type Input struct {
	Kind      models.ScheduleKind
	DayOfWeek int
	Time      string
	Body      string
}

// InputAt builds an Input from the time-of-day of t.
func InputAt(kind models.ScheduleKind, dayOfWeek int, t time.Time, body string) Input {
	return Input{Kind: kind, DayOfWeek: dayOfWeek, Time: models.ClockOf(t), Body: body}
}

// Manager owns the reminder lifecycle. It keeps the store and the pending
// triggers in step and publishes the stored reminders as a projection.
type Manager struct {
	store     storage.Provider
	scheduler *scheduler.Scheduler
	gate      *permission.Gate
	newID     func() string
	now       func() time.Time

	// mu serializes mutations
	mu sync.Mutex

	projMu    sync.RWMutex
	reminders []models.Reminder
	lastErr   error
	subs      map[int]chan []models.Reminder
	nextSub   int
}

type Option func(*Manager)

// WithIDGenerator replaces uuid generation for both reminder and notification IDs.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// WithClock replaces time.Now for CreatedAt stamps.
func WithClock(fn func() time.Time) Option {
	return func(m *Manager) { m.now = fn }
}

func New(store storage.Provider, sched *scheduler.Scheduler, gate *permission.Gate, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		scheduler: sched,
		gate:      gate,
		newID:     func() string { return uuid.New().String() },
		now:       time.Now,
		subs:      map[int]chan []models.Reminder{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// normalize validates the input and returns a reminder without IDs.
func normalize(in Input) (models.Reminder, error) {
	kind, err := models.ParseScheduleKind(string(in.Kind))
	if err != nil {
		return models.Reminder{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hour, minute, err := models.ParseClock(in.Time)
	if err != nil {
		return models.Reminder{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	r := models.Reminder{
		Kind: kind,
		Time: fmt.Sprintf("%02d:%02d", hour, minute),
		Body: models.NormalizeBody(in.Body),
	}

	if kind == models.ScheduleWeekly {
		if !models.ValidDayOfWeek(in.DayOfWeek) {
			return models.Reminder{}, fmt.Errorf("%w: weekly reminders need a day of week between %d and %d",
				ErrInvalidInput, constants.MinDayOfWeek, constants.MaxDayOfWeek)
		}
		r.DayOfWeek = in.DayOfWeek
	}

	return r, nil
}

// SetReminder stores a new reminder and registers its trigger. The trigger is
// registered in the background; a registration failure is logged and leaves
// the stored reminder in place. A store failure means nothing is scheduled.
func (m *Manager) SetReminder(ctx context.Context, in Input) (models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, err := m.create(ctx, in)
	m.setLastErr(err)
	return r, err
}

func (m *Manager) create(ctx context.Context, in Input) (models.Reminder, error) {
	if err := m.gate.Require(ctx); err != nil {
		return models.Reminder{}, err
	}

	r, err := normalize(in)
	if err != nil {
		return models.Reminder{}, err
	}

	return m.insert(ctx, r)
}

func (m *Manager) insert(ctx context.Context, r models.Reminder) (models.Reminder, error) {
	r.ID = m.newID()
	r.NotificationID = m.newID()
	r.CreatedAt = m.now().UTC().Truncate(time.Second)

	if err := m.store.AddReminder(r); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to save reminder: %w", err)
	}

	m.scheduler.Register(ctx, r)

	if err := m.refresh(); err != nil {
		logger.Warn("Failed to refresh reminders", "error", err)
	}

	logger.Info("Reminder set", "id", r.ID, "notification", r.NotificationID, "schedule", r.FormatSchedule(), "time", r.Time)
	return r, nil
}

// DeleteReminder cancels the reminder's trigger and removes it from the store.
// The cancel is attempted even if the store delete then fails. A registration
// still in flight for the reminder is withdrawn once it lands.
func (m *Manager) DeleteReminder(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.remove(ctx, id)
	m.setLastErr(err)
	return err
}

func (m *Manager) remove(ctx context.Context, id string) error {
	r, err := m.store.GetReminder(id)
	if err != nil {
		return err
	}

	if err := m.scheduler.Cancel(ctx, r.NotificationID); err != nil {
		logger.Warn("Failed to cancel notification", "id", r.ID, "notification", r.NotificationID, "error", err)
	}

	deleteErr := m.store.DeleteReminder(r.ID)

	if err := m.refresh(); err != nil {
		logger.Warn("Failed to refresh reminders", "error", err)
	}

	if deleteErr != nil {
		return fmt.Errorf("failed to delete reminder: %w", deleteErr)
	}

	logger.Info("Reminder deleted", "id", r.ID, "notification", r.NotificationID)
	return nil
}

// EditReminder replaces a reminder with a new one built from in. The
// replacement gets fresh IDs. Input and permission are checked before the
// existing reminder is touched.
func (m *Manager) EditReminder(ctx context.Context, id string, in Input) (models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, err := m.edit(ctx, id, in)
	m.setLastErr(err)
	return r, err
}

func (m *Manager) edit(ctx context.Context, id string, in Input) (models.Reminder, error) {
	if err := m.gate.Require(ctx); err != nil {
		return models.Reminder{}, err
	}

	next, err := normalize(in)
	if err != nil {
		return models.Reminder{}, err
	}

	if err := m.remove(ctx, id); err != nil {
		return models.Reminder{}, err
	}

	return m.insert(ctx, next)
}

// ListReminders returns the current projection ordered by time of day.
func (m *Manager) ListReminders() []models.Reminder {
	m.projMu.RLock()
	defer m.projMu.RUnlock()
	return cloneReminders(m.reminders)
}

// Refresh reloads the projection from the store.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.refresh()
	m.setLastErr(err)
	return err
}

func (m *Manager) refresh() error {
	reminders, err := m.store.GetAllReminders()
	if err != nil {
		// a failed fetch publishes an empty projection
		reminders = nil
		err = fmt.Errorf("failed to load reminders: %w", err)
	}

	m.projMu.Lock()
	m.reminders = reminders
	subs := make([]chan []models.Reminder, 0, len(m.subs))
	for _, ch := range m.subs {
		subs = append(subs, ch)
	}
	m.projMu.Unlock()

	for _, ch := range subs {
		publish(ch, cloneReminders(reminders))
	}
	return err
}

// publish replaces any unread snapshot so subscribers only see the latest one.
func publish(ch chan []models.Reminder, snapshot []models.Reminder) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Subscribe returns a channel receiving the projection after every change,
// starting with the current one. Call the returned func to unsubscribe.
func (m *Manager) Subscribe() (<-chan []models.Reminder, func()) {
	ch := make(chan []models.Reminder, 1)

	m.projMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- cloneReminders(m.reminders)
	m.projMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.projMu.Lock()
			delete(m.subs, id)
			m.projMu.Unlock()
		})
	}
}

// LastError returns the error of the most recent operation, or nil.
func (m *Manager) LastError() error {
	m.projMu.RLock()
	defer m.projMu.RUnlock()
	return m.lastErr
}

func (m *Manager) setLastErr(err error) {
	m.projMu.Lock()
	m.lastErr = err
	m.projMu.Unlock()
}

// Resync registers the trigger of every stored reminder again and cancels
// pending triggers that no stored reminder owns. It waits for the
// registrations and returns their combined errors.
func (m *Manager) Resync(ctx context.Context) (registered, pruned int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.gate.Require(ctx); err != nil {
		return 0, 0, err
	}

	reminders, err := m.store.GetAllReminders()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load reminders: %w", err)
	}

	keep := make(map[string]bool, len(reminders))
	pending := make([]*scheduler.Pending, 0, len(reminders))
	for _, r := range reminders {
		keep[r.NotificationID] = true
		pending = append(pending, m.scheduler.Register(ctx, r))
	}

	var errs []error
	for _, p := range pending {
		if perr := p.Wait(ctx); perr != nil {
			errs = append(errs, perr)
			continue
		}
		registered++
	}

	pruned, pruneErr := m.scheduler.Prune(ctx, keep)
	if pruneErr != nil {
		errs = append(errs, pruneErr)
	}

	if err := m.refresh(); err != nil {
		errs = append(errs, err)
	}

	err = errors.Join(errs...)
	m.setLastErr(err)
	return registered, pruned, err
}

// Close waits for in-flight trigger registrations.
func (m *Manager) Close(ctx context.Context) error {
	return m.scheduler.Wait(ctx)
}

func cloneReminders(in []models.Reminder) []models.Reminder {
	out := make([]models.Reminder, len(in))
	copy(out, in)
	return out
}
