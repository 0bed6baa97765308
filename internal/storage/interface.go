package storage

import "github.com/julianstephens/nudge/internal/models"

// Provider is the durable reminder store.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string

	// Reminders
	//
	// AddReminder is all-or-nothing: either the whole record is persisted or
	// nothing is, and failures wrap ErrWriteFailed.
	AddReminder(models.Reminder) error
	GetReminder(id string) (models.Reminder, error)
	// GetAllReminders returns every reminder ordered by time of day, ties broken
	// by insertion order.
	GetAllReminders() ([]models.Reminder, error)
	DeleteReminder(id string) error
}
