package constants

import "time"

// ScheduleKind represents how often a reminder repeats
type ScheduleKind string

// AuthorizationStatus represents the notification permission state
type AuthorizationStatus string

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "nudge"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/nudge/nudge.db"
	DefaultStateDir    = "~/.config/nudge"
	DefaultStateFile   = "notifications.json"
	DBConnectionEnvVar = "NUDGE_DB_CONNECTION"
	Version            = "v0.1.0"

	// TimeFormat is the wall-clock format used for reminder times (HH:MM)
	TimeFormat = "15:04"

	// Reminder constants
	DefaultReminderBody = "My notification content."
	DefaultTitle        = "My Notification Title"
	MaxBodyLength       = 60

	// Schedule kinds
	ScheduleDaily  ScheduleKind = "daily"
	ScheduleWeekly ScheduleKind = "weekly"

	// Weekday bounds (Sunday=1 .. Saturday=7)
	MinDayOfWeek = 1
	MaxDayOfWeek = 7

	// Authorization statuses
	AuthorizationNotDetermined AuthorizationStatus = "not_determined"
	AuthorizationAuthorized    AuthorizationStatus = "authorized"
	AuthorizationDenied        AuthorizationStatus = "denied"

	// Notify constants
	NotifierLockfileName   = "nudge-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.nudge"
	DeliveryRatePerSec     = 2
	DeliveryBurst          = 4
	StateReloadDebounce    = 250 * time.Millisecond
)

const (
	// Session States
	StatePermission SessionState = iota
	StateReminders
	StateAddReminder
	StateConfirmDelete
)
