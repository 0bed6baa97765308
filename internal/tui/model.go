package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/nudge/internal/constants"
	"github.com/julianstephens/nudge/internal/models"
	"github.com/julianstephens/nudge/internal/notifier"
	"github.com/julianstephens/nudge/internal/permission"
	"github.com/julianstephens/nudge/internal/reminder"
	"github.com/julianstephens/nudge/internal/tui/components/reminderlist"
)

// remindersMsg carries a new projection snapshot.
type remindersMsg []models.Reminder

type permissionMsg struct {
	status permission.Status
	err    error
}

// opDoneMsg reports the result of a manager mutation.
type opDoneMsg struct {
	info string
	err  error
}

type Model struct {
	ctx     context.Context
	manager *reminder.Manager
	gate    *permission.Gate
	center  *notifier.LocalCenter

	state        constants.SessionState
	keys         KeyMap
	help         help.Model
	list         reminderlist.Model
	form         *huh.Form
	reminderForm *ReminderFormModel
	editingID    string
	toDelete     *models.Reminder

	updates     <-chan []models.Reminder
	unsubscribe func()

	permission permission.Status
	status     string
	statusErr  bool
	quitting   bool
	width      int
	height     int
}

// NewModel subscribes to the manager's projection. center may be nil, in
// which case permission prompts use the center's own prompter.
func NewModel(ctx context.Context, manager *reminder.Manager, gate *permission.Gate, center *notifier.LocalCenter) Model {
	updates, unsubscribe := manager.Subscribe()

	return Model{
		ctx:         ctx,
		manager:     manager,
		gate:        gate,
		center:      center,
		state:       constants.StatePermission,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		list:        reminderlist.New(manager.ListReminders(), 0, 0),
		updates:     updates,
		unsubscribe: unsubscribe,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.checkPermission(), waitForUpdate(m.updates))
}

func waitForUpdate(ch <-chan []models.Reminder) tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-ch
		if !ok {
			return nil
		}
		return remindersMsg(snapshot)
	}
}

func (m Model) checkPermission() tea.Cmd {
	return func() tea.Msg {
		st, err := m.gate.CheckStatus(m.ctx)
		return permissionMsg{status: st, err: err}
	}
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case constants.StatePermission:
		return []key.Binding{m.keys.Request, m.keys.Continue, m.keys.Quit}
	case constants.StateConfirmDelete:
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	case constants.StateAddReminder:
		return []key.Binding{m.keys.Cancel}
	}
	keys := reminderlist.DefaultKeyMap()
	return []key.Binding{keys.Add, keys.Edit, keys.Delete, m.keys.Permission, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{m.ShortHelp()}
}
