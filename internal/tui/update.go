package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/nudge/internal/constants"
	"github.com/julianstephens/nudge/internal/permission"
	"github.com/julianstephens/nudge/internal/tui/components/reminderlist"
)

const headerHeight = 4

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.list.SetSize(msg.Width-4, msg.Height-headerHeight-2)
		return m, nil

	case remindersMsg:
		m.list.SetReminders(msg)
		return m, waitForUpdate(m.updates)

	case permissionMsg:
		if msg.err != nil {
			m.setStatus(msg.err)
			return m, nil
		}
		m.permission = msg.status
		if msg.status.Authorized && m.state == constants.StatePermission {
			m.state = constants.StateReminders
		}
		return m, nil

	case opDoneMsg:
		m.setStatus(msg.err)
		if msg.err == nil {
			m.status = msg.info
		}
		if errors.Is(msg.err, permission.ErrPermission) {
			m.permission = permission.Status{}
			m.state = constants.StatePermission
			return m, m.checkPermission()
		}
		return m, nil
	}

	if m.state == constants.StateAddReminder {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, m.keys.Quit) && !m.list.Filtering() {
			m.quitting = true
			m.unsubscribe()
			return m, tea.Quit
		}
	}

	switch m.state {
	case constants.StatePermission:
		return m.updatePermission(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}
	return m.updateList(msg)
}

func (m *Model) setStatus(err error) {
	m.statusErr = err != nil
	m.status = ""
	if err != nil {
		m.status = err.Error()
	}
}

func (m Model) updatePermission(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Request):
		if m.permission.Denied {
			m.status = "Notifications were denied. Run 'nudge permission reset' to ask again."
			m.statusErr = true
			return m, nil
		}
		return m, m.requestPermission()
	case key.Matches(keyMsg, m.keys.Continue):
		m.state = constants.StateReminders
	}
	return m, nil
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Permission):
			m.state = constants.StatePermission
			return m, m.checkPermission()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case reminderlist.AddReminderMsg:
		if !m.permission.Authorized {
			m.status = "Scheduling is disabled until notifications are allowed (press p)."
			m.statusErr = true
			return m, nil
		}
		m.editingID = ""
		m.reminderForm = newReminderFormModel(nil)
		m.form = NewReminderForm(m.reminderForm)
		m.state = constants.StateAddReminder
		return m, m.form.Init()

	case reminderlist.EditReminderMsg:
		if !m.permission.Authorized {
			m.status = "Scheduling is disabled until notifications are allowed (press p)."
			m.statusErr = true
			return m, nil
		}
		r := msg.Reminder
		m.editingID = r.ID
		m.reminderForm = newReminderFormModel(&r)
		m.form = NewReminderForm(m.reminderForm)
		m.state = constants.StateAddReminder
		return m, m.form.Init()

	case reminderlist.DeleteReminderMsg:
		r := msg.Reminder
		m.toDelete = &r
		m.state = constants.StateConfirmDelete
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = constants.StateReminders
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = constants.StateReminders
		m.form = nil
		return m, tea.Batch(cmd, m.save(m.editingID, m.reminderForm))
	case huh.StateAborted:
		m.state = constants.StateReminders
		m.form = nil
	}
	return m, cmd
}

// save runs the mutation off the update loop; the projection subscription
// delivers the resulting list.
func (m Model) save(editingID string, fm *ReminderFormModel) tea.Cmd {
	in := fm.Input()
	return func() tea.Msg {
		if editingID != "" {
			r, err := m.manager.EditReminder(m.ctx, editingID, in)
			return opDoneMsg{info: fmt.Sprintf("Updated reminder at %s", r.Time), err: err}
		}
		r, err := m.manager.SetReminder(m.ctx, in)
		return opDoneMsg{info: fmt.Sprintf("Set reminder at %s", r.Time), err: err}
	}
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.toDelete == nil {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		r := *m.toDelete
		m.toDelete = nil
		m.state = constants.StateReminders
		return m, func() tea.Msg {
			err := m.manager.DeleteReminder(m.ctx, r.ID)
			return opDoneMsg{info: fmt.Sprintf("Deleted reminder at %s", r.Time), err: err}
		}
	case key.Matches(keyMsg, m.keys.Cancel):
		m.toDelete = nil
		m.state = constants.StateReminders
	}
	return m, nil
}
