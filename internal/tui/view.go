package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/nudge/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StatePermission:
		content = m.viewPermission()
	case constants.StateAddReminder:
		if m.form != nil {
			content = m.form.View()
		}
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = m.list.View()
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
	))
}

func (m Model) viewHeader() string {
	badge := warningStyle.Render("notifications off")
	if m.permission.Authorized {
		badge = okStyle.Render("notifications on")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, titleStyle.Render(constants.AppName), " ", badge) + "\n"
}

func (m Model) viewPermission() string {
	var body string
	switch {
	case m.permission.Authorized:
		body = okStyle.Render("✓ Notifications are allowed.") + "\n\nPress enter to manage reminders."
	case m.permission.Denied:
		body = dangerStyle.Render("Notifications are denied.") +
			"\n\nReminders cannot be scheduled. Run 'nudge permission reset' and restart to ask again."
	default:
		body = fmt.Sprintf("%s needs permission to show alerts and play sounds.\n\nPress r to request permission.", constants.AppName)
	}
	return boxStyle.Render(body)
}

func (m Model) viewConfirmDelete() string {
	if m.toDelete == nil {
		return ""
	}
	r := m.toDelete
	return boxStyle.Render(fmt.Sprintf("%s\n\n%s at %s\n%s\n\n(y/n)",
		dangerStyle.Render("Delete this reminder?"), r.FormatSchedule(), r.Time, r.Body))
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return dangerStyle.Render(m.status)
	}
	return okStyle.Render(m.status)
}
