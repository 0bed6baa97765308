package reminderlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nudge/internal/models"
)

type AddReminderMsg struct{}

type EditReminderMsg struct {
	Reminder models.Reminder
}

type DeleteReminderMsg struct {
	Reminder models.Reminder
}

type Item struct {
	Reminder models.Reminder
}

func (i Item) Title() string {
	return fmt.Sprintf("🔔 %s  %s", i.Reminder.Time, i.Reminder.Body)
}

func (i Item) Description() string {
	return i.Reminder.FormatSchedule()
}

func (i Item) FilterValue() string { return i.Reminder.Body }

type KeyMap struct {
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(reminders []models.Reminder, width, height int) Model {
	l := list.New(toItems(reminders), list.NewDefaultDelegate(), width, height)
	l.Title = "Reminders"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("reminder", "reminders")

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete}
	}

	return Model{
		list: l,
		keys: keys,
	}
}

func toItems(reminders []models.Reminder) []list.Item {
	items := make([]list.Item, len(reminders))
	for i, r := range reminders {
		items[i] = Item{Reminder: r}
	}
	return items
}

// SetReminders replaces the items, keeping the projection order.
func (m *Model) SetReminders(reminders []models.Reminder) {
	m.list.SetItems(toItems(reminders))
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Filtering reports whether the user is typing a filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Len() int {
	return len(m.list.Items())
}

// Selected returns the highlighted reminder.
func (m Model) Selected() (models.Reminder, bool) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.Reminder{}, false
	}
	return item.Reminder, true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddReminderMsg{} }
		case key.Matches(msg, m.keys.Edit):
			if r, ok := m.Selected(); ok {
				return m, func() tea.Msg { return EditReminderMsg{Reminder: r} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if r, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteReminderMsg{Reminder: r} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}
