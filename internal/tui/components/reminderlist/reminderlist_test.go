package reminderlist

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nudge/internal/models"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestItem(t *testing.T) {
	item := Item{Reminder: models.Reminder{Kind: models.ScheduleWeekly, DayOfWeek: 1, Time: "07:30", Body: "Stretch"}}
	if item.Title() != "🔔 07:30  Stretch" {
		t.Errorf("Title() = %q", item.Title())
	}
	if item.Description() != "Weekly: Sunday" {
		t.Errorf("Description() = %q", item.Description())
	}
	if item.FilterValue() != "Stretch" {
		t.Errorf("FilterValue() = %q", item.FilterValue())
	}
}

func TestUpdateEmitsMessages(t *testing.T) {
	r := models.Reminder{ID: "a", Kind: models.ScheduleDaily, Time: "07:30", Body: "Stretch"}
	m := New([]models.Reminder{r}, 80, 20)

	_, cmd := m.Update(keyMsg("a"))
	if _, ok := cmd().(AddReminderMsg); !ok {
		t.Error("expected AddReminderMsg")
	}

	_, cmd = m.Update(keyMsg("d"))
	msg, ok := cmd().(DeleteReminderMsg)
	if !ok || msg.Reminder.ID != "a" {
		t.Errorf("expected DeleteReminderMsg for a, got %#v", msg)
	}

	_, cmd = m.Update(keyMsg("e"))
	if edit, ok := cmd().(EditReminderMsg); !ok || edit.Reminder.ID != "a" {
		t.Errorf("expected EditReminderMsg for a, got %#v", edit)
	}
}

func TestDeleteOnEmptyList(t *testing.T) {
	m := New(nil, 80, 20)
	if _, cmd := m.Update(keyMsg("d")); cmd != nil {
		t.Error("expected no command without a selection")
	}
}

func TestSetReminders(t *testing.T) {
	m := New(nil, 80, 20)
	m.SetReminders([]models.Reminder{
		{ID: "a", Kind: models.ScheduleDaily, Time: "07:30", Body: "x"},
		{ID: "b", Kind: models.ScheduleDaily, Time: "09:00", Body: "y"},
	})
	if m.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", m.Len())
	}
	if r, ok := m.Selected(); !ok || r.ID != "a" {
		t.Errorf("expected first reminder selected, got %+v", r)
	}
}
