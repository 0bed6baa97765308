package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nudge/internal/constants"
	"github.com/julianstephens/nudge/internal/models"
	"github.com/julianstephens/nudge/internal/notifier"
	"github.com/julianstephens/nudge/internal/permission"
	"github.com/julianstephens/nudge/internal/reminder"
	"github.com/julianstephens/nudge/internal/scheduler"
	"github.com/julianstephens/nudge/internal/storage/sqlite"
	"github.com/julianstephens/nudge/internal/tui/components/reminderlist"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func setupTestModel(t *testing.T, authorize bool) (Model, *reminder.Manager) {
	t.Helper()

	dir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(dir, "nudge.db"))
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	center := notifier.NewLocalCenter(dir, notifier.PrompterFunc(func(context.Context, notifier.Options) (bool, error) {
		return true, nil
	}))
	gate := permission.New(center)
	if authorize {
		if _, err := gate.RequestAuthorization(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	sched := scheduler.New(center)
	manager := reminder.New(store, sched, gate)
	t.Cleanup(func() { manager.Close(context.Background()) })

	return NewModel(context.Background(), manager, gate, nil), manager
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestPermissionScreen(t *testing.T) {
	m, _ := setupTestModel(t, false)

	msg := m.checkPermission()()
	m, _ = update(t, m, msg)
	if m.state != constants.StatePermission {
		t.Fatalf("expected permission screen, got %v", m.state)
	}
	if !strings.Contains(m.View(), "Press r") {
		t.Error("expected request hint on permission screen")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != constants.StateReminders {
		t.Fatalf("expected to continue to reminders, got %v", m.state)
	}

	m, _ = update(t, m, reminderlist.AddReminderMsg{})
	if m.state != constants.StateReminders || !m.statusErr {
		t.Error("adding without permission must be refused")
	}
}

func TestAuthorizedGoesStraightToList(t *testing.T) {
	m, _ := setupTestModel(t, true)

	m, _ = update(t, m, m.checkPermission()())
	if m.state != constants.StateReminders {
		t.Fatalf("expected reminders screen, got %v", m.state)
	}
	if !strings.Contains(m.View(), "notifications on") {
		t.Error("expected header to show notifications on")
	}
}

func TestProjectionUpdatesList(t *testing.T) {
	m, manager := setupTestModel(t, true)

	// Drain the initial snapshot.
	m, _ = update(t, m, waitForUpdate(m.updates)())

	if _, err := manager.SetReminder(context.Background(), reminder.Input{Kind: models.ScheduleDaily, Time: "07:30", Body: "Stretch"}); err != nil {
		t.Fatal(err)
	}

	m, cmd := update(t, m, waitForUpdate(m.updates)())
	if m.list.Len() != 1 {
		t.Fatalf("expected 1 item, got %d", m.list.Len())
	}
	if cmd == nil {
		t.Error("expected the model to keep listening for updates")
	}
}

func TestAddFormOpens(t *testing.T) {
	m, _ := setupTestModel(t, true)
	m, _ = update(t, m, m.checkPermission()())

	m, _ = update(t, m, reminderlist.AddReminderMsg{})
	if m.state != constants.StateAddReminder || m.form == nil {
		t.Fatal("expected the add form")
	}
	if m.reminderForm.Kind != models.ScheduleDaily {
		t.Errorf("expected daily default, got %s", m.reminderForm.Kind)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != constants.StateReminders || m.form != nil {
		t.Error("esc should close the form")
	}
}

func TestSaveCommand(t *testing.T) {
	m, manager := setupTestModel(t, true)

	fm := &ReminderFormModel{Kind: models.ScheduleWeekly, DayOfWeek: 4, Time: "18:00", Body: "Gym"}
	msg := m.save("", fm)().(opDoneMsg)
	if msg.err != nil {
		t.Fatalf("save failed: %v", msg.err)
	}

	list := manager.ListReminders()
	if len(list) != 1 || list[0].DayOfWeek != 4 {
		t.Fatalf("unexpected projection %+v", list)
	}

	fm.Time = "19:00"
	msg = m.save(list[0].ID, fm)().(opDoneMsg)
	if msg.err != nil {
		t.Fatalf("edit failed: %v", msg.err)
	}
	list = manager.ListReminders()
	if len(list) != 1 || list[0].Time != "19:00" {
		t.Errorf("expected edited reminder, got %+v", list)
	}
}

func TestConfirmDelete(t *testing.T) {
	m, manager := setupTestModel(t, true)
	m, _ = update(t, m, m.checkPermission()())

	r, err := manager.SetReminder(context.Background(), reminder.Input{Kind: models.ScheduleDaily, Time: "07:30", Body: "x"})
	if err != nil {
		t.Fatal(err)
	}

	m, _ = update(t, m, reminderlist.DeleteReminderMsg{Reminder: r})
	if m.state != constants.StateConfirmDelete {
		t.Fatalf("expected confirmation, got %v", m.state)
	}

	m, cmd := update(t, m, keyMsg("y"))
	if cmd == nil {
		t.Fatal("expected delete command")
	}
	done := cmd().(opDoneMsg)
	if done.err != nil {
		t.Fatalf("delete failed: %v", done.err)
	}
	if len(manager.ListReminders()) != 0 {
		t.Error("expected reminder to be deleted")
	}

	m, _ = update(t, m, done)
	if m.statusErr || !strings.Contains(m.status, "Deleted") {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestPermissionErrorReturnsToPermissionScreen(t *testing.T) {
	m, _ := setupTestModel(t, true)
	m, _ = update(t, m, m.checkPermission()())

	m, cmd := update(t, m, opDoneMsg{err: permission.ErrPermission})
	if m.state != constants.StatePermission {
		t.Errorf("expected permission screen, got %v", m.state)
	}
	if cmd == nil {
		t.Error("expected a permission re-check")
	}
}

func TestQuit(t *testing.T) {
	m, _ := setupTestModel(t, true)
	m, cmd := update(t, m, keyMsg("q"))
	if !m.quitting || cmd == nil {
		t.Error("expected quit")
	}
	if m.View() != "" {
		t.Error("expected empty view after quit")
	}
}
