package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/nudge/internal/models"
	"github.com/julianstephens/nudge/internal/storage"
)

const reminderColumns = `id, notification_id, kind, day_of_week, time, body, created_at`

func (s *Store) AddReminder(r models.Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if s.db == nil {
		return storage.WriteError("insert reminder", errors.New("store not loaded"))
	}

	dayOfWeek := 0
	if r.IsWeekly() {
		dayOfWeek = r.DayOfWeek
	}

	tx, err := s.db.Begin()
	if err != nil {
		return storage.WriteError("begin transaction", err)
	}

	_, err = tx.Exec(`
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		r.ID, r.NotificationID, string(r.Kind), dayOfWeek, r.Time, r.Body, r.CreatedAt.UTC(),
	)
	if err != nil {
		_ = tx.Rollback()
		return storage.WriteError("insert reminder", err)
	}

	if err := tx.Commit(); err != nil {
		return storage.WriteError("commit reminder", err)
	}
	return nil
}

func (s *Store) GetReminder(id string) (models.Reminder, error) {
	if s.db == nil {
		return models.Reminder{}, fmt.Errorf("store not loaded")
	}

	var r models.Reminder
	var kind string
	err := s.db.QueryRow(`SELECT `+reminderColumns+` FROM reminders WHERE id = $1`, id).Scan(
		&r.ID, &r.NotificationID, &kind, &r.DayOfWeek, &r.Time, &r.Body, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reminder{}, storage.NotFound(id)
	}
	if err != nil {
		return models.Reminder{}, fmt.Errorf("failed to get reminder: %w", err)
	}
	r.Kind = models.ScheduleKind(kind)

	return r, nil
}

func (s *Store) GetAllReminders() ([]models.Reminder, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not loaded")
	}

	rows, err := s.db.Query(`
		SELECT ` + reminderColumns + `
		FROM reminders
		ORDER BY time ASC, seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	reminders := []models.Reminder{}
	for rows.Next() {
		var r models.Reminder
		var kind string
		if err := rows.Scan(&r.ID, &r.NotificationID, &kind, &r.DayOfWeek, &r.Time, &r.Body, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		r.Kind = models.ScheduleKind(kind)
		reminders = append(reminders, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}

	return reminders, nil
}

func (s *Store) DeleteReminder(id string) error {
	if s.db == nil {
		return storage.WriteError("delete reminder", errors.New("store not loaded"))
	}

	result, err := s.db.Exec(`DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return storage.WriteError("delete reminder", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storage.WriteError("delete reminder", err)
	}
	if rowsAffected == 0 {
		return storage.NotFound(id)
	}

	return nil
}
