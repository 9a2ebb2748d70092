package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"discipline_tracker/internal/domain/notification"
)

var ErrNotificationNotFound = fmt.Errorf("notification not found")

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

const notificationColumns = `id, subject_id, title, message, type, status, schedule_slot, incomplete_tasks, read_at, created_at`

func scanNotification(row interface{ Scan(...any) error }) (*notification.Notification, error) {
	n := &notification.Notification{}
	var tasksJSON []byte
	err := row.Scan(&n.ID, &n.SubjectID, &n.Title, &n.Message, &n.Type, &n.Status,
		&n.ScheduleSlot, &tasksJSON, &n.ReadAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(tasksJSON) > 0 {
		if err := json.Unmarshal(tasksJSON, &n.IncompleteTasks); err != nil {
			return nil, fmt.Errorf("error decoding incomplete tasks snapshot: %w", err)
		}
	}
	return n, nil
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Status == "" {
		n.Status = notification.StatusUnread
	}
	tasksJSON, err := json.Marshal(n.IncompleteTasks)
	if err != nil {
		return fmt.Errorf("error encoding incomplete tasks snapshot: %w", err)
	}
	query := `INSERT INTO notifications (id, subject_id, title, message, type, status, schedule_slot, incomplete_tasks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`
	err = r.db.QueryRowContext(ctx, query,
		n.ID, n.SubjectID, n.Title, n.Message, n.Type, n.Status, n.ScheduleSlot, tasksJSON,
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	n, err := scanNotification(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("error getting notification by ID: %w", err)
	}
	return n, nil
}

func (r *PostgresNotificationRepository) ListBySubject(ctx context.Context, subjectID string, unreadOnly bool) ([]*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE subject_id = $1`
	if unreadOnly {
		query += ` AND status = 'UNREAD'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*notification.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

func (r *PostgresNotificationRepository) CountUnread(ctx context.Context, subjectID string) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE subject_id = $1 AND status = 'UNREAD'`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, subjectID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return count, nil
}

func (r *PostgresNotificationRepository) UpdateStatus(ctx context.Context, n *notification.Notification) error {
	query := `UPDATE notifications SET status = $1, read_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, n.Status, n.ReadAt, n.ID)
	if err != nil {
		return fmt.Errorf("error updating notification status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking notification update result: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) Delete(ctx context.Context, id, subjectID string) error {
	query := `DELETE FROM notifications WHERE id = $1 AND subject_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, subjectID)
	if err != nil {
		return fmt.Errorf("error deleting notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking notification delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE status = 'READ' AND created_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error deleting read notifications before cutoff: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error checking bulk delete result: %w", err)
	}
	return affected, nil
}

func (r *PostgresNotificationRepository) HasTaskReminder(ctx context.Context, subjectID string, dayStart, dayEnd time.Time, slot notification.ScheduleSlot) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM notifications
		WHERE subject_id = $1 AND type = 'TASK_REMINDER' AND schedule_slot = $2
		  AND created_at >= $3 AND created_at < $4
	)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, subjectID, string(slot), dayStart, dayEnd).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking for existing task reminder: %w", err)
	}
	return exists, nil
}
