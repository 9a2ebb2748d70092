// internal/app/notification_service.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"discipline_tracker/internal/domain/notification"
	idb "discipline_tracker/internal/infra/database"
)

// NotificationService owns the notification read model and lifecycle:
// list, unread count, read/dismiss transitions, deletion and retention
// cleanup.
type NotificationService struct {
	notifs    notification.Repository
	log       *logrus.Logger
	retention time.Duration
	now       func() time.Time
}

func NewNotificationService(notifs notification.Repository, log *logrus.Logger, retentionDays int) *NotificationService {
	if retentionDays < 1 {
		retentionDays = 30
	}
	return &NotificationService{
		notifs:    notifs,
		log:       log,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

func (s *NotificationService) List(ctx context.Context, subjectID string, unreadOnly bool) ([]*notification.Notification, error) {
	notifications, err := s.notifs.ListBySubject(ctx, subjectID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, subjectID string) (int64, error) {
	count, err := s.notifs.CountUnread(ctx, subjectID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// CreateGeneral persists a directly created (non-reminder) notification.
func (s *NotificationService) CreateGeneral(ctx context.Context, subjectID, title, message string) (*notification.Notification, error) {
	n := &notification.Notification{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Title:     title,
		Message:   message,
		Type:      notification.TypeGeneral,
		Status:    notification.StatusUnread,
	}
	if err := s.notifs.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

// MarkRead transitions the notification to READ and stamps ReadAt. Reading
// an already-read notification is a no-op, not an error.
func (s *NotificationService) MarkRead(ctx context.Context, subjectID, id string) (*notification.Notification, error) {
	n, err := s.ownedNotification(ctx, subjectID, id)
	if err != nil {
		return nil, err
	}
	if n.Status == notification.StatusRead {
		return n, nil
	}
	n.Status = notification.StatusRead
	n.ReadAt = sql.NullTime{Time: s.now(), Valid: true}
	if err := s.notifs.UpdateStatus(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return n, nil
}

// Dismiss transitions the notification to DISMISSED.
func (s *NotificationService) Dismiss(ctx context.Context, subjectID, id string) (*notification.Notification, error) {
	n, err := s.ownedNotification(ctx, subjectID, id)
	if err != nil {
		return nil, err
	}
	if n.Status == notification.StatusDismissed {
		return n, nil
	}
	n.Status = notification.StatusDismissed
	if err := s.notifs.UpdateStatus(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to dismiss notification: %w", err)
	}
	return n, nil
}

// Delete removes one notification owned by the subject.
func (s *NotificationService) Delete(ctx context.Context, subjectID, id string) error {
	return s.notifs.Delete(ctx, id, subjectID)
}

// CleanupExpired bulk-deletes read notifications older than the retention
// horizon and returns how many were removed. Wired as the scheduler's
// cleanup job.
func (s *NotificationService) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	removed, err := s.notifs.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up expired notifications: %w", err)
	}
	s.log.Infof("Retention cleanup removed %d read notifications older than %s.", removed, cutoff.Format("2006-01-02"))
	return removed, nil
}

// ownedNotification loads the notification and hides other subjects' rows
// behind not-found.
func (s *NotificationService) ownedNotification(ctx context.Context, subjectID, id string) (*notification.Notification, error) {
	n, err := s.notifs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.SubjectID != subjectID {
		// Do not leak other subjects' notifications.
		return nil, idb.ErrNotificationNotFound
	}
	return n, nil
}
