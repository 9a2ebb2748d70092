// internal/domain/notification/repository.go
package notification

import (
	"context"
	"time"
)

// Repository defines operations for persisting and retrieving
// Notification records.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	// ListBySubject returns the subject's notifications ordered by
	// CreatedAt descending; unreadOnly restricts to StatusUnread.
	ListBySubject(ctx context.Context, subjectID string, unreadOnly bool) ([]*Notification, error)
	CountUnread(ctx context.Context, subjectID string) (int64, error)
	// UpdateStatus persists a status transition together with ReadAt.
	UpdateStatus(ctx context.Context, n *Notification) error
	// Delete removes one notification owned by the given subject.
	Delete(ctx context.Context, id, subjectID string) error
	// DeleteReadBefore bulk-deletes read notifications created before the
	// cutoff and reports how many were removed. Used by retention cleanup.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// HasTaskReminder reports whether a task reminder for the given slot
	// was already created for the subject within [dayStart, dayEnd). This
	// is the dedup key that keeps repeated triggers for the same slot and
	// day from double-notifying.
	HasTaskReminder(ctx context.Context, subjectID string, dayStart, dayEnd time.Time, slot ScheduleSlot) (bool, error)
}
