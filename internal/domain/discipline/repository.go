// internal/domain/discipline/repository.go
package discipline

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving
// WeeklyRecord entities. Implementations must uphold the uniqueness
// invariant: at most one record per (subjectID, weekStart).
type Repository interface {
	// Find returns the record for the exact (subjectID, weekStart) key.
	Find(ctx context.Context, subjectID string, weekStart time.Time) (*WeeklyRecord, error)
	// FindMany returns the records for the given subjects at one weekStart.
	// Subjects without a record for that week are simply absent from the
	// result; no error is raised for them.
	FindMany(ctx context.Context, subjectIDs []string, weekStart time.Time) ([]*WeeklyRecord, error)
	// Save upserts by (SubjectID, WeekStart). The record's Disciplines are
	// treated as a partial update set and merged into any existing entries
	// per MergeDisciplines; the merge must happen inside the store's atomic
	// boundary so concurrent saves for the same key cannot lose updates. A
	// valid Reflection overwrites the stored one along with its timestamp.
	// On return the record reflects the merged, persisted state.
	Save(ctx context.Context, rec *WeeklyRecord) error
	// ListRecent returns up to limit records for the subject, ordered by
	// weekStart descending.
	ListRecent(ctx context.Context, subjectID string, limit int) ([]*WeeklyRecord, error)
	// ListAll returns every record for the subject, for streak
	// reconstruction.
	ListAll(ctx context.Context, subjectID string) ([]*WeeklyRecord, error)
}
