// internal/app/progress_service.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"discipline_tracker/internal/domain/discipline"
	"discipline_tracker/internal/domain/period"
	idb "discipline_tracker/internal/infra/database"
)

// MaxPreviousWeeks caps the history page size.
const MaxPreviousWeeks = 52

// DisciplineUpdate is one incoming per-kind update in a save request.
type DisciplineUpdate struct {
	Kind string
	Days [period.DaysPerWeek]bool
}

// DashboardStats is the analytics bundle behind the dashboard endpoint.
// TasksCompleted/TotalTasks is the raw checkbox metric;
// RequiredCompleted/TotalRequired feeds the requirement-weighted rate. The
// two measure different things and are computed independently.
type DashboardStats struct {
	TasksCompleted    int
	TotalTasks        int
	RequiredCompleted int
	TotalRequired     int
	CompletionRate    int
	CurrentStreak     int
	Breakdown         []discipline.KindStats
}

// ProgressService owns the weekly-record read and write paths and the
// synchronous analytics surface.
type ProgressService struct {
	records discipline.Repository
	cfg     discipline.Config
	periods *period.Calculator
	log     *logrus.Logger
	now     func() time.Time
}

func NewProgressService(
	records discipline.Repository,
	cfg discipline.Config,
	periods *period.Calculator,
	log *logrus.Logger,
) *ProgressService {
	return &ProgressService{
		records: records,
		cfg:     cfg,
		periods: periods,
		log:     log,
		now:     time.Now,
	}
}

// GetOrCreateCurrentWeek returns the subject's record for the week
// containing now, creating it with zeroed entries on first access. A
// creation race with another request for the same key resolves by
// re-reading the winner's row.
func (s *ProgressService) GetOrCreateCurrentWeek(ctx context.Context, subjectID string) (*discipline.WeeklyRecord, error) {
	weekStart := s.periods.WeekStart(s.now())

	rec, err := s.records.Find(ctx, subjectID, weekStart)
	if err == nil {
		return s.withConfiguredKinds(rec), nil
	}
	if err != idb.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to find current week record: %w", err)
	}

	rec = discipline.NewWeeklyRecord(subjectID, weekStart, s.periods.WeekEnd(weekStart), s.cfg)
	if err := s.records.Save(ctx, rec); err != nil {
		if err == idb.ErrDuplicateRecord {
			s.log.Infof("Concurrent creation for subject %s week %s; re-reading existing record.", subjectID, weekStart.Format("2006-01-02"))
			rec, err = s.records.Find(ctx, subjectID, weekStart)
			if err != nil {
				return nil, fmt.Errorf("failed to re-read record after creation race: %w", err)
			}
			return s.withConfiguredKinds(rec), nil
		}
		return nil, fmt.Errorf("failed to create current week record: %w", err)
	}
	return rec, nil
}

// ParseWeekDate parses a yyyy-mm-dd value as midnight in the week
// calculator's zone. Week boundaries are computed in that zone, so parsing
// a client-named day anywhere else can land it in the neighboring week.
func (s *ProgressService) ParseWeekDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, s.periods.Location())
}

// SaveProgress merges the given per-kind updates into the subject's record
// for the week containing weekStartOverride (or now), creating the record
// if needed. A non-nil reflection overwrites the stored text and stamps its
// submission time.
func (s *ProgressService) SaveProgress(
	ctx context.Context,
	subjectID string,
	weekStartOverride *time.Time,
	updates []DisciplineUpdate,
	reflection *string,
) (*discipline.WeeklyRecord, error) {
	ref := s.now()
	if weekStartOverride != nil {
		ref = *weekStartOverride
	}
	weekStart := s.periods.WeekStart(ref)

	rec := &discipline.WeeklyRecord{
		SubjectID: subjectID,
		WeekStart: weekStart,
		WeekEnd:   s.periods.WeekEnd(weekStart),
	}
	for _, u := range updates {
		rec.Disciplines = append(rec.Disciplines, discipline.Progress{Kind: u.Kind, Days: u.Days})
	}
	if reflection != nil {
		rec.Reflection = sql.NullString{String: *reflection, Valid: true}
		rec.ReflectionSubmittedAt = sql.NullTime{Time: s.now(), Valid: true}
	}

	if err := s.records.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	return s.withConfiguredKinds(rec), nil
}

// GetDashboardStats computes the full analytics bundle for the subject's
// current week plus the backward streak over their whole history.
func (s *ProgressService) GetDashboardStats(ctx context.Context, subjectID string) (*DashboardStats, error) {
	weekStart := s.periods.WeekStart(s.now())

	var disciplines []discipline.Progress
	rec, err := s.records.Find(ctx, subjectID, weekStart)
	if err == nil {
		disciplines = rec.Disciplines
	} else if err != idb.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to load current week record: %w", err)
	}
	// An absent record scores as all-unset against the full denominator.

	history, err := s.records.ListAll(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load record history: %w", err)
	}

	return &DashboardStats{
		TasksCompleted:    discipline.TotalCompletedTasks(disciplines),
		TotalTasks:        s.cfg.TotalTasks(),
		RequiredCompleted: discipline.RequiredCompleted(s.cfg, disciplines),
		TotalRequired:     s.cfg.Denominator(),
		CompletionRate:    discipline.CompletionRate(s.cfg, disciplines),
		CurrentStreak:     discipline.CurrentStreak(history, s.now(), s.periods.Location()),
		Breakdown:         discipline.Breakdown(s.cfg, disciplines),
	}, nil
}

// GetPreviousWeeks returns the subject's most recent records, newest
// first. The limit is clamped to [1, MaxPreviousWeeks].
func (s *ProgressService) GetPreviousWeeks(ctx context.Context, subjectID string, limit int) ([]*discipline.WeeklyRecord, error) {
	if limit < 1 {
		limit = 12
	}
	if limit > MaxPreviousWeeks {
		limit = MaxPreviousWeeks
	}
	records, err := s.records.ListRecent(ctx, subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list previous weeks: %w", err)
	}
	return records, nil
}

// withConfiguredKinds ensures the returned view carries a zeroed entry for
// any configured kind the stored document predates. The fill is
// presentation-only and not persisted.
func (s *ProgressService) withConfiguredKinds(rec *discipline.WeeklyRecord) *discipline.WeeklyRecord {
	for _, k := range s.cfg.Kinds {
		if _, ok := rec.Progress(k.Key); !ok {
			rec.Disciplines = append(rec.Disciplines, discipline.Progress{Kind: k.Key})
		}
	}
	return rec
}
