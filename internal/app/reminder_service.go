// internal/app/reminder_service.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"discipline_tracker/internal/domain/discipline"
	"discipline_tracker/internal/domain/notification"
	"discipline_tracker/internal/domain/period"
	"discipline_tracker/internal/domain/subject"
	idb "discipline_tracker/internal/infra/database"
)

// IncompleteSummary is the answer to "what am I still missing this week".
type IncompleteSummary struct {
	HasIncomplete   bool
	IncompleteTasks []notification.IncompleteTask
	Message         string
}

// ReminderResult summarizes one fan-out run.
type ReminderResult struct {
	SubjectsScanned int
	Created         int
	Deduplicated    int
	Skipped         int // per-subject failures, logged and excluded
}

// ReminderService scans the population for unmet weekly obligations and
// persists summary notifications. It never delivers anything.
type ReminderService struct {
	subjects subject.Repository
	records  discipline.Repository
	notifs   notification.Repository
	cfg      discipline.Config
	periods  *period.Calculator
	log      *logrus.Logger

	concurrency  int64
	storeTimeout time.Duration
	now          func() time.Time
}

func NewReminderService(
	subjects subject.Repository,
	records discipline.Repository,
	notifs notification.Repository,
	cfg discipline.Config,
	periods *period.Calculator,
	log *logrus.Logger,
	concurrency int,
	storeTimeout time.Duration,
) *ReminderService {
	if concurrency < 1 {
		concurrency = 1
	}
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &ReminderService{
		subjects:     subjects,
		records:      records,
		notifs:       notifs,
		cfg:          cfg,
		periods:      periods,
		log:          log,
		concurrency:  int64(concurrency),
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
}

// IncompleteTasks computes the subject's unmet obligations as of now.
func (s *ReminderService) IncompleteTasks(ctx context.Context, subjectID string) (*IncompleteSummary, error) {
	now := s.now()
	weekStart := s.periods.WeekStart(now)

	rec, err := s.records.Find(ctx, subjectID, weekStart)
	if err != nil && err != idb.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to load weekly record: %w", err)
	}

	tasks := s.computeIncomplete(rec, now)
	summary := &IncompleteSummary{
		HasIncomplete:   len(tasks) > 0,
		IncompleteTasks: tasks,
	}
	if summary.HasIncomplete {
		summary.Message = reminderMessage(tasks)
	} else {
		summary.Message = "All tasks are on track this week."
	}
	return summary, nil
}

// computeIncomplete evaluates one record (nil means no record yet, i.e.
// everything unset) against the configured kinds.
//
// Daily kinds report exactly the elapsed weekdays not yet flagged — never
// future days, never completed ones. Weekly kinds report the "week"
// sentinel only when nothing is flagged AND the evaluation point has
// reached Sunday; until then a pending weekly kind is not an alarm.
func (s *ReminderService) computeIncomplete(rec *discipline.WeeklyRecord, now time.Time) []notification.IncompleteTask {
	elapsed := s.periods.WeekdaysThrough(now)
	lastElapsed := elapsed[len(elapsed)-1]

	var tasks []notification.IncompleteTask
	for _, k := range s.cfg.Kinds {
		var prog discipline.Progress
		if rec != nil {
			prog, _ = rec.Progress(k.Key)
		}

		switch k.Cadence {
		case discipline.CadenceDaily:
			var missing []string
			for _, d := range elapsed {
				if !prog.Done(d) {
					missing = append(missing, d.String())
				}
			}
			if len(missing) > 0 {
				tasks = append(tasks, notification.IncompleteTask{Discipline: k.Title, MissingDays: missing})
			}
		case discipline.CadenceWeekly:
			if !prog.Any() && lastElapsed == period.Sunday {
				tasks = append(tasks, notification.IncompleteTask{
					Discipline:  k.Title,
					MissingDays: []string{notification.WeekSentinel},
				})
			}
		}
	}
	return tasks
}

// CreateTaskReminders fans out over the eligible population (active,
// non-admin) and creates one summary notification per subject with unmet
// obligations for the given slot. The week's records load in one batched
// read; the per-subject dedup probe and write then run concurrently under
// the configured cap, each with its own store timeout. A subject whose
// write fails or times out is logged and skipped, never aborting the
// batch. A (subject, local date, slot) dedup probe keeps repeated triggers
// for the same slot and day from double-notifying.
func (s *ReminderService) CreateTaskReminders(ctx context.Context, slot notification.ScheduleSlot) (*ReminderResult, error) {
	now := s.now()
	weekStart := s.periods.WeekStart(now)
	dayStart := s.periods.DateOf(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	population, err := s.subjects.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active subjects: %w", err)
	}

	eligible := make([]*subject.Subject, 0, len(population))
	for _, subj := range population {
		if subj.Role == subject.RoleAdmin {
			continue
		}
		eligible = append(eligible, subj)
	}
	if len(eligible) == 0 {
		s.log.Infof("No eligible subjects for %s reminders; nothing to do.", slot)
		return &ReminderResult{}, nil
	}

	ids := make([]string, 0, len(eligible))
	for _, subj := range eligible {
		ids = append(ids, subj.ID)
	}
	records, err := s.records.FindMany(ctx, ids, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly records: %w", err)
	}
	// Subjects absent from the result have no record yet; computeIncomplete
	// treats their nil entry as a fully unset week.
	recordsBySubject := make(map[string]*discipline.WeeklyRecord, len(records))
	for _, rec := range records {
		recordsBySubject[rec.SubjectID] = rec
	}

	var created, deduplicated, skipped atomic.Int64
	sem := semaphore.NewWeighted(s.concurrency)
	for _, subj := range eligible {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled mid-run: stop starting new subjects,
			// in-flight ones finish on their own.
			s.log.Warnf("Reminder fan-out for %s interrupted: %v", slot, err)
			break
		}
		go func(subj *subject.Subject) {
			defer sem.Release(1)
			switch s.remindSubject(ctx, subj, recordsBySubject[subj.ID], slot, dayStart, dayEnd, now) {
			case remindCreated:
				created.Add(1)
			case remindDeduplicated:
				deduplicated.Add(1)
			case remindFailed:
				skipped.Add(1)
			}
		}(subj)
	}
	// Draining the full weight waits for every in-flight subject.
	if err := sem.Acquire(context.Background(), s.concurrency); err != nil {
		return nil, fmt.Errorf("failed to drain reminder fan-out: %w", err)
	}

	result := &ReminderResult{
		SubjectsScanned: len(eligible),
		Created:         int(created.Load()),
		Deduplicated:    int(deduplicated.Load()),
		Skipped:         int(skipped.Load()),
	}
	s.log.Infof("Reminder run for slot %s: %d scanned, %d created, %d deduplicated, %d skipped.",
		slot, result.SubjectsScanned, result.Created, result.Deduplicated, result.Skipped)
	return result, nil
}

type remindOutcome int

const (
	remindNothingDue remindOutcome = iota
	remindCreated
	remindDeduplicated
	remindFailed
)

func (s *ReminderService) remindSubject(
	ctx context.Context,
	subj *subject.Subject,
	rec *discipline.WeeklyRecord,
	slot notification.ScheduleSlot,
	dayStart, dayEnd time.Time,
	now time.Time,
) remindOutcome {
	cctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	tasks := s.computeIncomplete(rec, now)
	if len(tasks) == 0 {
		return remindNothingDue // no "all clear" spam
	}

	exists, err := s.notifs.HasTaskReminder(cctx, subj.ID, dayStart, dayEnd, slot)
	if err != nil {
		s.log.Errorf("Skipping subject %s in %s reminder run, dedup check failed: %v", subj.ID, slot, err)
		return remindFailed
	}
	if exists {
		s.log.Debugf("Subject %s already has a %s reminder today; skipping.", subj.ID, slot)
		return remindDeduplicated
	}

	n := &notification.Notification{
		ID:              uuid.NewString(),
		SubjectID:       subj.ID,
		Title:           "Weekly discipline reminder",
		Message:         reminderMessage(tasks),
		Type:            notification.TypeTaskReminder,
		Status:          notification.StatusUnread,
		ScheduleSlot:    sql.NullString{String: string(slot), Valid: true},
		IncompleteTasks: tasks,
	}
	if err := s.notifs.Create(cctx, n); err != nil {
		s.log.Errorf("Skipping subject %s in %s reminder run, create failed: %v", subj.ID, slot, err)
		return remindFailed
	}
	return remindCreated
}

// reminderMessage renders an incomplete-task snapshot into one
// human-readable line, e.g.
// "You still have tasks to complete this week - Prayer: Monday, Tuesday; Fasting: week".
func reminderMessage(tasks []notification.IncompleteTask) string {
	parts := make([]string, 0, len(tasks))
	for _, t := range tasks {
		parts = append(parts, fmt.Sprintf("%s: %s", t.Discipline, strings.Join(t.MissingDays, ", ")))
	}
	return "You still have tasks to complete this week - " + strings.Join(parts, "; ")
}
