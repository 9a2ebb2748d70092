package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"discipline_tracker/internal/domain/discipline"
	"discipline_tracker/internal/domain/notification"
	"discipline_tracker/internal/domain/subject"
	idb "discipline_tracker/internal/infra/database"
)

// In-memory repository fakes. They return the same sentinel errors as the
// postgres implementations and apply saves through
// discipline.MergeDisciplines, so the services see identical semantics.

type fakeRecordRepo struct {
	mu          sync.Mutex
	records     map[string]*discipline.WeeklyRecord
	findManyErr error // injected batch-read failure
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{
		records: make(map[string]*discipline.WeeklyRecord),
	}
}

func recordKey(subjectID string, weekStart time.Time) string {
	return subjectID + "|" + weekStart.UTC().Format(time.RFC3339)
}

func cloneRecord(rec *discipline.WeeklyRecord) *discipline.WeeklyRecord {
	c := *rec
	c.Disciplines = make([]discipline.Progress, len(rec.Disciplines))
	copy(c.Disciplines, rec.Disciplines)
	return &c
}

func (f *fakeRecordRepo) Find(ctx context.Context, subjectID string, weekStart time.Time) (*discipline.WeeklyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[recordKey(subjectID, weekStart)]
	if !ok {
		return nil, idb.ErrRecordNotFound
	}
	return cloneRecord(rec), nil
}

func (f *fakeRecordRepo) FindMany(ctx context.Context, subjectIDs []string, weekStart time.Time) ([]*discipline.WeeklyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findManyErr != nil {
		return nil, f.findManyErr
	}
	out := make([]*discipline.WeeklyRecord, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		if rec, ok := f.records[recordKey(id, weekStart)]; ok {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) Save(ctx context.Context, rec *discipline.WeeklyRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := recordKey(rec.SubjectID, rec.WeekStart)
	existing, ok := f.records[key]
	if !ok {
		stored := cloneRecord(rec)
		if stored.ID == "" {
			stored.ID = uuid.NewString()
		}
		stored.CreatedAt = time.Now()
		stored.UpdatedAt = stored.CreatedAt
		f.records[key] = stored
		*rec = *cloneRecord(stored)
		return nil
	}
	existing.Disciplines = discipline.MergeDisciplines(existing.Disciplines, rec.Disciplines)
	if rec.Reflection.Valid {
		existing.Reflection = rec.Reflection
		existing.ReflectionSubmittedAt = rec.ReflectionSubmittedAt
	}
	existing.UpdatedAt = time.Now()
	*rec = *cloneRecord(existing)
	return nil
}

func (f *fakeRecordRepo) list(subjectID string) []*discipline.WeeklyRecord {
	var out []*discipline.WeeklyRecord
	for _, rec := range f.records {
		if rec.SubjectID == subjectID {
			out = append(out, cloneRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.After(out[j].WeekStart) })
	return out
}

func (f *fakeRecordRepo) ListRecent(ctx context.Context, subjectID string, limit int) ([]*discipline.WeeklyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.list(subjectID)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRecordRepo) ListAll(ctx context.Context, subjectID string) ([]*discipline.WeeklyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(subjectID), nil
}

type fakeSubjectRepo struct {
	mu       sync.Mutex
	subjects []*subject.Subject
	listErr  error
}

func (f *fakeSubjectRepo) GetByID(ctx context.Context, id string) (*subject.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subjects {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, idb.ErrSubjectNotFound
}

func (f *fakeSubjectRepo) ListActive(ctx context.Context) ([]*subject.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*subject.Subject, 0, len(f.subjects))
	for _, s := range f.subjects {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*notification.Notification
	createErr     map[string]error // per subject, injected failures
	now           func() time.Time // stamps CreatedAt; tests pin it alongside the service clock
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{createErr: make(map[string]error), now: time.Now}
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[n.SubjectID]; err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = f.now()
	}
	stored := *n
	f.notifications = append(f.notifications, &stored)
	return nil
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == id {
			c := *n
			return &c, nil
		}
	}
	return nil, idb.ErrNotificationNotFound
}

func (f *fakeNotificationRepo) ListBySubject(ctx context.Context, subjectID string, unreadOnly bool) ([]*notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*notification.Notification
	for _, n := range f.notifications {
		if n.SubjectID != subjectID {
			continue
		}
		if unreadOnly && n.Status != notification.StatusUnread {
			continue
		}
		c := *n
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, subjectID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.SubjectID == subjectID && n.Status == notification.StatusUnread {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) UpdateStatus(ctx context.Context, upd *notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == upd.ID {
			n.Status = upd.Status
			n.ReadAt = upd.ReadAt
			return nil
		}
	}
	return idb.ErrNotificationNotFound
}

func (f *fakeNotificationRepo) Delete(ctx context.Context, id, subjectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notifications {
		if n.ID == id && n.SubjectID == subjectID {
			f.notifications = append(f.notifications[:i], f.notifications[i+1:]...)
			return nil
		}
	}
	return idb.ErrNotificationNotFound
}

func (f *fakeNotificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []*notification.Notification
	var removed int64
	for _, n := range f.notifications {
		if n.Status == notification.StatusRead && n.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	f.notifications = kept
	return removed, nil
}

func (f *fakeNotificationRepo) HasTaskReminder(ctx context.Context, subjectID string, dayStart, dayEnd time.Time, slot notification.ScheduleSlot) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.SubjectID != subjectID || n.Type != notification.TypeTaskReminder {
			continue
		}
		if !n.ScheduleSlot.Valid || n.ScheduleSlot.String != string(slot) {
			continue
		}
		if !n.CreatedAt.Before(dayStart) && n.CreatedAt.Before(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}
