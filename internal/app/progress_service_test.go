package app

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discipline_tracker/internal/domain/discipline"
	"discipline_tracker/internal/domain/period"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// 2025-06-11 is a Wednesday.
var wednesday = time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)

func newProgressService(repo *fakeRecordRepo, now time.Time) *ProgressService {
	svc := NewProgressService(repo, discipline.DefaultConfig(), period.NewCalculator(time.UTC), quietLogger())
	svc.now = fixedClock(now)
	return svc
}

func markedDays(marked ...period.Weekday) [period.DaysPerWeek]bool {
	var d [period.DaysPerWeek]bool
	for _, m := range marked {
		d[m] = true
	}
	return d
}

func TestGetOrCreateCurrentWeek(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newProgressService(repo, wednesday)
	ctx := context.Background()

	rec, err := svc.GetOrCreateCurrentWeek(ctx, "subj-1")
	require.NoError(t, err)

	assert.Equal(t, time.Monday, rec.WeekStart.Weekday())
	assert.True(t, rec.WeekStart.Equal(time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)))
	assert.Len(t, rec.Disciplines, 4)
	for _, p := range rec.Disciplines {
		assert.False(t, p.Any())
	}

	// Second call returns the persisted record, not a new one.
	again, err := svc.GetOrCreateCurrentWeek(ctx, "subj-1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
}

func TestSaveProgressMergesByKind(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newProgressService(repo, wednesday)
	ctx := context.Background()

	_, err := svc.SaveProgress(ctx, "subj-1", nil, []DisciplineUpdate{
		{Kind: "prayer", Days: markedDays(period.Monday, period.Tuesday)},
	}, nil)
	require.NoError(t, err)

	// Saving bible_study must not erase prayer's days.
	rec, err := svc.SaveProgress(ctx, "subj-1", nil, []DisciplineUpdate{
		{Kind: "bible_study", Days: markedDays(period.Wednesday)},
	}, nil)
	require.NoError(t, err)

	prayer, ok := rec.Progress("prayer")
	require.True(t, ok)
	assert.Equal(t, markedDays(period.Monday, period.Tuesday), prayer.Days)
	study, ok := rec.Progress("bible_study")
	require.True(t, ok)
	assert.Equal(t, markedDays(period.Wednesday), study.Days)
}

func TestSaveProgressReflection(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newProgressService(repo, wednesday)
	ctx := context.Background()

	text := "A week of small beginnings."
	rec, err := svc.SaveProgress(ctx, "subj-1", nil, nil, &text)
	require.NoError(t, err)
	require.True(t, rec.Reflection.Valid)
	assert.Equal(t, text, rec.Reflection.String)
	assert.True(t, rec.ReflectionSubmittedAt.Valid)

	// A save without a reflection leaves the stored one alone.
	rec, err = svc.SaveProgress(ctx, "subj-1", nil, []DisciplineUpdate{
		{Kind: "prayer", Days: markedDays(period.Monday)},
	}, nil)
	require.NoError(t, err)
	assert.True(t, rec.Reflection.Valid)
	assert.Equal(t, text, rec.Reflection.String)

	// An explicit new reflection overwrites text and timestamp.
	overwrite := "Rewritten."
	rec, err = svc.SaveProgress(ctx, "subj-1", nil, nil, &overwrite)
	require.NoError(t, err)
	assert.Equal(t, overwrite, rec.Reflection.String)
}

func TestSaveProgressWeekStartOverride(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newProgressService(repo, wednesday)
	ctx := context.Background()

	lastTuesday := wednesday.AddDate(0, 0, -8)
	rec, err := svc.SaveProgress(ctx, "subj-1", &lastTuesday, []DisciplineUpdate{
		{Kind: "prayer", Days: markedDays(period.Friday)},
	}, nil)
	require.NoError(t, err)
	assert.True(t, rec.WeekStart.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)))
}

func TestParseWeekDateUsesCalculatorZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	repo := newFakeRecordRepo()
	svc := NewProgressService(repo, discipline.DefaultConfig(), period.NewCalculator(loc), quietLogger())
	svc.now = fixedClock(time.Date(2025, 6, 11, 15, 0, 0, 0, loc))

	// 2025-06-09 is a Monday. Parsed as UTC midnight it would still be
	// Sunday in New York and resolve to the week before.
	parsed, err := svc.ParseWeekDate("2025-06-09")
	require.NoError(t, err)
	assert.Equal(t, loc, parsed.Location())

	rec, err := svc.SaveProgress(context.Background(), "subj-1", &parsed, []DisciplineUpdate{
		{Kind: "prayer", Days: markedDays(period.Monday)},
	}, nil)
	require.NoError(t, err)
	assert.True(t, rec.WeekStart.Equal(time.Date(2025, 6, 9, 0, 0, 0, 0, loc)))
}

func TestGetDashboardStats(t *testing.T) {
	repo := newFakeRecordRepo()
	// Evaluate on the week's Sunday so the reference scenario applies.
	sunday := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newProgressService(repo, sunday)
	ctx := context.Background()

	_, err := svc.SaveProgress(ctx, "subj-1", nil, []DisciplineUpdate{
		{Kind: "prayer", Days: markedDays(period.Monday, period.Tuesday)},
		{Kind: "bible_study"},
		{Kind: "fasting"},
		{Kind: "evangelism", Days: markedDays(period.Sunday)},
	}, nil)
	require.NoError(t, err)

	stats, err := svc.GetDashboardStats(ctx, "subj-1")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TasksCompleted)
	assert.Equal(t, 28, stats.TotalTasks)
	assert.Equal(t, 3, stats.RequiredCompleted)
	assert.Equal(t, 16, stats.TotalRequired)
	assert.Equal(t, 19, stats.CompletionRate)
	assert.Len(t, stats.Breakdown, 4)
	// Sunday itself is marked via evangelism, Saturday is not: streak 1.
	assert.Equal(t, 1, stats.CurrentStreak)
}

func TestGetDashboardStatsWithNoRecords(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newProgressService(repo, wednesday)

	stats, err := svc.GetDashboardStats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TasksCompleted)
	assert.Equal(t, 0, stats.CompletionRate)
	assert.Equal(t, 0, stats.CurrentStreak)
}

func TestGetPreviousWeeksClampsLimit(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newProgressService(repo, wednesday)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		override := wednesday.AddDate(0, 0, -7*i)
		_, err := svc.SaveProgress(ctx, "subj-1", &override, []DisciplineUpdate{
			{Kind: "prayer", Days: markedDays(period.Monday)},
		}, nil)
		require.NoError(t, err)
	}

	records, err := svc.GetPreviousWeeks(ctx, "subj-1", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Ordered by weekStart descending.
	assert.True(t, records[0].WeekStart.After(records[1].WeekStart))

	records, err = svc.GetPreviousWeeks(ctx, "subj-1", 1000)
	require.NoError(t, err)
	assert.Len(t, records, 4) // clamp to 52 still returns everything on file
}
