package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestWeekStart(t *testing.T) {
	loc := mustLoc(t, "Europe/Berlin")
	c := NewCalculator(loc)

	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "mid-week wednesday",
			in:   time.Date(2025, 6, 11, 14, 30, 0, 0, loc), // Wednesday
			want: time.Date(2025, 6, 9, 0, 0, 0, 0, loc),
		},
		{
			name: "monday maps to itself at midnight",
			in:   time.Date(2025, 6, 9, 23, 59, 0, 0, loc),
			want: time.Date(2025, 6, 9, 0, 0, 0, 0, loc),
		},
		{
			name: "sunday belongs to the preceding monday",
			in:   time.Date(2025, 6, 15, 1, 0, 0, 0, loc), // Sunday
			want: time.Date(2025, 6, 9, 0, 0, 0, 0, loc),
		},
		{
			name: "week spanning a month boundary",
			in:   time.Date(2025, 7, 1, 9, 0, 0, 0, loc), // Tuesday
			want: time.Date(2025, 6, 30, 0, 0, 0, 0, loc),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.WeekStart(tc.in)
			assert.True(t, tc.want.Equal(got), "got %s", got)
			assert.Equal(t, time.Monday, got.Weekday())
			// Idempotency: applying WeekStart to its own result is a no-op.
			assert.True(t, got.Equal(c.WeekStart(got)))
		})
	}
}

func TestWeekEnd(t *testing.T) {
	loc := mustLoc(t, "Europe/Berlin")
	c := NewCalculator(loc)

	ws := time.Date(2025, 6, 9, 0, 0, 0, 0, loc)
	end := c.WeekEnd(ws)

	assert.Equal(t, time.Sunday, end.Weekday())
	assert.True(t, time.Date(2025, 6, 15, 23, 59, 59, int(999*time.Millisecond), loc).Equal(end))
}

func TestWeekdaysThrough(t *testing.T) {
	c := NewCalculator(time.UTC)

	wednesday := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, []Weekday{Monday, Tuesday, Wednesday}, c.WeekdaysThrough(wednesday))

	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []Weekday{Monday}, c.WeekdaysThrough(monday))

	sunday := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)
	assert.Len(t, c.WeekdaysThrough(sunday), DaysPerWeek)
}

func TestFromTime(t *testing.T) {
	// 2025-06-08 is a Sunday; the Monday-first index must put it last.
	sunday := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, Sunday, FromTime(sunday))
	assert.Equal(t, Monday, FromTime(sunday.AddDate(0, 0, 1)))
	assert.Equal(t, Saturday, FromTime(sunday.AddDate(0, 0, 6)))
}

func TestWeekdayString(t *testing.T) {
	assert.Equal(t, "Monday", Monday.String())
	assert.Equal(t, "Sunday", Sunday.String())
	assert.Equal(t, "Unknown", Weekday(9).String())
}
