// internal/domain/period/period.go
package period

import "time"

// DaysPerWeek is the fixed width of every weekly structure in the tracker.
const DaysPerWeek = 7

// Weekday indexes the Monday-first week used throughout the tracker.
// Note this deliberately differs from time.Weekday, which is Sunday-first;
// use FromTime to convert.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [DaysPerWeek]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return "Unknown"
	}
	return weekdayNames[d]
}

// FromTime converts the standard library's Sunday-first weekday of t into
// the tracker's Monday-first index.
func FromTime(t time.Time) Weekday {
	wd := int(t.Weekday()) // Sunday=0 .. Saturday=6
	if wd == 0 {
		return Sunday
	}
	return Weekday(wd - 1)
}

// Calculator performs all week-boundary arithmetic, pinned to a single
// configured timezone. It is stateless apart from that zone; the same zone
// must be shared with the job scheduler so "today" means the same thing in
// both places.
type Calculator struct {
	loc *time.Location
}

func NewCalculator(loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{loc: loc}
}

func (c *Calculator) Location() *time.Location {
	return c.loc
}

// WeekStart returns the Monday at local midnight of the week containing t.
// Idempotent: WeekStart(WeekStart(t)) == WeekStart(t).
func (c *Calculator) WeekStart(t time.Time) time.Time {
	lt := t.In(c.loc)
	wd := int(lt.Weekday()) // Sunday=0
	offset := 1 - wd
	if wd == 0 {
		offset = -6
	}
	lt = lt.AddDate(0, 0, offset)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, c.loc)
}

// WeekEnd returns the last instant of the week starting at weekStart:
// the following Sunday at 23:59:59.999 local time.
func (c *Calculator) WeekEnd(weekStart time.Time) time.Time {
	e := weekStart.In(c.loc).AddDate(0, 0, DaysPerWeek-1)
	return time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, int(999*time.Millisecond), c.loc)
}

// DateOf truncates t to local midnight.
func (c *Calculator) DateOf(t time.Time) time.Time {
	lt := t.In(c.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, c.loc)
}

// WeekdaysThrough enumerates Monday through now's weekday inclusive, in
// Monday-first order. Days that have not occurred yet this week are never
// included, which is what keeps mid-week reminders from flagging them.
func (c *Calculator) WeekdaysThrough(now time.Time) []Weekday {
	last := FromTime(now.In(c.loc))
	days := make([]Weekday, 0, DaysPerWeek)
	for d := Monday; d <= last; d++ {
		days = append(days, d)
	}
	return days
}
