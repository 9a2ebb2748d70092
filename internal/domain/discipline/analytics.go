// internal/domain/discipline/analytics.go
package discipline

import (
	"time"

	"discipline_tracker/internal/domain/period"
)

// KindStats is the per-discipline slice of the dashboard breakdown.
type KindStats struct {
	Kind          string
	Title         string
	Cadence       Cadence
	DaysCompleted int // raw flags set
	RequiredDone  int // requirement-weighted credit earned
	RequiredMax   int // 7 for daily kinds, 1 for weekly kinds
}

// RequiredCompleted computes the requirement-weighted numerator: every
// flagged day counts for daily kinds, weekly kinds earn a single credit if
// any day is flagged. A kind missing from the record still scores 0 against
// the full configured denominator.
func RequiredCompleted(cfg Config, disciplines []Progress) int {
	sum := 0
	for _, k := range cfg.Kinds {
		p, _ := findProgress(disciplines, k.Key)
		switch k.Cadence {
		case CadenceDaily:
			sum += p.Count()
		case CadenceWeekly:
			if p.Any() {
				sum++
			}
		}
	}
	return sum
}

// CompletionRate returns the requirement-weighted completion percentage in
// [0,100], rounded half-up. A configuration with zero kinds yields 0, never
// a division error.
func CompletionRate(cfg Config, disciplines []Progress) int {
	den := cfg.Denominator()
	if den == 0 {
		return 0
	}
	sum := RequiredCompleted(cfg, disciplines)
	return (200*sum + den) / (2 * den)
}

// TotalCompletedTasks is the raw count of flags set across all entries,
// with no cadence weighting. It intentionally diverges from the rate's
// numerator whenever a weekly kind has more than one day marked.
func TotalCompletedTasks(disciplines []Progress) int {
	total := 0
	for _, p := range disciplines {
		total += p.Count()
	}
	return total
}

// Breakdown returns per-kind stats in configuration order.
func Breakdown(cfg Config, disciplines []Progress) []KindStats {
	stats := make([]KindStats, 0, len(cfg.Kinds))
	for _, k := range cfg.Kinds {
		p, _ := findProgress(disciplines, k.Key)
		s := KindStats{
			Kind:          k.Key,
			Title:         k.Title,
			Cadence:       k.Cadence,
			DaysCompleted: p.Count(),
		}
		switch k.Cadence {
		case CadenceDaily:
			s.RequiredMax = period.DaysPerWeek
			s.RequiredDone = p.Count()
		case CadenceWeekly:
			s.RequiredMax = 1
			if p.Any() {
				s.RequiredDone = 1
			}
		}
		stats = append(stats, s)
	}
	return stats
}

// CurrentStreak counts consecutive calendar days, walking backward from
// today, on which at least one discipline was marked complete.
//
// The date map is reconstructed from each record's seven calendar dates,
// skipping dates strictly in the future. A day with no record covering it
// is "absent" rather than "false"; absence breaks the streak except for
// today itself, which is skipped so a streak is not reset merely because
// this week's record has not been created yet. The walk is capped at the
// earliest weekStart on file, so empty or sparse history can never loop.
func CurrentStreak(records []*WeeklyRecord, now time.Time, loc *time.Location) int {
	if len(records) == 0 {
		return 0
	}

	today := dateOnly(now.In(loc))
	earliest := dateOnly(records[0].WeekStart.In(loc))
	completed := make(map[string]bool)
	for _, r := range records {
		ws := dateOnly(r.WeekStart.In(loc))
		if ws.Before(earliest) {
			earliest = ws
		}
		for i := 0; i < period.DaysPerWeek; i++ {
			day := ws.AddDate(0, 0, i)
			if day.After(today) {
				continue
			}
			done := false
			for _, p := range r.Disciplines {
				if p.Days[i] {
					done = true
					break
				}
			}
			completed[dayKey(day)] = done
		}
	}

	day := today
	if _, ok := completed[dayKey(day)]; !ok {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for !day.Before(earliest) {
		done, ok := completed[dayKey(day)]
		if !ok || !done {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func findProgress(disciplines []Progress, kind string) (Progress, bool) {
	for _, p := range disciplines {
		if p.Kind == kind {
			return p, true
		}
	}
	return Progress{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
