// internal/domain/discipline/record.go
package discipline

import (
	"database/sql"
	"time"

	"discipline_tracker/internal/domain/period"
)

// Progress holds one discipline kind's completion flags for a week,
// indexed by the Monday-first weekday enum.
type Progress struct {
	Kind string                   `json:"kind"`
	Days [period.DaysPerWeek]bool `json:"days"`
}

// Done reports whether the given weekday is flagged complete.
func (p Progress) Done(d period.Weekday) bool {
	return p.Days[d]
}

// Any reports whether at least one weekday is flagged complete.
func (p Progress) Any() bool {
	for _, done := range p.Days {
		if done {
			return true
		}
	}
	return false
}

// Count returns the number of weekdays flagged complete.
func (p Progress) Count() int {
	n := 0
	for _, done := range p.Days {
		if done {
			n++
		}
	}
	return n
}

// WeeklyRecord is the per-subject, per-week container of discipline
// progress. At most one record exists per (SubjectID, WeekStart); the
// record store enforces that invariant.
type WeeklyRecord struct {
	ID                    string
	SubjectID             string
	WeekStart             time.Time // Monday at local midnight
	WeekEnd               time.Time // following Sunday 23:59:59.999 local
	Disciplines           []Progress
	Reflection            sql.NullString
	ReflectionSubmittedAt sql.NullTime
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewWeeklyRecord builds a fresh record with a zeroed Progress entry for
// every configured kind. Records are created lazily on first read or write
// for a given week.
func NewWeeklyRecord(subjectID string, weekStart, weekEnd time.Time, cfg Config) *WeeklyRecord {
	disciplines := make([]Progress, 0, len(cfg.Kinds))
	for _, k := range cfg.Kinds {
		disciplines = append(disciplines, Progress{Kind: k.Key})
	}
	return &WeeklyRecord{
		SubjectID:   subjectID,
		WeekStart:   weekStart,
		WeekEnd:     weekEnd,
		Disciplines: disciplines,
	}
}

// Progress returns the entry for the given kind key, if present.
func (r *WeeklyRecord) Progress(kind string) (Progress, bool) {
	for _, p := range r.Disciplines {
		if p.Kind == kind {
			return p, true
		}
	}
	return Progress{}, false
}

// MergeDisciplines folds a partial update set into an existing entry list
// by kind key: entries for known kinds are replaced in place, unknown kinds
// are appended. Kinds absent from the update set keep their previously set
// days, and no kind is ever duplicated. Both the postgres store and the
// test fakes apply saves through this single function so the merge
// semantics cannot drift.
func MergeDisciplines(existing, updates []Progress) []Progress {
	merged := make([]Progress, len(existing))
	copy(merged, existing)
	for _, u := range updates {
		replaced := false
		for i := range merged {
			if merged[i].Kind == u.Kind {
				merged[i].Days = u.Days
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, u)
		}
	}
	return merged
}
