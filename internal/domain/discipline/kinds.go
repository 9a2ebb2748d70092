// internal/domain/discipline/kinds.go
package discipline

import "discipline_tracker/internal/domain/period"

// Cadence classifies how often a discipline kind is required.
type Cadence string

const (
	// CadenceDaily kinds are required on all seven weekdays and contribute
	// up to 7 to the required-completion denominator.
	CadenceDaily Cadence = "DAILY"
	// CadenceWeekly kinds are required on at least one weekday and
	// contribute at most 1 to the denominator no matter how many days are
	// marked.
	CadenceWeekly Cadence = "WEEKLY"
)

// Kind is one tracked discipline category. The set of kinds is
// configuration-level and static; records never define their own.
type Kind struct {
	Key     string
	Title   string
	Cadence Cadence
}

// Config is the static discipline-kind configuration shared by the record
// store, the analytics engine and the reminder generator.
type Config struct {
	Kinds []Kind
}

// DefaultConfig is the reference configuration: two daily kinds and two
// weekly kinds, for a required-completion denominator of 16.
func DefaultConfig() Config {
	return Config{Kinds: []Kind{
		{Key: "prayer", Title: "Prayer", Cadence: CadenceDaily},
		{Key: "bible_study", Title: "Bible Study", Cadence: CadenceDaily},
		{Key: "fasting", Title: "Fasting", Cadence: CadenceWeekly},
		{Key: "evangelism", Title: "Evangelism", Cadence: CadenceWeekly},
	}}
}

// Denominator is the fixed required-completion denominator:
// 7 per daily kind plus 1 per weekly kind.
func (c Config) Denominator() int {
	total := 0
	for _, k := range c.Kinds {
		switch k.Cadence {
		case CadenceDaily:
			total += period.DaysPerWeek
		case CadenceWeekly:
			total++
		}
	}
	return total
}

// TotalTasks is the raw checkbox capacity of one week: seven slots per
// configured kind regardless of cadence. Used for the "tasks completed / N"
// display metric, which is distinct from the requirement-weighted rate.
func (c Config) TotalTasks() int {
	return len(c.Kinds) * period.DaysPerWeek
}

// Kind looks a kind up by key.
func (c Config) Kind(key string) (Kind, bool) {
	for _, k := range c.Kinds {
		if k.Key == key {
			return k, true
		}
	}
	return Kind{}, false
}
