// internal/domain/notification/notification.go
package notification

import (
	"database/sql"
	"time"
)

// Type distinguishes reminder-generated notifications from directly
// created ones.
type Type string

const (
	TypeTaskReminder Type = "TASK_REMINDER"
	TypeGeneral      Type = "GENERAL"
)

// Status is the read-state of a notification.
type Status string

const (
	StatusUnread    Status = "UNREAD"
	StatusRead      Status = "READ"
	StatusDismissed Status = "DISMISSED"
)

// ScheduleSlot names the fixed daily trigger time that produced a task
// reminder.
type ScheduleSlot string

const (
	SlotMorning ScheduleSlot = "MORNING"
	SlotMidday  ScheduleSlot = "MIDDAY"
	SlotEvening ScheduleSlot = "EVENING"
)

// WeekSentinel marks an unmet weekly-cadence kind in an incomplete-task
// snapshot, in place of individual weekday names.
const WeekSentinel = "week"

// IncompleteTask is one entry of the snapshot embedded in a task reminder:
// a discipline title plus the weekday names still missing, or the single
// WeekSentinel for an unmet weekly kind.
type IncompleteTask struct {
	Discipline  string   `json:"discipline"`
	MissingDays []string `json:"missingDays"`
}

// Notification is a persisted notice for one subject. The engine only
// creates and stores these records; delivery is someone else's problem.
type Notification struct {
	ID              string
	SubjectID       string
	Title           string
	Message         string
	Type            Type
	Status          Status
	ScheduleSlot    sql.NullString // set for task reminders, the producing slot
	IncompleteTasks []IncompleteTask
	ReadAt          sql.NullTime
	CreatedAt       time.Time
}
