// internal/infra/httpapi/dto.go
package httpapi

import (
	"time"

	"discipline_tracker/internal/app"
	"discipline_tracker/internal/domain/discipline"
	"discipline_tracker/internal/domain/notification"
	"discipline_tracker/internal/domain/period"
	"discipline_tracker/internal/infra/scheduler"
)

const dateLayout = "2006-01-02"

type disciplineUpdateRequest struct {
	Kind string                   `json:"kind" validate:"required"`
	Days [period.DaysPerWeek]bool `json:"days"`
}

type saveProgressRequest struct {
	WeekStart   *string                   `json:"weekStart" validate:"omitempty,datetime=2006-01-02"`
	Disciplines []disciplineUpdateRequest `json:"disciplines" validate:"omitempty,dive"`
	Reflection  *string                   `json:"reflection"`
}

type createNotificationRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=2000"`
}

type progressResponse struct {
	Kind string                   `json:"kind"`
	Days [period.DaysPerWeek]bool `json:"days"`
}

type weeklyRecordResponse struct {
	ID                    string             `json:"id"`
	SubjectID             string             `json:"subjectId"`
	WeekStart             string             `json:"weekStart"`
	WeekEnd               string             `json:"weekEnd"`
	Disciplines           []progressResponse `json:"disciplines"`
	Reflection            *string            `json:"reflection,omitempty"`
	ReflectionSubmittedAt *time.Time         `json:"reflectionSubmittedAt,omitempty"`
	CreatedAt             time.Time          `json:"createdAt"`
	UpdatedAt             time.Time          `json:"updatedAt"`
}

func toWeeklyRecordResponse(rec *discipline.WeeklyRecord) weeklyRecordResponse {
	resp := weeklyRecordResponse{
		ID:        rec.ID,
		SubjectID: rec.SubjectID,
		WeekStart: rec.WeekStart.Format(dateLayout),
		WeekEnd:   rec.WeekEnd.Format(dateLayout),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	for _, p := range rec.Disciplines {
		resp.Disciplines = append(resp.Disciplines, progressResponse{Kind: p.Kind, Days: p.Days})
	}
	if rec.Reflection.Valid {
		resp.Reflection = &rec.Reflection.String
	}
	if rec.ReflectionSubmittedAt.Valid {
		resp.ReflectionSubmittedAt = &rec.ReflectionSubmittedAt.Time
	}
	return resp
}

type kindStatsResponse struct {
	Kind          string `json:"kind"`
	Title         string `json:"title"`
	Cadence       string `json:"cadence"`
	DaysCompleted int    `json:"daysCompleted"`
	RequiredDone  int    `json:"requiredDone"`
	RequiredMax   int    `json:"requiredMax"`
}

type dashboardStatsResponse struct {
	TasksCompleted    int                 `json:"tasksCompleted"`
	TotalTasks        int                 `json:"totalTasks"`
	RequiredCompleted int                 `json:"requiredCompleted"`
	TotalRequired     int                 `json:"totalRequired"`
	CompletionRate    int                 `json:"completionRate"`
	CurrentStreak     int                 `json:"currentStreak"`
	Breakdown         []kindStatsResponse `json:"perDisciplineBreakdown"`
}

func toDashboardStatsResponse(stats *app.DashboardStats) dashboardStatsResponse {
	resp := dashboardStatsResponse{
		TasksCompleted:    stats.TasksCompleted,
		TotalTasks:        stats.TotalTasks,
		RequiredCompleted: stats.RequiredCompleted,
		TotalRequired:     stats.TotalRequired,
		CompletionRate:    stats.CompletionRate,
		CurrentStreak:     stats.CurrentStreak,
	}
	for _, b := range stats.Breakdown {
		resp.Breakdown = append(resp.Breakdown, kindStatsResponse{
			Kind:          b.Kind,
			Title:         b.Title,
			Cadence:       string(b.Cadence),
			DaysCompleted: b.DaysCompleted,
			RequiredDone:  b.RequiredDone,
			RequiredMax:   b.RequiredMax,
		})
	}
	return resp
}

type incompleteTaskResponse struct {
	Discipline  string   `json:"discipline"`
	MissingDays []string `json:"missingDays"`
}

type incompleteSummaryResponse struct {
	HasIncomplete   bool                     `json:"hasIncomplete"`
	IncompleteTasks []incompleteTaskResponse `json:"incompleteTasks"`
	Message         string                   `json:"message"`
}

func toIncompleteSummaryResponse(sum *app.IncompleteSummary) incompleteSummaryResponse {
	resp := incompleteSummaryResponse{
		HasIncomplete:   sum.HasIncomplete,
		IncompleteTasks: make([]incompleteTaskResponse, 0, len(sum.IncompleteTasks)),
		Message:         sum.Message,
	}
	for _, t := range sum.IncompleteTasks {
		resp.IncompleteTasks = append(resp.IncompleteTasks, incompleteTaskResponse(t))
	}
	return resp
}

type notificationResponse struct {
	ID              string                   `json:"id"`
	SubjectID       string                   `json:"subjectId"`
	Title           string                   `json:"title"`
	Message         string                   `json:"message"`
	Type            string                   `json:"type"`
	Status          string                   `json:"status"`
	ScheduleSlot    *string                  `json:"scheduleSlot,omitempty"`
	IncompleteTasks []incompleteTaskResponse `json:"incompleteTasks,omitempty"`
	ReadAt          *time.Time               `json:"readAt,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
}

func toNotificationResponse(n *notification.Notification) notificationResponse {
	resp := notificationResponse{
		ID:        n.ID,
		SubjectID: n.SubjectID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Status:    string(n.Status),
		CreatedAt: n.CreatedAt,
	}
	if n.ScheduleSlot.Valid {
		resp.ScheduleSlot = &n.ScheduleSlot.String
	}
	if n.ReadAt.Valid {
		resp.ReadAt = &n.ReadAt.Time
	}
	for _, t := range n.IncompleteTasks {
		resp.IncompleteTasks = append(resp.IncompleteTasks, incompleteTaskResponse(t))
	}
	return resp
}

type jobStatusResponse struct {
	Name      string     `json:"name"`
	Running   bool       `json:"running"`
	LastRun   *time.Time `json:"lastRun,omitempty"`
	LastError string     `json:"lastError,omitempty"`
}

func toJobStatusResponses(statuses []scheduler.JobStatus) []jobStatusResponse {
	out := make([]jobStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		resp := jobStatusResponse{Name: st.Name, Running: st.Running, LastError: st.LastError}
		if !st.LastRun.IsZero() {
			lastRun := st.LastRun
			resp.LastRun = &lastRun
		}
		out = append(out, resp)
	}
	return out
}
