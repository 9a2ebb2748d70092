// internal/infra/httpapi/progress_handlers.go
package httpapi

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"discipline_tracker/internal/app"
)

func (s *Server) getCurrentWeek(c *fiber.Ctx) error {
	rec, err := s.progress.GetOrCreateCurrentWeek(c.UserContext(), subjectID(c))
	if err != nil {
		return s.handleError(c, err)
	}
	return jsonOK(c, toWeeklyRecordResponse(rec))
}

func (s *Server) saveProgress(c *fiber.Ctx) error {
	var body saveProgressRequest
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := s.validate.Struct(body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if len(body.Disciplines) == 0 && body.Reflection == nil {
		return jsonError(c, fiber.StatusBadRequest, "nothing to save")
	}

	var weekStartOverride *time.Time
	if body.WeekStart != nil {
		parsed, err := s.progress.ParseWeekDate(*body.WeekStart)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid weekStart date")
		}
		weekStartOverride = &parsed
	}

	updates := make([]app.DisciplineUpdate, 0, len(body.Disciplines))
	for _, d := range body.Disciplines {
		updates = append(updates, app.DisciplineUpdate{Kind: d.Kind, Days: d.Days})
	}

	rec, err := s.progress.SaveProgress(c.UserContext(), subjectID(c), weekStartOverride, updates, body.Reflection)
	if err != nil {
		return s.handleError(c, err)
	}
	return jsonOK(c, toWeeklyRecordResponse(rec))
}

func (s *Server) getDashboardStats(c *fiber.Ctx) error {
	stats, err := s.progress.GetDashboardStats(c.UserContext(), subjectID(c))
	if err != nil {
		return s.handleError(c, err)
	}
	return jsonOK(c, toDashboardStatsResponse(stats))
}

func (s *Server) getPreviousWeeks(c *fiber.Ctx) error {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	records, err := s.progress.GetPreviousWeeks(c.UserContext(), subjectID(c), limit)
	if err != nil {
		return s.handleError(c, err)
	}
	out := make([]weeklyRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toWeeklyRecordResponse(rec))
	}
	return jsonOK(c, out)
}

func (s *Server) getIncompleteTasks(c *fiber.Ctx) error {
	summary, err := s.reminders.IncompleteTasks(c.UserContext(), subjectID(c))
	if err != nil {
		return s.handleError(c, err)
	}
	return jsonOK(c, toIncompleteSummaryResponse(summary))
}
