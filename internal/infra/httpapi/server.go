// internal/infra/httpapi/server.go
package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"discipline_tracker/internal/app"
	idb "discipline_tracker/internal/infra/database"
	"discipline_tracker/internal/infra/scheduler"
)

// Server is the thin HTTP surface over the engine. It does routing,
// identity extraction and shape validation only; all semantics live in the
// app services.
type Server struct {
	app           *fiber.App
	progress      *app.ProgressService
	reminders     *app.ReminderService
	notifications *app.NotificationService
	sched         *scheduler.Scheduler
	log           *logrus.Logger
	validate      *validator.Validate
}

func NewServer(
	progress *app.ProgressService,
	reminders *app.ReminderService,
	notifications *app.NotificationService,
	sched *scheduler.Scheduler,
	log *logrus.Logger,
) *Server {
	s := &Server{
		progress:      progress,
		reminders:     reminders,
		notifications: notifications,
		sched:         sched,
		log:           log,
		validate:      validator.New(),
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "discipline-tracker",
		DisableStartupMessage: true,
	})
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api/v1", s.identityRequired)

	api.Get("/progress/current", s.getCurrentWeek)
	api.Post("/progress", s.saveProgress)
	api.Get("/progress/stats", s.getDashboardStats)
	api.Get("/progress/weeks", s.getPreviousWeeks)
	api.Get("/tasks/incomplete", s.getIncompleteTasks)

	api.Get("/notifications", s.listNotifications)
	api.Get("/notifications/unread-count", s.unreadCount)
	api.Post("/notifications", s.createNotification)
	api.Post("/notifications/:id/read", s.markNotificationRead)
	api.Post("/notifications/:id/dismiss", s.dismissNotification)
	api.Delete("/notifications/:id", s.deleteNotification)

	admin := api.Group("/admin", s.adminOnly)
	admin.Post("/scheduler/initialize", s.initializeScheduler)
	admin.Post("/scheduler/stop", s.stopScheduler)
	admin.Post("/scheduler/jobs/:name/trigger", s.triggerJob)
	admin.Get("/scheduler/status", s.schedulerStatus)
}

// Listen blocks serving HTTP on addr.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleError translates engine errors into HTTP outcomes: not-found and
// conflict sentinels map to 404/409, schedule errors to 400-class
// responses, everything else to an opaque 500 with no partial state.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, idb.ErrRecordNotFound),
		errors.Is(err, idb.ErrNotificationNotFound),
		errors.Is(err, idb.ErrSubjectNotFound):
		return jsonError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, idb.ErrDuplicateRecord):
		return jsonError(c, fiber.StatusConflict, "record for this week already exists")
	case errors.Is(err, scheduler.ErrUnknownJob):
		return jsonError(c, fiber.StatusNotFound, "unknown job")
	case errors.Is(err, scheduler.ErrInvalidTimeOfDay):
		return jsonError(c, fiber.StatusBadRequest, "invalid schedule")
	case errors.Is(err, scheduler.ErrNotRunning):
		return jsonError(c, fiber.StatusConflict, "scheduler is not running")
	default:
		s.log.Errorf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		return jsonError(c, fiber.StatusInternalServerError, "internal error")
	}
}

func jsonOK(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
