// internal/infra/httpapi/admin_handlers.go
package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

func (s *Server) initializeScheduler(c *fiber.Ctx) error {
	if err := s.sched.Initialize(); err != nil {
		return s.handleError(c, err)
	}
	return jsonOK(c, fiber.Map{"status": "running"})
}

func (s *Server) stopScheduler(c *fiber.Ctx) error {
	s.sched.StopAll()
	return jsonOK(c, fiber.Map{"status": "stopped"})
}

func (s *Server) triggerJob(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := s.sched.TriggerJob(name); err != nil {
		return s.handleError(c, err)
	}
	return jsonOK(c, fiber.Map{"triggered": name})
}

func (s *Server) schedulerStatus(c *fiber.Ctx) error {
	return jsonOK(c, toJobStatusResponses(s.sched.Status()))
}
