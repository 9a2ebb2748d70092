// internal/infra/httpapi/notification_handlers.go
package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

func (s *Server) listNotifications(c *fiber.Ctx) error {
	unreadOnly := c.QueryBool("unread", false)
	notifications, err := s.notifications.List(c.UserContext(), subjectID(c), unreadOnly)
	if err != nil {
		return s.handleError(c, err)
	}
	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, toNotificationResponse(n))
	}
	return jsonOK(c, out)
}

func (s *Server) unreadCount(c *fiber.Ctx) error {
	count, err := s.notifications.UnreadCount(c.UserContext(), subjectID(c))
	if err != nil {
		return s.handleError(c, err)
	}
	return jsonOK(c, fiber.Map{"unread": count})
}

func (s *Server) createNotification(c *fiber.Ctx) error {
	var body createNotificationRequest
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := s.validate.Struct(body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	n, err := s.notifications.CreateGeneral(c.UserContext(), subjectID(c), body.Title, body.Message)
	if err != nil {
		return s.handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": toNotificationResponse(n)})
}

func (s *Server) markNotificationRead(c *fiber.Ctx) error {
	n, err := s.notifications.MarkRead(c.UserContext(), subjectID(c), c.Params("id"))
	if err != nil {
		return s.handleError(c, err)
	}
	return jsonOK(c, toNotificationResponse(n))
}

func (s *Server) dismissNotification(c *fiber.Ctx) error {
	n, err := s.notifications.Dismiss(c.UserContext(), subjectID(c), c.Params("id"))
	if err != nil {
		return s.handleError(c, err)
	}
	return jsonOK(c, toNotificationResponse(n))
}

func (s *Server) deleteNotification(c *fiber.Ctx) error {
	if err := s.notifications.Delete(c.UserContext(), subjectID(c), c.Params("id")); err != nil {
		return s.handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
