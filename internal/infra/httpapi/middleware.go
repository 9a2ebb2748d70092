// internal/infra/httpapi/middleware.go
package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"discipline_tracker/internal/domain/subject"
)

const (
	headerSubjectID   = "X-Subject-ID"
	headerSubjectRole = "X-Subject-Role"

	localsSubjectID   = "subjectID"
	localsSubjectRole = "subjectRole"
)

// identityRequired extracts the authenticated subject from the trusted
// identity headers. Credential verification happens upstream; the engine
// takes the identifier and role as given.
func (s *Server) identityRequired(c *fiber.Ctx) error {
	id := c.Get(headerSubjectID)
	if id == "" {
		return jsonError(c, fiber.StatusUnauthorized, "missing subject identity")
	}
	role := subject.Role(c.Get(headerSubjectRole))
	if role == "" {
		role = subject.RoleMember
	}
	c.Locals(localsSubjectID, id)
	c.Locals(localsSubjectRole, role)
	return c.Next()
}

func (s *Server) adminOnly(c *fiber.Ctx) error {
	if role, _ := c.Locals(localsSubjectRole).(subject.Role); role != subject.RoleAdmin {
		return jsonError(c, fiber.StatusForbidden, "admin role required")
	}
	return c.Next()
}

func subjectID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsSubjectID).(string)
	return id
}
