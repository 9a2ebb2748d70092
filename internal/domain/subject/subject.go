package subject

import (
	"database/sql"
	"time"
)

// Role classifies a subject for authorization and reminder eligibility.
// The identity layer is an external collaborator; the engine trusts the
// role it is handed.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleLeader Role = "LEADER"
	RoleAdmin  Role = "ADMIN"
)

// Subject is one individual tracked by the system.
type Subject struct {
	ID        string
	FirstName string
	LastName  sql.NullString // optional
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
