package subject

import (
	"context"
)

// Repository defines the operations for retrieving Subject entities. The
// engine only reads the population; enrollment and role management belong
// to the identity layer.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Subject, error)
	// ListActive returns every active subject regardless of role; callers
	// that exclude roles (the reminder fan-out skips admins) filter the
	// result themselves.
	ListActive(ctx context.Context) ([]*Subject, error)
}
