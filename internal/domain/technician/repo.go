package technician

import (
	"context"
)

// Repository defines the interface for Technician persistence.
type Repository interface {
	// GetByID retrieves a technician by primary key.
	GetByID(ctx context.Context, id int64) (*Technician, error)

	// FindByEmail retrieves a technician by exact email match.
	FindByEmail(ctx context.Context, email string) (*Technician, error)

	// FindByBadge retrieves a technician by exact badge match.
	FindByBadge(ctx context.Context, badge string) (*Technician, error)

	// BadgeExists reports whether any technician carries the badge.
	BadgeExists(ctx context.Context, badge string) (bool, error)

	// Create inserts a new technician and populates its ID.
	Create(ctx context.Context, t *Technician) error

	// Update refreshes the mutable fields of an existing technician.
	Update(ctx context.Context, t *Technician) error

	// List returns technicians, optionally restricted to active ones.
	List(ctx context.Context, activeOnly bool) ([]Technician, error)
}
