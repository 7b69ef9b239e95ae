package overtime

import (
	"context"
	"time"
)

// Repository defines the interface for overtime record persistence.
type Repository interface {
	// ExistsForPair reports whether a record already exists for the
	// (work order, technician) pair.
	ExistsForPair(ctx context.Context, orderID, technicianID int64) (bool, error)

	// Create inserts a record and populates its ID.
	Create(ctx context.Context, r *Record) error

	// DeleteByOrder removes every record belonging to the order.
	DeleteByOrder(ctx context.Context, orderID int64) error

	// ListByOrder returns the order's records.
	ListByOrder(ctx context.Context, orderID int64) ([]Record, error)

	// ListByPeriod returns records with work dates in [from, to],
	// optionally restricted to one technician.
	ListByPeriod(ctx context.Context, from, to time.Time, technicianID *int64) ([]Record, error)
}
