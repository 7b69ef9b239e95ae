package workorder

import (
	"context"
	"time"
)

// Repository defines the interface for WorkOrder persistence.
type Repository interface {
	// GetByID retrieves a work order by primary key.
	GetByID(ctx context.Context, id int64) (*WorkOrder, error)

	// FindByExternalID retrieves a work order by its feed identifier.
	FindByExternalID(ctx context.Context, externalID string) (*WorkOrder, error)

	// Create inserts a new work order and populates its ID.
	Create(ctx context.Context, w *WorkOrder) error

	// Update rewrites the mutable columns of an existing order.
	Update(ctx context.Context, w *WorkOrder) error

	// UpdateInterval persists a changed work interval.
	UpdateInterval(ctx context.Context, id int64, startedAt, endedAt time.Time) error

	// EnsureAssignments attaches technicians to the order, keeping any
	// existing assignments.
	EnsureAssignments(ctx context.Context, orderID int64, technicianIDs []int64) error

	// ReplaceAssignments rewrites the order's technician set.
	ReplaceAssignments(ctx context.Context, orderID int64, technicianIDs []int64) error

	// AssignedTechnicianIDs lists technicians attached to the order.
	AssignedTechnicianIDs(ctx context.Context, orderID int64) ([]int64, error)
}
