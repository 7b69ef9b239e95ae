package holiday

import (
	"context"
	"time"
)

// Repository defines the interface for Holiday persistence.
type Repository interface {
	// List returns all holidays ordered by date.
	List(ctx context.Context) ([]Holiday, error)

	// Create inserts a holiday; the date is unique.
	Create(ctx context.Context, h *Holiday) error

	// DeleteByDay removes the holiday on the given date.
	DeleteByDay(ctx context.Context, day time.Time) error
}
