package holiday

import (
	"context"
	"time"

	"fieldstock/internal/core/apperror"
	"fieldstock/internal/domain/workcal"
)

// Service provides calendar access for overtime computation.
type Service struct {
	repo Repository
}

// NewService creates a holiday service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Calendar loads the full holiday set as a workcal.Calendar.
// Loaded once per synchronization pass; a store failure here is fatal for
// the pass since no interval can be classified without it.
func (s *Service) Calendar(ctx context.Context) (workcal.Calendar, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return workcal.Calendar{}, err
	}
	dates := make([]time.Time, 0, len(rows))
	for _, h := range rows {
		dates = append(dates, h.Day)
	}
	return workcal.NewCalendar(dates), nil
}

// List returns all holidays.
func (s *Service) List(ctx context.Context) ([]Holiday, error) {
	return s.repo.List(ctx)
}

// Create inserts a holiday after basic validation.
func (s *Service) Create(ctx context.Context, h *Holiday) error {
	if h.Day.IsZero() {
		return apperror.NewValidation("holiday date is required")
	}
	if h.Label == "" {
		return apperror.NewValidation("holiday label is required")
	}
	return s.repo.Create(ctx, h)
}

// DeleteByDay removes the holiday on the given date.
func (s *Service) DeleteByDay(ctx context.Context, day time.Time) error {
	return s.repo.DeleteByDay(ctx, day)
}
