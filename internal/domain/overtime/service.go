package overtime

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fieldstock/internal/core/apperror"
	"fieldstock/internal/core/tx"
	"fieldstock/internal/domain/holiday"
	"fieldstock/internal/domain/technician"
	"fieldstock/internal/domain/workcal"
	"fieldstock/internal/domain/workorder"
	"fieldstock/pkg/logger"
)

// Service provides recompute and reporting on overtime records.
type Service struct {
	records     Repository
	orders      workorder.Repository
	technicians technician.Repository
	holidays    *holiday.Service
	txManager   tx.Manager
	log         *logger.Logger
}

// NewService creates an overtime service.
func NewService(
	records Repository,
	orders workorder.Repository,
	technicians technician.Repository,
	holidays *holiday.Service,
	txManager tx.Manager,
	log *logger.Logger,
) *Service {
	return &Service{
		records:     records,
		orders:      orders,
		technicians: technicians,
		holidays:    holidays,
		txManager:   txManager,
		log:         log.WithComponent("overtime"),
	}
}

// RecomputeOrder deletes and recreates the overtime records of one work
// order for every currently attached technician, in a single transaction.
// This is the explicit recompute trigger; synchronization uses the same
// delete-then-recreate shape when an order's interval changes.
func (s *Service) RecomputeOrder(ctx context.Context, orderID int64) ([]Record, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.HasInterval() {
		return nil, apperror.NewMissingInterval(orderID)
	}

	cal, err := s.holidays.Calendar(ctx)
	if err != nil {
		return nil, err
	}

	techIDs, err := s.orders.AssignedTechnicianIDs(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(techIDs) == 0 {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"work order has no assigned technicians").WithDetail("work_order_id", orderID)
	}

	breakdown := workcal.Compute(*order.StartedAt, *order.EndedAt, cal)

	var out []Record
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.records.DeleteByOrder(ctx, orderID); err != nil {
			return err
		}
		for _, techID := range techIDs {
			// Recompute is deliberate, so the records are not marked
			// auto-computed.
			rec := NewRecord(orderID, techID, *order.StartedAt, *order.EndedAt, breakdown, false)
			if err := s.records.Create(ctx, rec); err != nil {
				return err
			}
			out = append(out, *rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Infow("overtime recomputed",
		"work_order_id", orderID,
		"technicians", len(techIDs),
		"day_type", breakdown.DayType,
	)
	return out, nil
}

// TechnicianSummary aggregates one technician's hours over a period.
// Totals are decimal to keep repeated additions exact.
type TechnicianSummary struct {
	TechnicianID      int64           `json:"technicianId"`
	FirstName         string          `json:"firstName"`
	LastName          string          `json:"lastName"`
	TotalNormal       decimal.Decimal `json:"totalNormalHours"`
	TotalExtraNormal  decimal.Decimal `json:"totalExtraNormalHours"`
	TotalExtraSpecial decimal.Decimal `json:"totalExtraSpecialHours"`
	TotalWorked       decimal.Decimal `json:"totalWorkedHours"`
	Orders            int             `json:"orders"`
}

// Report is the period report grouped by technician.
type Report struct {
	From        time.Time           `json:"from"`
	To          time.Time           `json:"to"`
	Technicians []TechnicianSummary `json:"technicians"`
}

// BuildReport aggregates overtime records over [from, to], optionally for
// a single technician.
func (s *Service) BuildReport(ctx context.Context, from, to time.Time, technicianID *int64) (*Report, error) {
	if to.Before(from) {
		return nil, apperror.NewValidation("period end precedes period start")
	}

	records, err := s.records.ListByPeriod(ctx, from, to, technicianID)
	if err != nil {
		return nil, err
	}

	type acc struct {
		summary TechnicianSummary
		orders  map[int64]struct{}
	}
	byTech := make(map[int64]*acc)

	for _, rec := range records {
		a, ok := byTech[rec.TechnicianID]
		if !ok {
			a = &acc{
				summary: TechnicianSummary{TechnicianID: rec.TechnicianID},
				orders:  make(map[int64]struct{}),
			}
			byTech[rec.TechnicianID] = a
		}

		normal := decimal.NewFromFloat(rec.NormalHours)
		extra := decimal.NewFromFloat(rec.ExtraNormalHours)
		special := decimal.NewFromFloat(rec.ExtraSpecialHours)

		a.summary.TotalNormal = a.summary.TotalNormal.Add(normal)
		a.summary.TotalExtraNormal = a.summary.TotalExtraNormal.Add(extra)
		a.summary.TotalExtraSpecial = a.summary.TotalExtraSpecial.Add(special)
		a.summary.TotalWorked = a.summary.TotalWorked.Add(normal).Add(extra).Add(special)
		a.orders[rec.WorkOrderID] = struct{}{}
	}

	report := &Report{From: from, To: to}
	for _, a := range byTech {
		if tech, err := s.technicians.GetByID(ctx, a.summary.TechnicianID); err == nil {
			a.summary.FirstName = tech.FirstName
			a.summary.LastName = tech.LastName
		}
		a.summary.Orders = len(a.orders)
		report.Technicians = append(report.Technicians, a.summary)
	}

	sort.Slice(report.Technicians, func(i, j int) bool {
		return report.Technicians[i].TechnicianID < report.Technicians[j].TechnicianID
	})
	return report, nil
}

// ListPeriod returns the raw records of a period, newest first.
func (s *Service) ListPeriod(ctx context.Context, from, to time.Time, technicianID *int64) ([]Record, error) {
	if to.Before(from) {
		return nil, apperror.NewValidation("period end precedes period start")
	}
	return s.records.ListByPeriod(ctx, from, to, technicianID)
}
