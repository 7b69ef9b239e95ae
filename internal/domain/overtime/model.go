// Package overtime provides the computed hour-split records and the
// recompute/reporting operations built on top of them.
package overtime

import (
	"time"

	"fieldstock/internal/domain/workcal"
)

// Record is the computed hour split for one (work order, technician)
// pair. At most one record exists per pair; that uniqueness is the
// idempotence contract that prevents double-accounting across repeated
// synchronization passes. Records are immutable once written and only
// replaced wholesale by a deliberate recompute.
type Record struct {
	ID int64 `db:"id" json:"id"`

	WorkOrderID  int64 `db:"work_order_id" json:"workOrderId"`
	TechnicianID int64 `db:"technician_id" json:"technicianId"`

	// WorkDate is the calendar date of the interval's start.
	WorkDate time.Time `db:"work_date" json:"workDate"`

	// StartedAt/EndedAt are the interval bounds the split was computed
	// from.
	StartedAt time.Time `db:"started_at" json:"startedAt"`
	EndedAt   time.Time `db:"ended_at" json:"endedAt"`

	NormalHours       float64 `db:"normal_hours" json:"normalHours"`
	ExtraNormalHours  float64 `db:"extra_normal_hours" json:"extraNormalHours"`
	ExtraSpecialHours float64 `db:"extra_special_hours" json:"extraSpecialHours"`

	DayType workcal.DayType `db:"day_type" json:"dayType"`

	// AutoComputed marks records written by synchronization rather than
	// an explicit recompute request.
	AutoComputed bool `db:"auto_computed" json:"autoComputed"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewRecord builds a record from a computed breakdown.
func NewRecord(orderID, technicianID int64, start, end time.Time, b workcal.Breakdown, auto bool) *Record {
	return &Record{
		WorkOrderID:       orderID,
		TechnicianID:      technicianID,
		WorkDate:          time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()),
		StartedAt:         start,
		EndedAt:           end,
		NormalHours:       b.Normal,
		ExtraNormalHours:  b.ExtraNormal,
		ExtraSpecialHours: b.ExtraSpecial,
		DayType:           b.DayType,
		AutoComputed:      auto,
	}
}
