package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"fieldstock/internal/core/apperror"
	"fieldstock/internal/domain/overtime"
	"fieldstock/internal/infrastructure/http/v1/dto"
)

const dateLayout = "2006-01-02"

// OvertimeHandler exposes overtime recomputation and reporting.
type OvertimeHandler struct {
	*BaseHandler
	service *overtime.Service
}

// NewOvertimeHandler creates an overtime handler.
func NewOvertimeHandler(service *overtime.Service) *OvertimeHandler {
	return &OvertimeHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Recompute rebuilds the overtime records of one work order.
// POST /api/v1/overtime/recompute/:orderID
func (h *OvertimeHandler) Recompute(c *gin.Context) {
	orderID, ok := h.ParseInt64Param(c, "orderID")
	if !ok {
		return
	}

	records, err := h.service.RecomputeOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, records)
}

// Report aggregates hours per technician over a period.
// GET /api/v1/overtime/report?from=2025-05-01&to=2025-05-31&technicianId=3
func (h *OvertimeHandler) Report(c *gin.Context) {
	q, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	report, err := h.service.BuildReport(c.Request.Context(), q.from, q.to, q.technicianID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// Records lists raw overtime records over a period.
// GET /api/v1/overtime/records?from=2025-05-01&to=2025-05-31
func (h *OvertimeHandler) Records(c *gin.Context) {
	q, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	records, err := h.service.ListPeriod(c.Request.Context(), q.from, q.to, q.technicianID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, records)
}

type periodQuery struct {
	from         time.Time
	to           time.Time
	technicianID *int64
}

func (h *OvertimeHandler) bindPeriod(c *gin.Context) (periodQuery, bool) {
	var req dto.ReportQuery
	if !h.BindQuery(c, &req) {
		return periodQuery{}, false
	}

	from, err := time.ParseInLocation(dateLayout, req.From, time.Local)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid 'from' date").WithDetail("value", req.From))
		return periodQuery{}, false
	}
	to, err := time.ParseInLocation(dateLayout, req.To, time.Local)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid 'to' date").WithDetail("value", req.To))
		return periodQuery{}, false
	}

	return periodQuery{from: from, to: to, technicianID: req.TechnicianID}, true
}
