package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"fieldstock/internal/core/apperror"
	"fieldstock/internal/domain/holiday"
	"fieldstock/internal/infrastructure/http/v1/dto"
)

// HolidayHandler exposes the holiday calendar CRUD surface.
type HolidayHandler struct {
	*BaseHandler
	service *holiday.Service
}

// NewHolidayHandler creates a holiday handler.
func NewHolidayHandler(service *holiday.Service) *HolidayHandler {
	return &HolidayHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// List returns all holidays.
// GET /api/v1/holidays
func (h *HolidayHandler) List(c *gin.Context) {
	holidays, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, holidays)
}

// Create adds a holiday.
// POST /api/v1/holidays
func (h *HolidayHandler) Create(c *gin.Context) {
	var req dto.CreateHolidayRequest
	if !h.BindJSON(c, &req) {
		return
	}

	day, err := time.ParseInLocation(dateLayout, req.Day, time.Local)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid 'day' date").WithDetail("value", req.Day))
		return
	}

	hol := &holiday.Holiday{Day: day, Label: req.Label}
	if err := h.service.Create(c.Request.Context(), hol); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, hol.ID)
}

// Delete removes the holiday on one date.
// DELETE /api/v1/holidays/:date
func (h *HolidayHandler) Delete(c *gin.Context) {
	day, err := time.ParseInLocation(dateLayout, c.Param("date"), time.Local)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid 'date' path parameter").WithDetail("value", c.Param("date")))
		return
	}

	if err := h.service.DeleteByDay(c.Request.Context(), day); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
