package handlers

import (
	"github.com/gin-gonic/gin"

	"fieldstock/internal/domain/technician"
)

// TechnicianHandler exposes the technician read surface.
type TechnicianHandler struct {
	*BaseHandler
	repo technician.Repository
}

// NewTechnicianHandler creates a technician handler.
func NewTechnicianHandler(repo technician.Repository) *TechnicianHandler {
	return &TechnicianHandler{
		BaseHandler: NewBaseHandler(),
		repo:        repo,
	}
}

// List returns technicians.
// GET /api/v1/technicians?active=true
func (h *TechnicianHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	technicians, err := h.repo.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, technicians)
}

// Get returns one technician.
// GET /api/v1/technicians/:id
func (h *TechnicianHandler) Get(c *gin.Context) {
	id, ok := h.ParseInt64Param(c, "id")
	if !ok {
		return
	}

	t, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}
