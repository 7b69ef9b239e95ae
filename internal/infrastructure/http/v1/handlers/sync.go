package handlers

import (
	"github.com/gin-gonic/gin"

	"fieldstock/internal/sync"
)

// SyncHandler exposes the synchronization control surface.
type SyncHandler struct {
	*BaseHandler
	scheduler *sync.Scheduler
}

// NewSyncHandler creates a sync handler.
func NewSyncHandler(scheduler *sync.Scheduler) *SyncHandler {
	return &SyncHandler{
		BaseHandler: NewBaseHandler(),
		scheduler:   scheduler,
	}
}

// Start enables periodic synchronization.
// POST /api/v1/sync/start
func (h *SyncHandler) Start(c *gin.Context) {
	if err := h.scheduler.Start(); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "periodic synchronization started")
}

// Stop disables periodic synchronization.
// POST /api/v1/sync/stop
func (h *SyncHandler) Stop(c *gin.Context) {
	h.scheduler.Stop()
	h.Success(c, "periodic synchronization stopped")
}

// Status reports the scheduler state and last run outcome.
// GET /api/v1/sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	h.OK(c, h.scheduler.Status())
}

// Run triggers one synchronization cycle and returns its stats.
// POST /api/v1/sync/run
func (h *SyncHandler) Run(c *gin.Context) {
	stats, err := h.scheduler.RunNow(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stats)
}
