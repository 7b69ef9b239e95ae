// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"fieldstock/internal/domain/holiday"
	"fieldstock/internal/domain/overtime"
	"fieldstock/internal/domain/technician"
	"fieldstock/internal/infrastructure/http/v1/handlers"
	"fieldstock/internal/infrastructure/http/v1/middleware"
	"fieldstock/internal/infrastructure/storage/postgres"
	"fieldstock/internal/sync"
	"fieldstock/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Pool *postgres.Pool

	Logger *logger.Logger

	Scheduler *sync.Scheduler

	OvertimeService *overtime.Service

	HolidayService *holiday.Service

	TechnicianRepo technician.Repository
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	syncHandler := handlers.NewSyncHandler(cfg.Scheduler)
	overtimeHandler := handlers.NewOvertimeHandler(cfg.OvertimeService)
	technicianHandler := handlers.NewTechnicianHandler(cfg.TechnicianRepo)
	holidayHandler := handlers.NewHolidayHandler(cfg.HolidayService)

	api := router.Group("/api/v1")
	{
		syncGroup := api.Group("/sync")
		{
			syncGroup.POST("/start", syncHandler.Start)
			syncGroup.POST("/stop", syncHandler.Stop)
			syncGroup.POST("/run", syncHandler.Run)
			syncGroup.GET("/status", syncHandler.Status)
		}

		overtimeGroup := api.Group("/overtime")
		{
			overtimeGroup.POST("/recompute/:orderID", overtimeHandler.Recompute)
			overtimeGroup.GET("/report", overtimeHandler.Report)
			overtimeGroup.GET("/records", overtimeHandler.Records)
		}

		api.GET("/technicians", technicianHandler.List)
		api.GET("/technicians/:id", technicianHandler.Get)

		holidayGroup := api.Group("/holidays")
		{
			holidayGroup.GET("", holidayHandler.List)
			holidayGroup.POST("", holidayHandler.Create)
			holidayGroup.DELETE("/:date", holidayHandler.Delete)
		}
	}

	return router
}
