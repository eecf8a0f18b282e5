package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/byoma-kusuma/sangha-management-backend/config"
	"github.com/byoma-kusuma/sangha-management-backend/database"
	"github.com/byoma-kusuma/sangha-management-backend/internal/auditlog"
	"github.com/byoma-kusuma/sangha-management-backend/internal/auth"
	"github.com/byoma-kusuma/sangha-management-backend/internal/category"
	"github.com/byoma-kusuma/sangha-management-backend/internal/empowerment"
	"github.com/byoma-kusuma/sangha-management-backend/internal/event"
	"github.com/byoma-kusuma/sangha-management-backend/internal/notification"
	"github.com/byoma-kusuma/sangha-management-backend/internal/person"
	"github.com/byoma-kusuma/sangha-management-backend/internal/reports"
	"github.com/byoma-kusuma/sangha-management-backend/middleware"
	"github.com/byoma-kusuma/sangha-management-backend/utils"

	_ "github.com/byoma-kusuma/sangha-management-backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Setup wires every module onto the router. All write routes require
// the staff or admin role; read routes accept any authenticated user.
func Setup(r *gin.Engine, cfg *config.Config) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter())

	// ========== Audit Log Module ==========
	auditRepo := auditlog.NewRepository(database.DB)
	auditSvc := auditlog.NewService(auditRepo)
	auditHandler := auditlog.NewHandler(auditSvc)

	// ========== Auth ==========
	authRepo := auth.NewRepository(database.DB)
	authSvc := auth.NewService(authRepo, cfg)
	authHandler := auth.NewHandler(authSvc)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg, authSvc))

	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/auth/register", middleware.RBACMiddleware(middleware.RoleAdmin), authHandler.Register)

	// ========== Audit Logs (admin) ==========
	auditRoutes := protected.Group("/auditlogs")
	auditRoutes.Use(middleware.RBACMiddleware(middleware.RoleAdmin))
	{
		auditRoutes.GET("", auditHandler.GetAuditLogs)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}

	// ========== Categories ==========
	categorySvc := category.NewService(category.NewRepository(database.DB))
	categoryHandler := category.NewHandler(categorySvc)
	{
		protected.GET("/event-categories", categoryHandler.ListCategories)
		protected.GET("/event-categories/:id", categoryHandler.GetCategoryByID)
	}

	// ========== Persons ==========
	personSvc := person.NewService(person.NewRepository(database.DB), auditSvc)
	personHandler := person.NewHandler(personSvc)

	personRoutes := protected.Group("/persons")
	{
		personRoutes.GET("", personHandler.ListPersons)
		personRoutes.GET("/:id", personHandler.GetPersonByID)

		writeRoutes := personRoutes.Group("")
		writeRoutes.Use(middleware.RequireWriteAccess())
		{
			writeRoutes.POST("", personHandler.CreatePerson)
			writeRoutes.PUT("/:id", personHandler.UpdatePerson)
			writeRoutes.DELETE("/:id", personHandler.DeletePerson)
		}
	}

	// ========== Empowerments & Gurus ==========
	empRepo := empowerment.NewRepository(database.DB)
	empHandler := empowerment.NewHandler(empRepo)
	{
		protected.GET("/empowerments", empHandler.ListEmpowerments)
		protected.GET("/gurus", empHandler.ListGurus)
		protected.GET("/persons/:id/empowerments", empHandler.ListPersonEmpowerments)
	}

	// ========== Events (the engine) ==========
	eventSvc := event.NewService(event.NewRepository(database.DB), categorySvc, personSvc, empRepo, auditSvc)
	eventHandler := event.NewHandler(eventSvc)

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.GET("", eventHandler.ListEvents)
		eventRoutes.GET("/stats", eventHandler.GetStats)
		eventRoutes.GET("/:id", eventHandler.GetEvent)
		eventRoutes.GET("/:id/attendees", eventHandler.ListAttendees)

		writeRoutes := eventRoutes.Group("")
		writeRoutes.Use(middleware.RequireWriteAccess())
		{
			writeRoutes.POST("", eventHandler.CreateEvent)
			writeRoutes.PUT("/:id", eventHandler.UpdateEvent)
			writeRoutes.DELETE("/:id", eventHandler.DeleteEvent)

			writeRoutes.POST("/:id/attendees", eventHandler.RegisterAttendee)
			writeRoutes.PUT("/:id/attendees/:attendeeId", eventHandler.UpdateAttendee)
			writeRoutes.DELETE("/:id/attendees/:attendeeId", eventHandler.RemoveAttendee)

			writeRoutes.PUT("/:id/attendees/:attendeeId/checkin/:dayId", eventHandler.SetCheckIn)
			writeRoutes.POST("/:id/close", eventHandler.CloseEvent)
		}
	}

	// ========== Reports ==========
	reportSvc := reports.NewReportService(reports.NewReportRepository(database.DB), reports.NewReportExporter(), auditSvc)
	reportHandler := reports.NewHandler(reportSvc)
	{
		eventRoutes.GET("/:id/report", reportHandler.GetAttendanceReport)
	}

	// ========== Notifications ==========
	notificationRepo := notification.NewRepository(database.DB)
	notificationSvc := notification.NewService(notificationRepo, authRepo, utils.NewMailer(cfg))
	notification.StartKafkaConsumer(notificationSvc)
	notificationHandler := notification.NewHandler(notificationSvc)

	notificationRoutes := protected.Group("/notifications")
	{
		notificationRoutes.GET("", notificationHandler.ListMyNotifications)
		notificationRoutes.PUT("/read-all", notificationHandler.MarkAllAsRead)
		notificationRoutes.PUT("/:id/read", notificationHandler.MarkAsRead)
		notificationRoutes.POST("/device-tokens", notificationHandler.RegisterDeviceToken)
		notificationRoutes.DELETE("/device-tokens/:token", notificationHandler.RemoveDeviceToken)
	}
}
