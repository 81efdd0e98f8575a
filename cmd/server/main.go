package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"visa_crm_go/config"
	"visa_crm_go/db"
	"visa_crm_go/handlers"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"
	"visa_crm_go/services/i18n"
	"visa_crm_go/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: cfg.Environment,
	}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := i18n.Load(); err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}

	services.InitializeStorage(cfg)
	handlers.InitializeAI(cfg)

	if err := services.InitializeEvents(cfg.AMQPURL); err != nil {
		log.Printf("[WARNING] Event broker unavailable, events will only be logged: %v", err)
	}
	defer services.Events.Close()

	scheduler, err := jobs.StartScheduler(db.DB, cfg)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.Metrics())

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})
	e.Use(middleware.Locale(cfg))

	registerRoutes(e)

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	<-scheduler.Stop().Done()
	middleware.LoginRateLimiter.Stop()
	middleware.AIRateLimiter.Stop()
	middleware.PublicFormRateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

func registerRoutes(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public routes (no authentication required)
	e.POST("/login", handlers.LoginPostHandler, middleware.LoginRateLimiter.Middleware())

	intake := e.Group("/intake", middleware.PublicFormRateLimiter.Middleware())
	{
		intake.GET("/:token", handlers.PublicIntakeHandler)
		intake.POST("/:token", handlers.PublicIntakeSubmitHandler)
	}

	// Authenticated routes. Locale runs again so the user's saved language applies.
	authed := e.Group("")
	authed.Use(middleware.RequireAuth())
	authed.Use(middleware.Locale(nil))
	authed.Use(middleware.LoadPermissions())
	authed.Use(middleware.AuditContext())
	{
		authed.POST("/logout", handlers.LogoutHandler)
		authed.GET("/api/me", handlers.MeHandler)
		authed.GET("/api/me/permissions", handlers.MyPermissionsHandler)
		authed.GET("/api/navigation", handlers.NavigationHandler)
		authed.GET("/partials/sidebar", handlers.SidebarPartialHandler)
		authed.GET("/api/dashboard", handlers.DashboardHandler)
		authed.GET("/api/dashboard/layout", handlers.GetDashboardLayoutHandler)
		authed.PUT("/api/dashboard/layout", handlers.SaveDashboardLayoutHandler)
		authed.POST("/api/dashboard/layout/widgets", handlers.AddDashboardWidgetHandler)
		authed.DELETE("/api/dashboard/layout/widgets/:id", handlers.RemoveDashboardWidgetHandler)
	}

	// Super-admin console
	admin := authed.Group("/api/admin", middleware.RequireAuthRole(models.AuthRoleSuperAdmin))
	{
		admin.GET("/accounts", handlers.ListAccountsHandler)
		admin.POST("/accounts", handlers.CreateAccountHandler)
		admin.PUT("/accounts/:id", handlers.UpdateAccountHandler)
	}

	// Workspace routes
	api := authed.Group("/api", middleware.RequireWorkspace(), middleware.RequireActiveAccount())

	view := middleware.RequirePermission(models.CapViewData)
	edit := middleware.RequirePermission(models.CapEditData)
	deleteExport := middleware.RequirePermission(models.CapDeleteExport)

	leads := api.Group("/leads")
	{
		leads.GET("", handlers.ListLeadsHandler, view)
		leads.POST("", handlers.CreateLeadHandler, edit)
		leads.POST("/import", handlers.ImportLeadsHandler, edit)
		leads.GET("/import/template", handlers.LeadImportTemplateHandler, edit)
		leads.GET("/export", handlers.ExportLeadsHandler, deleteExport)
		leads.GET("/report.pdf", handlers.LeadPipelineReportHandler, view)
		leads.GET("/:id", handlers.GetLeadHandler, view)
		leads.PUT("/:id", handlers.UpdateLeadHandler, edit)
		leads.DELETE("/:id", handlers.DeleteLeadHandler, deleteExport)
		leads.PUT("/:id/status", handlers.UpdateLeadStatusHandler, edit)
		leads.PUT("/:id/intake", handlers.UpdateLeadIntakeHandler, edit)
		leads.POST("/:id/convert", handlers.ConvertLeadHandler, edit)
		leads.POST("/:id/activity", handlers.AddLeadActivityHandler, edit)
	}

	clients := api.Group("/clients")
	{
		clients.GET("", handlers.ListClientsHandler, view)
		clients.POST("", handlers.CreateClientHandler, edit)
		clients.GET("/:id", handlers.GetClientHandler, view)
		clients.PUT("/:id", handlers.UpdateClientHandler, edit)
		clients.PUT("/:id/status", handlers.UpdateClientStatusHandler, edit)
		clients.PUT("/:id/summary", handlers.UpdateCaseSummaryHandler, edit)
		clients.POST("/:id/activity", handlers.AddClientActivityHandler, edit)

		clients.GET("/:id/documents", handlers.ListDocumentsHandler, view)
		clients.POST("/:id/documents", handlers.RequestDocumentHandler, edit)
		clients.POST("/:id/documents/:docId/file", handlers.UploadDocumentHandler, edit)
		clients.PUT("/:id/documents/:docId/status", handlers.UpdateDocumentStatusHandler, edit)
		clients.GET("/:id/documents/:docId/download", handlers.DownloadDocumentHandler, view)
		clients.POST("/:id/documents/:docId/summarize", handlers.SummarizeDocumentHandler, edit, middleware.AIRateLimiter.Middleware())
		clients.DELETE("/:id/documents/:docId", handlers.DeleteDocumentHandler, deleteExport)

		clients.GET("/:id/agreements", handlers.ListAgreementsHandler, view)
		clients.POST("/:id/agreements", handlers.CreateAgreementHandler, edit)
		clients.GET("/:id/agreements/:aid", handlers.GetAgreementHandler, view)
		clients.PUT("/:id/agreements/:aid", handlers.UpdateAgreementHandler, edit)
		clients.PUT("/:id/agreements/:aid/status", handlers.UpdateAgreementStatusHandler, edit)
		clients.GET("/:id/agreements/:aid/pdf", handlers.AgreementPDFHandler, view)

		clients.POST("/:id/intake-link", handlers.CreateIntakeLinkHandler, edit)
		clients.GET("/:id/intake", handlers.GetClientIntakeHandler, view)
		clients.PUT("/:id/intake", handlers.UpdateClientIntakeHandler, edit)
		clients.POST("/:id/intake/analyze", handlers.AnalyzeClientIntakeHandler, edit, middleware.AIRateLimiter.Middleware())
	}

	parties := api.Group("/parties", view)
	{
		parties.GET("/:type/:id", handlers.GetPartyHandler)
		parties.GET("/:type/:id/timeline", handlers.GetPartyTimelineHandler)
	}

	tasks := api.Group("/tasks")
	{
		tasks.GET("", handlers.ListTasksHandler, view)
		tasks.POST("", handlers.CreateTaskHandler, edit)
		tasks.PUT("/:id", handlers.UpdateTaskHandler, edit)
		tasks.PUT("/:id/status", handlers.UpdateTaskStatusHandler, edit)
		tasks.DELETE("/:id", handlers.DeleteTaskHandler, deleteExport)
	}

	team := api.Group("/team")
	{
		team.GET("", handlers.ListTeamHandler, middleware.RequireCapability(models.CapViewManageTeam))
		team.POST("", handlers.CreateTeamMemberHandler, middleware.RequirePermission(models.CapViewManageTeam))
		team.PUT("/:id", handlers.UpdateTeamMemberHandler, middleware.RequirePermission(models.CapViewManageTeam))
		team.DELETE("/:id", handlers.RemoveTeamMemberHandler, middleware.RequirePermission(models.CapViewManageTeam))
	}

	settings := api.Group("/settings", middleware.RequirePermission(models.CapHighLevelSettings))
	{
		settings.GET("/permissions", handlers.GetPermissionSettingsHandler)
		settings.PUT("/permissions", handlers.UpdatePermissionSettingsHandler)
		settings.DELETE("/permissions", handlers.ResetPermissionSettingsHandler)
		settings.GET("/audit-log", handlers.AuditLogHandler)
	}

	api.POST("/ai/:flow", handlers.RunAIFlowHandler, edit, middleware.AIRateLimiter.Middleware())

	notifications := api.Group("/notifications")
	{
		notifications.GET("", handlers.ListNotificationsHandler)
		notifications.POST("/read-all", handlers.MarkAllNotificationsReadHandler)
		notifications.POST("/:id/read", handlers.MarkNotificationReadHandler)
	}
}
