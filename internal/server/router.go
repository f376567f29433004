package server

import (
	"context"
	"net/http"
	"time"

	"aeroops/internal/config"
	"aeroops/internal/database"
	"aeroops/internal/extract"
	"aeroops/internal/grid"
	"aeroops/internal/handlers"
	"aeroops/internal/middleware"
	"aeroops/internal/models"
	"aeroops/internal/onboarding"
	"aeroops/internal/reports"
	"aeroops/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func NewRouter(cfg *config.Config, log *zap.Logger) (*gin.Engine, error) {
	r := gin.Default()

	if len(cfg.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSOrigins
		corsCfg.AllowCredentials = true
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
		corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
		corsCfg.MaxAge = 12 * time.Hour
		r.Use(cors.New(corsCfg))
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("aeroops_session", store))
	r.Use(middleware.InjectUser())

	// collaborating services
	var objectStore storage.Store
	var err error
	if cfg.GCSBucket != "" {
		objectStore, err = storage.NewGCS(context.Background(), cfg.GCSBucket)
		if err != nil {
			return nil, err
		}
	} else {
		objectStore, err = storage.NewLocal(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
	}

	var extractor *extract.Client
	if cfg.ExtractBaseURL != "" {
		extractor = extract.New(cfg.ExtractBaseURL, cfg.ExtractAPIKey, log)
	} else {
		log.Warn("EXTRACT_API_URL not set, document extraction disabled")
	}

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	gridSvc := grid.NewService(database.DB, log)
	reportSvc := reports.NewService(database.DB, cache, log)
	onboardingSvc := onboarding.NewService(database.DB, cfg.InviteJWTSecret, log)

	gridHandler := handlers.NewGridHandler(gridSvc)
	documentHandler := handlers.NewDocumentHandler(objectStore, extractor, gridSvc, log)
	reportHandler := handlers.NewReportHandler(reportSvc, gridSvc)
	onboardingHandler := handlers.NewOnboardingHandler(onboardingSvc)

	// PUBLIC
	r.POST("/api/auth/login", handlers.Login)
	r.POST("/api/auth/logout", handlers.Logout)
	r.GET("/api/onboarding/:token", onboardingHandler.Resolve)
	r.POST("/api/onboarding/:token/accept", onboardingHandler.Accept)
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")
	api.Use(middleware.RequireAuth())

	api.GET("/auth/me", handlers.Me)

	manage := middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	fieldCrew := middleware.RequireRole(models.RoleAdmin, models.RoleCoordinator, models.RolePilot)

	// CLIENTS
	api.GET("/clients", handlers.ListClients)
	api.POST("/clients", manage, handlers.CreateClient)
	api.GET("/clients/:id", handlers.GetClient)
	api.PUT("/clients/:id", adminOnly, handlers.UpdateClient)

	// SITES
	api.GET("/sites", handlers.ListSites)
	api.POST("/sites", manage, handlers.CreateSite)
	api.GET("/sites/:id", handlers.GetSite)
	api.PUT("/sites/:id", manage, handlers.UpdateSite)

	// FLEET
	api.GET("/drones", handlers.ListDrones)
	api.POST("/drones", manage, handlers.CreateDrone)
	api.GET("/drones/:id", handlers.GetDrone)
	api.PUT("/drones/:id", manage, handlers.UpdateDrone)

	// PERSONNEL
	api.GET("/users", handlers.ListUsers)
	api.PUT("/users/:id", adminOnly, handlers.UpdateUser)
	api.POST("/invites", adminOnly, onboardingHandler.CreateInvite)

	// DEPLOYMENTS
	api.GET("/deployments", handlers.ListDeployments)
	api.POST("/deployments", manage, handlers.CreateDeployment)
	api.GET("/deployments/:id", handlers.GetDeployment)
	api.PUT("/deployments/:id", manage, handlers.UpdateDeployment)
	api.POST("/deployments/:id/status", fieldCrew, handlers.UpdateDeploymentStatus)

	// ASSET GRID
	api.GET("/sites/:id/grid", gridHandler.ListBySite)
	api.POST("/sites/:id/grid/import", manage, gridHandler.Import)
	api.GET("/grid/:id", gridHandler.Get)
	api.GET("/grid/:id/events", gridHandler.Events)
	api.PATCH("/grid/:id", fieldCrew, gridHandler.Patch)
	api.POST("/grid/:id/comments", fieldCrew, gridHandler.Comment)

	// DOCUMENTS
	api.POST("/deployments/:id/documents", fieldCrew, documentHandler.Upload)
	api.GET("/deployments/:id/documents", documentHandler.ListByDeployment)
	api.GET("/documents/:id", documentHandler.Get)
	api.GET("/documents/:id/download", documentHandler.Download)

	// INVOICING
	api.GET("/invoices", manage, handlers.ListInvoices)
	api.POST("/invoices", manage, handlers.CreateInvoice)
	api.GET("/invoices/:id", manage, handlers.GetInvoice)
	api.POST("/invoices/:id/send", manage, handlers.SendInvoice)
	api.POST("/invoices/:id/pay", manage, handlers.PayInvoice)

	// REPORTING
	api.GET("/sites/:id/dashboard", reportHandler.SiteDashboard)
	api.GET("/sites/:id/grid/export", reportHandler.ExportGrid)

	// AUDIT
	api.GET("/audit", middleware.RequireRole(models.RoleAdmin, models.RoleViewer), handlers.ListAuditLogs)

	return r, nil
}
