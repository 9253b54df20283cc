package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/safecity/incident-api/internal/api/handler"
	"github.com/safecity/incident-api/internal/api/middleware"
	"github.com/safecity/incident-api/internal/core/domain"
	"github.com/safecity/incident-api/internal/core/service"
	mongodb "github.com/safecity/incident-api/internal/infrastructure/db/mongo"
	redisdb "github.com/safecity/incident-api/internal/infrastructure/db/redis"
	"github.com/safecity/incident-api/internal/pkg/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, issuer *token.Issuer, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("safecity"))

	// --- Dependencies ---
	reportRepo := mongodb.NewReportRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	statsCache := redisdb.NewStatsCache(rdb)

	reportService := service.NewReportService(reportRepo, log)
	rateLimitService := service.NewRateLimitService(reportRepo, log)
	authService := service.NewAuthService(userRepo, issuer, log)
	adminService := service.NewAdminService(reportRepo, userRepo, statsCache, log)

	reportHandler := handler.NewReportHandler(reportService, rateLimitService)
	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(adminService)

	requireAuth := middleware.Auth(issuer)
	optionalAuth := middleware.OptionalAuth(issuer)
	requireAdmin := middleware.RBAC(domain.RoleAdmin)

	// --- User routes ---
	users := e.Group("/api/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.GET("/me", authHandler.Me, requireAuth)

	// --- Report routes ---
	reports := e.Group("/api/reports")
	reports.POST("", reportHandler.Create, optionalAuth)
	reports.GET("/active", reportHandler.ListActive)
	reports.GET("/search", reportHandler.Search)
	reports.GET("/my/count", reportHandler.MyCount, requireAuth)
	reports.GET("/my/history", reportHandler.MyHistory, requireAuth)
	reports.GET("/:id", reportHandler.GetByID)
	reports.PUT("/:id", reportHandler.Update, requireAuth)
	reports.DELETE("/:id", reportHandler.Delete, requireAuth)

	// --- Admin routes ---
	admin := e.Group("/api/admin", requireAuth, requireAdmin)
	admin.DELETE("/reports/:id", adminHandler.DeleteReport)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/stats", adminHandler.Stats)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
