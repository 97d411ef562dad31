package api

import (
	"context"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/identitydesk/identity-api/internal/api/handler"
	"github.com/identitydesk/identity-api/internal/api/middleware"
	"github.com/identitydesk/identity-api/internal/core/service"
	mongodb "github.com/identitydesk/identity-api/internal/infrastructure/db/mongo"
	redisdb "github.com/identitydesk/identity-api/internal/infrastructure/db/redis"
	"github.com/identitydesk/identity-api/internal/infrastructure/queue"
	"github.com/identitydesk/identity-api/internal/infrastructure/security"
)

// NewRouter builds the Echo instance with all dependencies wired and routes
// registered. The audit dispatcher workers run until ctx is cancelled.
func NewRouter(ctx context.Context, db *mongo.Database, rdb *redis.Client, jwtSecret string, bcryptCost int, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	dispatcher := queue.NewAuditDispatcher(0, auditRepo, log)
	dispatcher.Start(ctx)

	hasher := security.NewBcryptHasher(bcryptCost)
	cache := redisdb.NewProfileCache(rdb, log)

	userService := service.NewUserService(userRepo, hasher, cache, dispatcher, log)
	authService := service.NewAuthService(userRepo, hasher, jwtSecret, 24*time.Hour)

	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(authService)

	// --- Public routes ---
	e.POST("/auth/login", authHandler.Login)

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Authenticated routes ---
	// Role enforcement happens in the core policy engine, not here: the
	// middleware only rejects unauthenticated callers and builds the caller
	// context.
	v1 := e.Group("/v1", middleware.Auth(jwtSecret))

	v1.POST("/users", userHandler.Create)
	v1.GET("/users", userHandler.List)
	v1.POST("/users/search", userHandler.Search)
	v1.GET("/users/username/:username", userHandler.GetByUsername)
	v1.GET("/users/:id", userHandler.GetByID)
	v1.PATCH("/users/:id", userHandler.UpdateProfile)
	v1.PATCH("/users/:id/password", userHandler.UpdateCredential)
	v1.PATCH("/users/:id/role", userHandler.UpdateRole)
	v1.DELETE("/users/:id", userHandler.Delete)

	v1.GET("/me", userHandler.Me)
	v1.PATCH("/me", userHandler.UpdateOwnProfile)
	v1.PATCH("/me/password", userHandler.UpdateOwnCredential)

	return e
}
