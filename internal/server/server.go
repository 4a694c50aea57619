// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "navega/docs" // swagger docs
	"navega/internal/config"
	"navega/internal/database"
	"navega/internal/featureflags"
	"navega/internal/middleware"
	"navega/internal/models"
	"navega/internal/notifications"
	"navega/internal/observability"
	"navega/internal/repository"
	"navega/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultOrigins = "http://localhost:4200,https://navegasinahogarte.com,https://nsadev.navegasinahogarte.com"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	tracerShutdown func(context.Context) error
	userRepo       repository.UserRepository
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager
	tokens         *service.TokenService
	authService    *service.AuthService
	contentService *service.ContentService
	resultService  *service.ResultService
	reportService  *service.ReportService
	userService    *service.UserService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	resultRepo := repository.NewResultRepository(db)
	reportRepo := repository.NewReportRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("navega-api"),
		userRepo:       userRepo,
		hub:            notifications.NewHub(middleware.Logger),
		featureFlags:   featureflags.NewManagerWithDefaults(cfg.FeatureFlags, featureflags.Defaults(cfg.IsProduction())),
		tokens:         service.NewTokenService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret),
	}

	s.authService = service.NewAuthService(userRepo, s.tokens)
	s.contentService = service.NewContentService(postRepo, commentRepo, repository.NewUnitOfWork(db), s.isAdminByUserID, s.hub)
	s.resultService = service.NewResultService(resultRepo, s.isAdminByUserID)
	s.reportService = service.NewReportService(reportRepo, resultRepo)
	s.userService = service.NewUserService(userRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Server span per request; must run before ContextMiddleware picks up the trace id.
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so browser clients still receive CORS
	// headers on 429 responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Demasiadas solicitudes, inténtalo de nuevo más tarde.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", s.Welcome)

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	if s.featureFlags.Enabled(featureflags.APIDocs, 0) {
		api.Get("/swagger/*", swagger.HandlerDefault)
	}

	authRequired := middleware.AuthRequired(s.tokens)
	optionalAuth := middleware.OptionalAuth(s.tokens, s.userRepo.Exists)
	adminRequired := s.AdminRequired()

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", middleware.RateLimit(
		s.redis, 20, 5*time.Minute, "refresh"), s.Refresh)

	// Forum routes accept both registered and anonymous callers.
	posts := api.Group("/posts", optionalAuth)
	posts.Get("/", s.GetPosts)
	posts.Post("/", middleware.RateLimit(
		s.redis, 5, time.Minute, "create_post"), s.CreatePost)
	// Define specific /:postId/:resource routes BEFORE generic /:postId route
	posts.Post("/:postId/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Post("/:postId/comments/:commentId/identify", s.ToggleCommentIdentify)
	posts.Delete("/:postId/comments/:commentId", s.DeleteComment)
	posts.Post("/:postId/identify", s.TogglePostIdentify)
	posts.Delete("/:postId", s.DeletePost)

	// Quiz results
	results := api.Group("/results")
	results.Post("/", optionalAuth, middleware.RateLimit(
		s.redis, 20, time.Minute, "results"), s.SubmitResult)
	results.Get("/user/:userId/latest", authRequired, s.GetLatestResult)

	// Reporting (admin only)
	api.Get("/dashboard/stats", authRequired, adminRequired, s.GetDashboardStats)
	analytics := api.Group("/analytics", authRequired, adminRequired)
	analytics.Get("/results", s.GetAnalyticsResults)
	analytics.Get("/summary", s.GetAnalyticsSummary)

	// User administration
	users := api.Group("/users", authRequired, adminRequired)
	users.Get("/", s.ListUsers)
	users.Post("/", s.CreateUser)
	users.Put("/:id", s.UpdateUser)
	users.Delete("/:id", s.DeleteUser)

	// Credential probes
	data := api.Group("/data", authRequired)
	data.Get("/profile", s.GetProfile)
	data.Get("/admin-dashboard", adminRequired, s.GetAdminDashboard)

	// Real-time forum events
	api.Get("/ws", optionalAuth, s.WebSocketUpgrade, s.WebSocketHandler())

	// Operations
	admin := api.Group("/admin", authRequired, adminRequired)
	admin.Get("/feature-flags", s.GetFeatureFlags)
	api.Get("/metrics/dashboard", authRequired, adminRequired, monitor.New(monitor.Config{
		Title: "Navega sin ahogarte API Metrics",
	}))
}

// Welcome handles GET /
func (s *Server) Welcome(c *fiber.Ctx) error {
	return c.SendString("API Navega sin ahogarte funcionando")
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck reports whether the database answers. Redis is reported but
// does not affect readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	checks := fiber.Map{}
	healthy := true

	if err := database.Ping(ctx, s.db); err != nil {
		checks["database"] = "down"
		healthy = false
	} else {
		checks["database"] = "up"
	}

	switch {
	case s.redis == nil:
		checks["redis"] = "disabled"
	case s.redis.Ping(ctx).Err() != nil:
		checks["redis"] = "down"
	default:
		checks["redis"] = "up"
	}

	status := "up"
	code := fiber.StatusOK
	if !healthy {
		status = "down"
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":      status,
		"checks":      checks,
		"connections": s.hub.ActiveConnections(),
	})
}

// AdminRequired rejects principals whose current role is not administrator.
// It must run after AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := middleware.PrincipalFrom(c)
		if principal == nil {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Se requiere un token para la autenticación."))
		}
		admin, err := s.isAdminByUserID(c.UserContext(), principal.UserID)
		if err != nil {
			return respondAppError(c, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Acceso denegado. Se requiere rol de administrador."))
		}
		return c.Next()
	}
}

// isAdminByUserID reads the current role, so a demoted administrator loses
// access before their token expires. Deleted accounts are not administrators.
func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	role, err := s.userRepo.GetRole(ctx, userID)
	if models.IsCode(err, models.CodeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return role == models.RoleAdministrator, nil
}

// App builds the Fiber application with middleware and routes. It is what
// Start listens on and what handler tests drive through app.Test.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName: "Navega sin ahogarte API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message, Message: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err.Error())
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// Start starts the server
func (s *Server) Start() error {
	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "navega-api",
		Environment:  s.config.Env,
		Enabled:      s.config.TracingEnabled,
		Exporter:     s.config.TracingExporter,
		OTLPEndpoint: s.config.TracingOTLPEndpoint,
		SamplerRatio: s.config.TracingSamplerRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	s.tracerShutdown = shutdown

	app := s.App()
	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Send close frames to every viewer
	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s hub: %v", s.hub.Name(), err)
		}
	}

	if s.tracerShutdown != nil {
		if err := s.tracerShutdown(ctx); err != nil {
			log.Printf("error flushing tracer: %v", err)
		}
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				log.Printf("error closing sql DB: %v", cerr)
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
