// Package server contains the HTTP handlers for the postboard API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	_ "postboard/docs" // swagger docs
	"postboard/internal/bootstrap"
	"postboard/internal/cache"
	"postboard/internal/config"
	"postboard/internal/featureflags"
	"postboard/internal/generator"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/profanity"
	"postboard/internal/repository"
	"postboard/internal/service"

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

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	filter         *profanity.Filter
	images         *service.ImageService

	postService       *service.PostService
	commentService    *service.CommentService
	engagementService *service.EngagementService
	reportService     *service.ReportService
	moderationService *service.ModerationService
	generationService *service.GenerationService
	adminAuthService  *service.AdminAuthService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{
		SeedDemo:  cfg.SeedDemo,
		DemoPosts: cfg.SeedDemoPosts,
	})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	filter, err := buildFilter(cfg)
	if err != nil {
		return nil, fmt.Errorf("profanity filter: %w", err)
	}

	var gen generator.Generator
	if cfg.AIEnabled {
		gemini, err := generator.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("text generator: %w", err)
		}
		gen = gemini
	}

	tuning := service.TuningFromConfig(cfg)

	// Initialize repositories
	postRepo := repository.NewPostRepository(db, tuning.LockTimeout)
	commentRepo := repository.NewCommentRepository(db, tuning.LockTimeout)
	engagementRepo := repository.NewEngagementRepository(db, tuning.LockTimeout)
	reportRepo := repository.NewReportRepository(db, tuning.LockTimeout)
	blocklistRepo := repository.NewBlocklistRepository(db)

	// Initialize Prometheus metrics
	prom := middleware.InitMetrics("postboard-api")

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		featureFlags:   featureflags.NewManagerWithDefaults(cfg.FeatureFlags, featureflags.Defaults),
		filter:         filter,
		images:         service.NewImageService(cfg),
	}

	s.postService = service.NewPostService(postRepo, filter, s.images, tuning)
	s.commentService = service.NewCommentService(commentRepo, filter)
	s.engagementService = service.NewEngagementService(engagementRepo)
	s.reportService = service.NewReportService(reportRepo,
		cache.NewReportCooldown(redisClient, tuning.ReportCooldown), s.featureFlags, tuning)
	s.moderationService = service.NewModerationService(postRepo, reportRepo, blocklistRepo)
	s.generationService = service.NewGenerationService(gen, filter, s.featureFlags)
	s.adminAuthService = service.NewAdminAuthService(cfg.AdminPasswordHash, cfg.AdminJWTSecret)

	return s, nil
}

// WithGenerator swaps the text generator, e.g. for a stub in tests.
func (s *Server) WithGenerator(gen generator.Generator) *Server {
	s.generationService = service.NewGenerationService(gen, s.filter, s.featureFlags)
	return s
}

func buildFilter(cfg *config.Config) (*profanity.Filter, error) {
	sets, err := profanity.LoadRuleSets(cfg.ProfanityRulesFile)
	if err != nil {
		return nil, err
	}
	return profanity.NewFilter(sets, splitList(cfg.ProfanityRuleSets)...)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NewApp builds the Fiber app with the error handler and proxy settings.
func (s *Server) NewApp() *fiber.App {
	fcfg := fiber.Config{
		AppName:   "Postboard API",
		BodyLimit: int(s.config.ImageMaxUploadBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
				code := models.CodeValidation
				if fe.Code == fiber.StatusNotFound {
					code = models.CodeNotFound
				}
				return c.Status(fe.Code).JSON(models.ErrorResponse{
					Status: "error",
					Code:   code,
					Reason: fe.Message,
				})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	}
	if proxies := splitList(s.config.TrustedProxies); len(proxies) > 0 {
		fcfg.EnableTrustedProxyCheck = true
		fcfg.TrustedProxies = proxies
		fcfg.ProxyHeader = s.config.ProxyHeader
		if fcfg.ProxyHeader == "" {
			fcfg.ProxyHeader = fiber.HeaderXForwardedFor
		}
	}
	app := fiber.New(fcfg)
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Normalized requester identity, used by logging, limits, bans and engagement
	app.Use(middleware.Visitor())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID, visitor and trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers; uploaded images are embedded cross-origin by the frontend.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per visitor)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return middleware.VisitorFrom(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Status: "error",
				Code:   "RATE_LIMITED",
				Reason: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static("/uploads", s.images.UploadDir(), fiber.Static{
		MaxAge: 3600,
	})

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Postboard Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Admin routes are registered before the public gate so a banned
	// address can still be managed by an operator.
	admin := api.Group("/admin")
	admin.Post("/login", middleware.RateLimit(s.redis, middleware.Limit{
		Name: "admin_login", Max: 10, Window: 5 * time.Minute,
	}), s.AdminLogin)
	secured := admin.Group("", middleware.AdminRequired(s.config.AdminJWTSecret))
	secured.Get("/stats", s.AdminStats)
	secured.Get("/reports", s.AdminReports)
	secured.Get("/posts", s.AdminPosts)
	secured.Get("/banned", s.AdminBanned)
	secured.Get("/flagged", s.AdminFlagged)
	secured.Get("/feature-flags", s.GetFeatureFlags)
	secured.Post("/ban", s.AdminBan)
	secured.Post("/unblock", s.AdminUnblock)
	secured.Post("/moderate", s.AdminModerate)

	public := api.Group("", middleware.BanGate(s.moderationService))

	posts := public.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", middleware.RateLimit(s.redis, middleware.Limit{
		Name: "create_post", Max: 5, Window: 5 * time.Minute,
	}), s.CreatePost)
	// Define specific routes BEFORE the generic /:id route
	posts.Get("/trending", s.GetTrending)
	posts.Post("/like", s.LikePost)
	posts.Post("/view", s.ViewPost)
	posts.Get("/:id", s.GetPost)

	comments := public.Group("/comments")
	comments.Get("/", s.GetComments)
	comments.Post("/", middleware.RateLimit(s.redis, middleware.Limit{
		Name: "create_comment", Max: 10, Window: time.Minute,
	}), s.CreateComment)

	public.Post("/report", middleware.RateLimit(s.redis, middleware.Limit{
		Name: "report", Max: 20, Window: time.Hour,
	}), s.FileReport)

	public.Post("/generate", middleware.RateLimit(s.redis, middleware.Limit{
		Name: "generate", Max: 10, Window: time.Minute,
	}), s.GeneratePost)
	public.Post("/check", middleware.RateLimit(s.redis, middleware.Limit{
		Name: "check", Max: 30, Window: time.Minute,
	}), s.CheckContent)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: when
// it is not configured the service runs on store-only fallbacks.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus == "unhealthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	log.Printf("Server starting on port %s...", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
