// Package server contains the HTTP handlers and wiring for the community API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"racommunity/internal/cache"
	"racommunity/internal/config"
	"racommunity/internal/database"
	"racommunity/internal/middleware"
	"racommunity/internal/models"
	"racommunity/internal/observability"
	"racommunity/internal/repository"
	"racommunity/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "racommunity-api"

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// httpMetrics returns the process-wide fiberprometheus instance. Its
// collectors live on the default registry and can only be registered once.
func httpMetrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// Server holds all dependencies and provides handlers
type Server struct {
	config *config.Config
	db     *gorm.DB
	redis  *redis.Client
	app    *fiber.App
	auth   *middleware.Authenticator
	posts  PostOperations
}

// NewServer connects to the database and Redis and builds a Server.
// Redis is optional; without it rate limiting is skipped.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient, err := cache.Connect(context.Background(), cfg.RedisURL)
	if err != nil {
		observability.Logger.Warn("Redis unavailable, continuing without rate limiting", slog.String("error", err.Error()))
		redisClient = nil
	}

	return NewServerWithDeps(cfg, db, redisClient), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	posts := service.NewPostService(repository.NewPostRepository(db), service.SettingsFromConfig(cfg))
	return &Server{
		config: cfg,
		db:     db,
		redis:  redisClient,
		auth:   middleware.NewAuthenticator(cfg.JWTSecret),
		posts:  posts,
	}
}

// errorHandler renders errors that escape handlers (unknown routes, panics,
// body limits) in the standard error shape.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		msg := fe.Message
		if fe.Code == fiber.StatusNotFound {
			msg = "API endpoint not found"
		}
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: msg})
	}
	return s.respondWithError(c, err)
}

// App builds the fiber application once with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      serviceName,
		ErrorHandler: s.errorHandler,
		BodyLimit:    10 * 1024 * 1024,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	app.Use(httpMetrics().Middleware)
	app.Use(helmet.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(middleware.StructuredLogger())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	httpMetrics().RegisterAt(app, "/metrics")

	api := app.Group("/api", middleware.RateLimit(s.redis, middleware.RateLimitConfig{
		Limit:    s.config.RateLimitMaxRequests,
		Window:   time.Duration(s.config.RateLimitWindowMS) * time.Millisecond,
		Policy:   middleware.FailOpen,
		Resource: "api",
		Disabled: s.redis == nil,
	}))
	api.Get("/status", s.StatusCheck)

	community := api.Group("/community")
	community.Get("/popular", s.GetPopularPosts)

	posts := community.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/search", s.SearchPosts)
	posts.Get("/:id", s.GetPost)
	posts.Post("/", s.auth.Required(), s.CreatePost)
	posts.Put("/:id", s.auth.Required(), s.UpdatePost)
	posts.Delete("/:id", s.auth.Required(), s.DeletePost)
}

// Start serves HTTP on the configured port until Shutdown is called.
func (s *Server) Start() error {
	addr := ":" + s.config.Port
	observability.Logger.Info("Starting server", slog.String("addr", addr), slog.String("env", s.config.Env))
	return s.App().Listen(addr)
}

// Shutdown stops the HTTP server and releases Redis and database handles.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database close: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}
