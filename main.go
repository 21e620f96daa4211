package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opiquem/blog-app-be/internal/config"
	"github.com/opiquem/blog-app-be/internal/handlers"
	"github.com/opiquem/blog-app-be/internal/repositories"
	"github.com/opiquem/blog-app-be/internal/services"
	"github.com/opiquem/blog-app-be/pkg/cache"
	"github.com/opiquem/blog-app-be/pkg/rabbitmq"
)

// NewApp wires storage, services and routes. The returned cleanup closes every connection it opened.
func NewApp(cfg *config.Config) (*fiber.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Database ---
	db, err := repositories.OpenDatabase(cfg)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	// --- Optional Redis cache ---
	var tagCache *cache.Cache
	if cfg.RedisURL != "" {
		tagCache, err = cache.Connect(context.Background(), cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, func() { tagCache.Close() })
		log.Println("Redis cache connected")
	}

	// --- Optional RabbitMQ events ---
	var mqClient *rabbitmq.Client
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, func() {
			if err := mqClient.Close(); err != nil {
				log.Printf("Error closing RabbitMQ client: %v", err)
			}
		})
		events = mqClient

		if err := mqClient.ConsumeEvents(rabbitmq.LogEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	followRepo := repositories.NewGORMFollowRepository(db)
	articleRepo := repositories.NewGORMArticleRepository(db)
	commentRepo := repositories.NewGORMCommentRepository(db)
	tagRepo := repositories.NewGORMTagRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	tagService := services.NewTagService(tagRepo, tagCache)
	articleService := services.NewArticleService(articleRepo, userRepo, followRepo, tagService, events)
	profileService := services.NewProfileService(userRepo, followRepo, events)
	commentService := services.NewCommentService(commentRepo, articleRepo, userRepo, events)

	// --- Fiber app and middleware ---
	app := fiber.New(fiber.Config{AppName: "blog-app-be"})
	app.Use(recover.New())

	prom := fiberprometheus.NewWithRegistry(prometheus.NewRegistry(), "blog-app-be", "http", "", nil)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// --- API routes ---
	api := app.Group("/api")
	handlers.NewUserHandler(authService).RegisterRoutes(api)
	handlers.NewProfileHandler(profileService, authService).RegisterRoutes(api)
	handlers.NewArticleHandler(articleService, authService).RegisterRoutes(api)
	handlers.NewCommentHandler(commentService, authService).RegisterRoutes(api)
	handlers.NewTagHandler(tagService).RegisterRoutes(api)

	// --- Health check ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status, state, database := fiber.StatusOK, "healthy", "connected"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status, state, database = fiber.StatusServiceUnavailable, "degraded", "unreachable"
		}
		return c.Status(status).JSON(fiber.Map{
			"status":   state,
			"time":     time.Now().Format(time.RFC3339),
			"database": database,
			"rabbitmq": enabled(mqClient != nil),
			"redis":    enabled(tagCache != nil),
		})
	})

	return app, cleanup, nil
}

func enabled(on bool) string {
	if on {
		return "connected"
	}
	return "disabled"
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, cleanup, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()

	log.Printf("Starting server on port %s (%s)", cfg.AppPort, cfg.AppEnv)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
