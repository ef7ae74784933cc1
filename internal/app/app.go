package app

import (
	"errors"
	"fmt"
	"time"

	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/handlers"
	"recipebox/internal/middleware"
	"recipebox/internal/repositories"
	"recipebox/internal/services"
	"recipebox/internal/session"
	"recipebox/pkg/rabbitmq"
	"recipebox/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the assembled web application and the resources it owns.
type App struct {
	Fiber       *fiber.App
	AuthService *services.AuthService
	DB          *gorm.DB

	log      *zap.Logger
	mqClient *rabbitmq.Client
	storage  fiber.Storage
}

// New connects every backing service named in cfg and wires the routes.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return NewWithDB(cfg, log, db)
}

// NewWithDB wires the application on top of an already migrated database.
func NewWithDB(cfg *config.Config, log *zap.Logger, db *gorm.DB) (*App, error) {
	a := &App{DB: db, log: log}

	// --- Optional backing services ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue}, log)
		if err != nil {
			log.Warn("recipe events disabled", zap.Error(err))
		} else {
			a.mqClient = mqClient
			publisher = mqClient
		}
	}

	if cfg.Session.Store == "redis" {
		storage, err := session.NewRedisStorage(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.storage = storage
	}

	// --- Services ---
	store := repositories.NewGORMStore(db)
	secret := cfg.Auth.SecretKey
	if secret == "" {
		secret = "development-only-secret"
	}
	authService := services.NewAuthService(store, services.NewBcryptHasher(cfg.Auth.BcryptCost), log, secret, cfg.Auth.TokenTTL)
	searchService := services.NewSearchService(store.Recipes())
	recipeService, err := services.NewRecipeService(store, publisher, log, cfg.App.OwnerCacheSize)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.AuthService = authService

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, log)
	recipeHandler := handlers.NewRecipeHandler(recipeService, searchService, log)
	recipeAPIHandler := handlers.NewRecipeAPIHandler(recipeService, searchService, log)

	app := fiber.New(fiber.Config{
		Views:        web.NewEngine(),
		UnescapePath: true,
		ErrorHandler: errorHandler(log),
	})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": a.mqClient != nil,
		})
	})

	// --- JSON API ---
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterAPIRoutes(apiV1)
	recipeAPIHandler.RegisterPublicRoutes(apiV1)
	// Group middleware applies to every route registered after it.
	protected := apiV1.Group("", middleware.AuthRequired(authService, log))
	recipeAPIHandler.RegisterProtectedRoutes(protected)

	// --- HTML pages ---
	sessions := session.NewStore(a.storage, cfg.Session.Expiration, !cfg.Log.Development)
	pages := app.Group("", middleware.LoadSession(sessions, authService))
	authHandler.RegisterRoutes(pages)
	recipeHandler.RegisterRoutes(pages)

	a.Fiber = app
	return a, nil
}

// StartEventConsumer logs every recipe event delivered to the queue. It is a
// no-op when RabbitMQ is not configured.
func (a *App) StartEventConsumer() error {
	if a.mqClient == nil {
		return nil
	}
	return a.mqClient.ConsumeRecipeEvents(func(msg amqp.Delivery) error {
		a.log.Info("recipe event received",
			zap.String("routing_key", msg.RoutingKey),
			zap.ByteString("body", msg.Body),
		)
		return nil
	})
}

// Close releases the broker connection, session storage and database pool.
func (a *App) Close() error {
	var errs []error
	if a.mqClient != nil {
		errs = append(errs, a.mqClient.Close())
	}
	if a.storage != nil {
		errs = append(errs, a.storage.Close())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

// errorHandler logs unexpected failures and answers with a generic message;
// fiber errors keep their status code.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return c.Status(code).SendString(fmt.Sprintf("%d %s", code, "Internal Server Error"))
		}
		return c.Status(code).SendString(err.Error())
	}
}
