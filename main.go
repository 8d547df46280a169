package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HSouheill/hireboard_notifications/config"
	"github.com/HSouheill/hireboard_notifications/controllers"
	"github.com/HSouheill/hireboard_notifications/middleware"
	"github.com/HSouheill/hireboard_notifications/repositories"
	"github.com/HSouheill/hireboard_notifications/routes"
	"github.com/HSouheill/hireboard_notifications/services"
	"github.com/HSouheill/hireboard_notifications/utils"
	"github.com/HSouheill/hireboard_notifications/websocket"
)

func main() {
	configFile := flag.String("config", "", "optional config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("invalid logger configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	validate := utils.NewValidator()

	// Stores: Mongo, or process memory in development without MONGO_URI.
	var (
		notificationStore repositories.NotificationStore
		tokenStore        repositories.TokenStore
		mongoClient       *mongo.Client
	)
	if cfg.MongoURI != "" {
		client, err := config.ConnectDB(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.WithError(err).Warn("mongodb disconnect failed")
			}
		}()
		db := client.Database(cfg.DBName)
		config.SetupCollections(ctx, db, log)
		notificationStore = repositories.NewMongoNotificationStore(db, validate)
		tokenStore = repositories.NewMongoTokenStore(db)
		mongoClient = client
	} else {
		log.Warn("MONGO_URI not set, using in-memory stores")
		notificationStore = repositories.NewMemoryNotificationStore(validate)
		tokenStore = repositories.NewMemoryTokenStore()
	}

	redisClient := config.ConnectRedis(ctx, cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Push
	policy, err := services.PolicyByName(cfg.TokenOwnershipPolicy, cfg.TokenActiveWindow)
	if err != nil {
		return err
	}
	registry := services.NewTokenRegistry(tokenStore, policy, log)

	var provider services.PushProvider
	app, err := config.NewFirebaseApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	if app != nil {
		fcm, err := services.NewFCMProvider(ctx, app, cfg.PushChannelID)
		if err != nil {
			return err
		}
		provider = fcm
	}
	dispatcher := services.NewPushDispatcher(registry, provider, cfg.PushTimeout, log)

	// In-app delivery
	hub := websocket.NewHub(log)
	go hub.Run(ctx)
	publisher := websocket.NewPublisher(hub, redisClient, cfg.RedisChannel, log)
	go publisher.Run(ctx)

	applicants := services.NewNotificationService(services.ApplicantAudience(), notificationStore, dispatcher, publisher, validate, log)
	recruiters := services.NewNotificationService(services.RecruiterAudience(), notificationStore, dispatcher, publisher, validate, log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = &utils.CustomValidator{Validator: validate}
	e.HTTPErrorHandler = controllers.HTTPErrorHandler(log)

	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS(cfg.CORSAllowedOrigins))
	e.Use(middleware.SecurityHeaders())
	e.Use(echoMiddleware.BodyLimit("64K"))
	if !cfg.IsDevelopment() {
		e.Use(httpsRedirect())
	}

	routes.SetupRoutes(e, routes.Dependencies{
		JWTSecret:      cfg.JWTSecret,
		InternalAPIKey: cfg.InternalAPIKey,
		Applicants:     applicants,
		Recruiters:     recruiters,
		Registry:       registry,
		Hub:            hub,
		RateLimiter:    middleware.NewRateLimiter(ctx),
		Paging:         controllers.Paging{DefaultPageSize: cfg.DefaultPageSize, MaxPageSize: cfg.MaxPageSize},
		Sync:           cfg.SyncSettings(),
		HealthChecks:   healthChecks(mongoClient, redisClient),
		Log:            log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func healthChecks(mongoClient *mongo.Client, redisClient *redis.Client) map[string]controllers.HealthCheck {
	checks := map[string]controllers.HealthCheck{"mongodb": nil, "redis": nil}
	if mongoClient != nil {
		checks["mongodb"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	return checks
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(http.StatusMovedPermanently, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
