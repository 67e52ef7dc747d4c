package main

import (
	"log"

	"github.com/Jvictorio09/fluentory-booking/config"
	"github.com/Jvictorio09/fluentory-booking/internal/handler"
	"github.com/Jvictorio09/fluentory-booking/internal/middleware"
	"github.com/Jvictorio09/fluentory-booking/internal/repository"
	"github.com/Jvictorio09/fluentory-booking/internal/service"
	"github.com/Jvictorio09/fluentory-booking/pkg/database"
	"github.com/Jvictorio09/fluentory-booking/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db := database.NewPostgresDB(cfg.DSN())

	var publisher service.EventPublisher
	if pub, err := rabbitmq.NewPublisher(cfg.RabbitURL); err != nil {
		// The engine runs without the broker; notifications are just lost.
		logger.Warn("rabbitmq unavailable, events disabled", zap.Error(err))
	} else {
		publisher = pub
		defer pub.Close()
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	// Repositories
	sessionRepo := repository.NewSessionRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	windowRepo := repository.NewAvailabilityRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	seriesRepo := repository.NewSeriesRepository(db)

	// Services
	policySvc := service.NewPolicyService(policyRepo)
	sessionSvc := service.NewSessionService(sessionRepo, bookingRepo, waitlistRepo, policySvc, publisher, logger)
	availabilitySvc := service.NewAvailabilityService(windowRepo, bookingRepo, logger)
	bookingSvc := service.NewBookingService(bookingRepo, sessionRepo, windowRepo, waitlistRepo, policySvc, publisher, logger)
	waitlistSvc := service.NewWaitlistService(waitlistRepo, sessionRepo, bookingRepo, policySvc, publisher, logger)
	seriesSvc := service.NewSeriesService(seriesRepo, sessionRepo, windowRepo, bookingSvc, publisher, cfg.SeriesHorizonCap, logger)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "booking-engine"})
	})

	api := e.Group("/api/v1")
	api.Use(middleware.RateLimit(rdb, cfg.RateLimitPerMin))

	handler.NewSessionHandler(sessionSvc).RegisterRoutes(api)
	handler.NewAvailabilityHandler(availabilitySvc).RegisterRoutes(api)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(api)
	handler.NewWaitlistHandler(waitlistSvc).RegisterRoutes(api)
	handler.NewPolicyHandler(policySvc).RegisterRoutes(api)
	handler.NewSeriesHandler(seriesSvc).RegisterRoutes(api)

	logger.Info("booking engine starting", zap.String("port", cfg.ServerPort))
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
