package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/school-fees-api/internal/config"
	"github.com/noah-isme/school-fees-api/internal/database"
	"github.com/noah-isme/school-fees-api/internal/handler"
	"github.com/noah-isme/school-fees-api/internal/middleware"
	"github.com/noah-isme/school-fees-api/internal/repository"
	"github.com/noah-isme/school-fees-api/internal/router"
	"github.com/noah-isme/school-fees-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL, cfg.AppEnv != "production")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(rootCtx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classTeacherRepo := repository.NewClassTeacherRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	fineRepo := repository.NewFineRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.NotificationsChannel, natsConn, validate, logger)
	lateFineService := service.NewLateFineService(feeRepo, fineRepo, activityService, notificationService, cfg.LateFine, logger)
	authService := service.NewAuthService(userRepo, tokens, validate, logger)
	studentService := service.NewStudentService(studentRepo, userRepo, classTeacherRepo, validate, logger)
	classTeacherService := service.NewClassTeacherService(classTeacherRepo, userRepo, validate, logger)
	feeService := service.NewFeeService(feeRepo, studentRepo, lateFineService, activityService, validate, logger, service.FeeServiceConfig{
		SweepOnRead: cfg.SweepOnRead,
	})
	fineService := service.NewFineService(fineRepo, studentRepo, activityService, validate, logger)

	if _, created, err := authService.EnsureAdmin(rootCtx, cfg.AdminEmail, cfg.AdminPassword, false); err != nil {
		logger.Error().Err(err).Msg("failed to ensure admin account")
	} else if created {
		logger.Info().Str("email", cfg.AdminEmail).Msg("default admin account created")
	}

	notificationService.Start(rootCtx)
	service.NewSweepScheduler(lateFineService, redisClient, cfg.SweepInterval, cfg.SweepLockTTL, logger).Start(rootCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:    &logger,
		AccessLog: cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		StudentHandler:      handler.NewStudentHandler(studentService, logger),
		ClassTeacherHandler: handler.NewClassTeacherHandler(classTeacherService, logger),
		FeeHandler:          handler.NewFeeHandler(feeService, studentService, logger),
		FineHandler:         handler.NewFineHandler(fineService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, 30*time.Second),
		ActivityHandler:     handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		LoginLimiter:        middleware.RateLimit("auth_login", 10, time.Minute),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(rootCtx, app, logger)
}

func waitForShutdown(ctx context.Context, app *fiber.App, logger zerolog.Logger) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
