package main

import (
	"context"
	"errors"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/school-fees-api/internal/config"
	"github.com/noah-isme/school-fees-api/internal/database"
	"github.com/noah-isme/school-fees-api/internal/repository"
	"github.com/noah-isme/school-fees-api/internal/service"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL, false)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), nil, cfg.NotificationsChannel, nil, validate, logger)

	cli := &commandLine{
		auth:     service.NewAuthService(repository.NewUserRepository(db), service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL), validate, logger),
		fines:    service.NewLateFineService(repository.NewFeeRepository(db), repository.NewFineRepository(db), activity, notifications, cfg.LateFine, logger),
		out:      os.Stdout,
		adminEml: cfg.AdminEmail,
		adminPwd: cfg.AdminPassword,
	}

	if err := cli.run(context.Background(), os.Args); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(2)
		}
		logger.Fatal().Err(err).Msg("command failed")
	}
}
