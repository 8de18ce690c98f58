package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/avhamm/vivalab-api/internal/config"
	"github.com/avhamm/vivalab-api/internal/database"
	"github.com/avhamm/vivalab-api/internal/handler"
	"github.com/avhamm/vivalab-api/internal/middleware"
	"github.com/avhamm/vivalab-api/internal/models"
	"github.com/avhamm/vivalab-api/internal/queue"
	"github.com/avhamm/vivalab-api/internal/repository"
	"github.com/avhamm/vivalab-api/internal/router"
	"github.com/avhamm/vivalab-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Lab{},
		&models.Structure{},
		&models.Attempt{},
		&models.StructureResponse{},
		&models.ResponseGradeHistory{},
		&models.SyncLogEntry{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, passback status cache disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var passbackQueue queue.PassbackQueue = queue.NoopQueue{}
	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, passback delivery disabled")
	} else {
		defer natsConn.Close()
		passbackQueue = queue.NewNATSQueue(natsConn, cfg.NATSSubject)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	attemptRepo := repository.NewAttemptRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	syncLogRepo := repository.NewSyncLogRepository(db)

	gradingService := service.NewGradingService(attemptRepo, passbackQueue, logger)
	overrideService := service.NewOverrideService(responseRepo, attemptRepo, validate, logger)
	passbackService := service.NewPassbackService(syncLogRepo, attemptRepo, redisClient, cfg.PassbackCacheTTL, validate, logger)

	gradingHandler := handler.NewGradingHandler(gradingService, overrideService, logger)
	passbackHandler := handler.NewPassbackHandler(passbackService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		GradingHandler:  gradingHandler,
		PassbackHandler: passbackHandler,
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
