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
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iago-labs/iago-go-api/internal/config"
	"github.com/iago-labs/iago-go-api/internal/database"
	"github.com/iago-labs/iago-go-api/internal/handler"
	"github.com/iago-labs/iago-go-api/internal/middleware"
	"github.com/iago-labs/iago-go-api/internal/models"
	"github.com/iago-labs/iago-go-api/internal/repository"
	"github.com/iago-labs/iago-go-api/internal/router"
	"github.com/iago-labs/iago-go-api/internal/service"
	"github.com/iago-labs/iago-go-api/pkg/ai"
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

	if err := db.AutoMigrate(&models.User{}, &models.Feedback{}, &models.FeedbackAnswer{}, &models.AssistantMessage{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	assistantCfg, err := ai.LoadAssistantConfig(cfg.AssistantConfigPath)
	if err != nil {
		log.Fatalf("failed to load assistant configuration: %v", err)
	}

	generator, err := ai.NewGenerator(ai.ProviderConfig{
		APIKey:     cfg.AssistantAPIKey,
		Timeout:    cfg.AssistantTimeout,
		MaxRetries: cfg.AssistantRetries,
		Logger:     logger,
	}, assistantCfg)
	if err != nil {
		log.Fatalf("failed to create assistant generator: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	events := service.NewEventPublisher(natsConn, logger)

	reviewService := service.NewReviewService(feedbackRepo, redisClient, cfg.ScoresCacheTTL, logger)
	feedbackService := service.NewFeedbackService(feedbackRepo, userRepo, validate, reviewService, events, logger)
	narrativeService := service.NewNarrativeService(reviewService, userRepo, messageRepo, generator, events, logger)
	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	userService := service.NewUserService(userRepo, validate, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, logger)
	narrativeHandler := handler.NewNarrativeHandler(narrativeService, reviewService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.AllowOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      authHandler,
		UserHandler:      userHandler,
		FeedbackHandler:  feedbackHandler,
		NarrativeHandler: narrativeHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
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
