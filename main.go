package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizhub/config"
	"quizhub/handlers"
	"quizhub/logging"
	"quizhub/middleware"
	"quizhub/repository"
	"quizhub/routes"
	"quizhub/services"
	"quizhub/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const serviceName = "quizhub"

func main() {
	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to build logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up tracing")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("failed to flush traces")
		}
	}()

	// Initialize database
	db, err := config.InitDB(cfg, logging.NewGormLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := config.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	store := repository.NewPostgresStore(db)

	// Token revocations live in Redis when configured
	var revocations services.RevocationStore = services.NewMemoryRevocations()
	if redisClient := config.InitRedis(cfg); redisClient != nil {
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		revocations = services.NewRedisRevocations(redisClient, cfg.TokenTTL())
	}

	tokens, err := services.NewTokenService(cfg.SecretKey, cfg.Algorithm, cfg.TokenTTL(), services.WithRevocations(revocations))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure tokens")
	}
	hasher := services.NewBcryptHasher(cfg.BcryptCost)

	// Initialize services
	authService := services.NewAuthService(store, hasher, tokens, logger)
	userService := services.NewUserService(store, hasher, tokens, logger)
	quizService := services.NewQuizService(store, logger)
	questionService := services.NewQuestionService(store, logger)
	answerService := services.NewAnswerService(store, logger)

	if cfg.BootstrapEnabled() {
		created, err := authService.EnsureSuperuser(ctx, cfg.FirstUser, cfg.FirstUserEmail, cfg.FirstUserPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create first superuser")
		}
		logger.Info().Str("username", cfg.FirstUser).Bool("created", created).Msg("first superuser ensured")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	quizHandler := handlers.NewQuizHandler(quizService)
	questionHandler := handlers.NewQuestionHandler(questionService)
	answerHandler := handlers.NewAnswerHandler(answerService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.Tracing(serviceName),
		middleware.RequestLogger(logger),
		middleware.CORS(),
	)

	routes.SetupRoutes(router, authService, authHandler, userHandler, quizHandler, questionHandler, answerHandler)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	// Start server
	logger.Info().Str("addr", server.Addr).Msg("server starting")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	logger.Info().Msg("server stopped")
}
