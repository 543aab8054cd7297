package app

import (
	"context"
	"go-auth-api/config"
	"go-auth-api/db"
	"go-auth-api/handler"
	"go-auth-api/logger"
	"go-auth-api/mailer"
	"go-auth-api/repository"
	"go-auth-api/router"
	"go-auth-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations("file://db/migrations"); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redisClient.Close()

	// --- Wiring All Layers Together ---
	var notifier service.Notifier
	switch config.AppConfig.Mail.Mode {
	case "smtp":
		notifier = mailer.NewSMTP()
	case "queue":
		queue, err := mailer.NewQueue(config.AppConfig.Mail.RabbitMQ.URL, config.AppConfig.Mail.RabbitMQ.QueueName)
		if err != nil {
			logger.Log.Fatalf("Error connecting to RabbitMQ: %v", err)
		}
		defer queue.Close()
		notifier = queue
	default:
		notifier = mailer.Disabled{}
	}

	userRepo := repository.NewUserRepository(database)
	tokenService := service.NewTokenService()
	tokenStore := service.NewTokenStore(redisClient)
	authService := service.NewAuthService(userRepo, tokenService, tokenStore)
	resetService := service.NewPasswordResetService(userRepo, tokenStore, notifier)
	authHandler := handler.NewAuthHandler(authService, resetService)

	r := router.NewRouter(authHandler, authService)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
