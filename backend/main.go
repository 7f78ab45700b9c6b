package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legalaware/backend/config"
	"legalaware/backend/routes"
	"legalaware/backend/services"
	"legalaware/backend/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatal("Error initializing database", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []services.Option{
		services.WithLocation(cfg.Location),
		services.WithRetention(cfg.ActivityRetentionDays),
		services.WithMetrics(services.NewMetrics(prometheus.DefaultRegisterer)),
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, leaderboard served from database", "addr", cfg.RedisAddr, "error", err)
		} else {
			opts = append(opts, services.WithBoard(services.NewRedisBoard(client)))
		}
	}

	if cfg.AMQPURL != "" {
		publisher, err := services.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("AMQP unavailable, progress events disabled", "error", err)
		} else {
			defer publisher.Close()
			opts = append(opts, services.WithPublisher(publisher))
		}
	}

	progress := services.NewProgressService(db, logger, opts...)
	if err := progress.SyncBoard(ctx); err != nil {
		logger.Warn("Leaderboard sync failed", "error", err)
	}
	go progress.RunJanitor(ctx, time.Hour)

	// Create Fiber app
	app := routes.NewApp(cfg, logger)

	// Setup routes
	routes.SetupRoutes(app, db, cfg, logger, progress, prometheus.DefaultGatherer)

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("Server shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("Server starting", "port", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Error("Server stopped", "error", err)
	}
}
