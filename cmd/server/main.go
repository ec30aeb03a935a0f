package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"careerpilot-utils/internal/api/routes"
	"careerpilot-utils/internal/config"
	"careerpilot-utils/internal/llm"
	"careerpilot-utils/internal/logging"
	"careerpilot-utils/internal/orchestrator"
	"careerpilot-utils/internal/ratelimit"
	"careerpilot-utils/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging before anything that logs
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting CareerPilot AI Utils")

	// Initialize LLM manager
	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(); err != nil {
		logger.Error("Failed to start LLM manager", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// Rate-limit counters live in Redis when it is reachable, otherwise
	// in process memory
	var store ratelimit.CounterStore
	redisClient := utils.NewRedisClient(cfg)
	if err := utils.PingRedis(context.Background(), redisClient, cfg.Redis.Timeout); err != nil {
		logger.Warn("Redis unavailable, using in-memory rate-limit counters", map[string]interface{}{
			"error": err.Error(),
		})
		redisClient = nil
		store = ratelimit.NewMemoryStore()
	} else {
		store = ratelimit.NewRedisStore(redisClient)
	}

	limiter := ratelimit.NewLimiter(store)
	defer limiter.Stop()

	orch := orchestrator.New(cfg, limiter, orchestrator.NewHeaderAuthenticator(cfg))

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Setup routes
	routes.SetupRoutes(e, cfg, orch, llmManager, redisClient)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		logger.Info("Stopping LLM manager...")
		if err := llmManager.Stop(); err != nil {
			logger.Error("Error stopping LLM manager", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Stopping HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed to start", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}
