package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"careerpilot-utils/internal/api/handlers"
	"careerpilot-utils/internal/api/middleware"
	"careerpilot-utils/internal/config"
	"careerpilot-utils/internal/llm"
	"careerpilot-utils/internal/orchestrator"
	"careerpilot-utils/internal/ratelimit"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, orch *orchestrator.Orchestrator, llmManager *llm.Manager, redisClient *redis.Client) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	// AI-backed endpoints need headroom for the retry loop; plain routes
	// keep the server read timeout
	e.Use(middleware.TimeoutConfig(cfg.LLM.Timeout + 30*time.Second))

	rateCfg := ratelimit.Config{
		PerMinute: cfg.RateLimit.PerMinute,
		PerHour:   cfg.RateLimit.PerHour,
		Burst:     cfg.RateLimit.Burst,
	}

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(redisClient, llmManager))
		health.GET("/live", handlers.LivenessHandler)
	}

	// Status route
	e.GET("/status", handlers.StatusHandler(llmManager))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		resume := v1.Group("/resume")
		{
			resume.POST("/analyze", handlers.AnalyzeHandler(orch, llmManager, rateCfg))
			resume.POST("/suggestions", handlers.SuggestionsHandler(orch, llmManager, rateCfg))
		}
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "CareerPilot AI Utils",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
