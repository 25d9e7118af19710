package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"diary-backend/internal/infrastructure/database"
	"diary-backend/internal/infrastructure/telemetry"
	"diary-backend/internal/shared/middleware"
	"diary-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.CORSOrigins),
	)
	if c.Config.Telemetry.MetricsEnabled {
		router.Use(middleware.Metrics())
		router.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))
	}
	if c.Config.Telemetry.TracingEnabled {
		router.Use(otelgin.Middleware(c.Config.Telemetry.ServiceName))
	}

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c.DB, c.Cache, c.PoolStats, c.Config.App.Version))

		setupAuthRoutes(api, c)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(c.JWTManager, c.UserService))
		{
			c.UserHandler.RegisterRoutes(protected)
			c.DiaryHandler.RegisterRoutes(protected)
			c.ExploreHandler.RegisterRoutes(protected)
		}
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(api *gin.RouterGroup, c *container.Container) {
	limiter := middleware.NewIPRateLimiter(c.Config.RateLimit.RequestsPerSecond, c.Config.RateLimit.Burst)

	public := api.Group("")
	public.Use(limiter.Middleware())
	c.UserHandler.RegisterPublicRoutes(public)
}

// ========================================
// HEALTH CHECK
// ========================================

type pinger interface {
	Ping(ctx context.Context) error
}

// healthCheckHandler reports 503 when the database is down. A failing cache
// only degrades the status.
func healthCheckHandler(db pinger, cache pinger, stats func() *database.PoolStats, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		dbStatus := "ok"
		if db == nil {
			dbStatus = "disconnected"
		} else if err := db.Ping(ctx); err != nil {
			dbStatus = "error: " + err.Error()
		}
		if dbStatus != "ok" {
			status = "degraded"
		}

		cacheStatus := "ok"
		if cache == nil {
			cacheStatus = "disconnected"
		} else if err := cache.Ping(ctx); err != nil {
			cacheStatus = "error: " + err.Error()
		}
		if cacheStatus != "ok" {
			status = "degraded"
		}

		if s := stats(); s != nil {
			telemetry.DBPoolConns.WithLabelValues("acquired").Set(float64(s.AcquiredConns))
			telemetry.DBPoolConns.WithLabelValues("idle").Set(float64(s.IdleConns))
			telemetry.DBPoolConns.WithLabelValues("total").Set(float64(s.TotalConns))
		}

		code := http.StatusOK
		if dbStatus != "ok" {
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   version,
			"services": gin.H{
				"database": dbStatus,
				"cache":    cacheStatus,
			},
		})
	}
}

