package http

import (
	"time"

	"lookup_bot/internal/config"
	"lookup_bot/internal/http/handlers"
	"lookup_bot/internal/http/middleware"
	"lookup_bot/internal/ledger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, l *ledger.Ledger, store handlers.Pinger, cfg *config.Config, version string) {
	h := handlers.NewHandler(l, store, cfg.AdminAPIKey)
	healthHandler := handlers.NewHealthHandler(store, version)

	// Health checks and metrics (no rate limiting)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth gets a tighter window than the rest of the API
	authRateLimit := 5
	authRateWindow := time.Minute

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	v1.POST("/auth", middleware.RedisRateLimit(authRateLimit, authRateWindow), h.Auth)

	admin := v1.Group("/admin")
	admin.Use(middleware.AdminJWT())
	{
		admin.GET("/stats", h.Stats)
		admin.GET("/users/:id", h.User)
		admin.POST("/users/:id/credits", h.AddCredits)
		admin.POST("/users/:id/ban", h.Ban)
		admin.DELETE("/users/:id/ban", h.Unban)
		admin.POST("/users/:id/grant", h.Grant)
		admin.DELETE("/users/:id/grant", h.RevokeGrant)
		admin.GET("/referrals/top", h.TopReferrers)
	}

	// Live stats feed for dashboards
	r.GET("/api/v1/ws/stats", middleware.AdminJWT(), h.StatsWS)
}
