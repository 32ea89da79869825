package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lob-engine/internal/cache"
	"lob-engine/internal/config"
	"lob-engine/internal/engine"
	"lob-engine/internal/messaging"
	"lob-engine/internal/metrics"
	"lob-engine/internal/middleware"
	"lob-engine/internal/ws"
)

// RegisterRoutes wires the HTTP surface. Cache, hub, publisher and metrics
// are optional; the book is not.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, book *engine.LimitOrderBook, redisCache *cache.RedisCache, wsHub *ws.Hub, publisher *messaging.Publisher, m *metrics.Metrics) {
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware())
	if m != nil {
		r.Use(func(c *gin.Context) {
			start := time.Now()
			c.Next()
			m.RecordHTTPRequest(c.Request.Method, c.FullPath(), strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
		})
	}

	h := NewHandler(book, redisCache, wsHub, publisher, m)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/book", h.GetBookSnapshot)
		api.GET("/ticker", h.GetTicker)
		api.GET("/orders/:id", h.GetOrder)

		protected := api.Group("")
		if cfg != nil && cfg.AuthEnabled {
			authMiddleware := middleware.NewAuthMiddleware(middleware.DefaultAuthConfig(cfg.JWTSecret))
			protected.Use(authMiddleware.GinMiddleware())
		}
		if cfg != nil {
			rateLimiter := middleware.NewRateLimiter(&middleware.RateLimitConfig{
				RequestsPerSecond: cfg.RateLimitPerSecond,
				Burst:             cfg.RateLimitBurst,
			})
			protected.Use(rateLimiter.GinMiddleware())
		}
		{
			protected.POST("/orders", h.PlaceOrder)
			protected.DELETE("/orders/:id", h.CancelOrder)
			protected.GET("/fills", h.GetClientFills)
		}
	}

	if wsHub != nil {
		wsHandler := ws.NewHandler(wsHub)
		r.GET("/ws", wsHandler.HandleUpgrade)
		r.GET("/ws/stats", wsHandler.HandleStats)
	}
}
