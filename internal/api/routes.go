package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/plinko/internal/api/handlers"
	"github.com/playmatatu/plinko/internal/auth"
	"github.com/playmatatu/plinko/internal/config"
	"github.com/playmatatu/plinko/internal/database"
	"github.com/playmatatu/plinko/internal/metrics"
	"github.com/playmatatu/plinko/internal/middleware"
	"github.com/playmatatu/plinko/internal/redis"
	"github.com/playmatatu/plinko/internal/session"
	"github.com/playmatatu/plinko/internal/ws"
)

// Deps are the long-lived services the routes need. Audit and Publisher may be
// nil when Postgres or Redis is not configured.
type Deps struct {
	Config    *config.Config
	Sessions  *session.Manager
	Hub       *ws.Hub
	Audit     *database.AuditStore
	Publisher *redis.Publisher
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, d Deps) {
	cfg := d.Config

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(metrics.Middleware())

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(d.Sessions))
		v1.GET("/board", auth.OptionalSession(cfg.JWTSecret), handlers.GetBoard(d.Sessions))
		v1.GET("/leaderboard", handlers.Leaderboard(d.Publisher))
		v1.GET("/metrics", metrics.Handler())

		v1.POST("/sessions", handlers.CreateSession(d.Sessions, cfg))

		sessions := v1.Group("/sessions/:id", auth.RequireSession(cfg.JWTSecret))
		{
			sessions.GET("", handlers.GetSession(d.Sessions, d.Publisher))
			sessions.DELETE("", handlers.EndSession(d.Sessions))
			sessions.POST("/drop", handlers.DropBall(d.Sessions))
			sessions.POST("/upgrades/:kind", handlers.BuyUpgrade(d.Sessions))
			sessions.POST("/pause", handlers.PauseSession(d.Sessions))
			sessions.POST("/resume", handlers.ResumeSession(d.Sessions))
			sessions.GET("/drops", handlers.RecentDrops(d.Audit))
			sessions.GET("/ws", middleware.WebSocketCORSCheck(cfg), ws.ServeSession(d.Hub, d.Sessions))
		}
	}
}
