package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/bellapacxx/bingo-sessions/config"
	"github.com/bellapacxx/bingo-sessions/controllers"
	"github.com/bellapacxx/bingo-sessions/metrics"
	"github.com/bellapacxx/bingo-sessions/middleware"
	"github.com/bellapacxx/bingo-sessions/services"
)

// Dependencies are the services the HTTP layer talks to. Hub and Metrics
// may be nil.
type Dependencies struct {
	Players *services.PlayerService
	Matches *services.MatchService
	Hub     *services.Hub
	Metrics *metrics.Metrics
}

// NewRouter initializes the gin engine, middleware and routes
func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	// Live draw feed
	if deps.Hub != nil {
		r.GET("/ws/matches/:id", deps.Hub.HandleWebSocket)
	}

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	SetupRoutes(r.Group("/api", middleware.RateLimit(limiter)), deps)
	return r
}

// SetupRoutes registers the REST API on api
func SetupRoutes(api *gin.RouterGroup, deps Dependencies) {
	players := controllers.NewPlayerController(deps.Players)
	ranking := controllers.NewRankingController(deps.Players)
	matches := controllers.NewMatchController(deps.Matches)

	// ----------------------
	// Player routes
	// ----------------------
	api.POST("/players", players.Create)                      // Register or reactivate
	api.GET("/players", players.List)                         // Active players
	api.GET("/players/:id", players.Get)                      // Single player
	api.PUT("/players/:id", players.Update)                   // Rename
	api.DELETE("/players/:id", players.Delete)                // Deactivate
	api.GET("/players/:id/score-events", players.ScoreEvents) // Points history

	// ----------------------
	// Ranking routes
	// ----------------------
	api.GET("/ranking", ranking.List)
	api.GET("/ranking/export", ranking.Export) // xlsx download

	// ----------------------
	// Match routes
	// ----------------------
	api.POST("/matches", matches.Create)
	api.GET("/matches", matches.List) // ?status=in_progress|finished|all
	api.GET("/matches/:id", matches.Get)
	api.POST("/matches/:id/draw", matches.Draw)
	api.POST("/matches/:id/finalize", matches.Finalize)
	api.DELETE("/matches/:id", matches.Delete) // Annul

	// ----------------------
	// Catalogue and extra draw
	// ----------------------
	api.GET("/draws/extra", matches.ExtraDraw)
	api.GET("/match-types", controllers.MatchTypes)
	api.GET("/win-rules", controllers.WinRules)
}
