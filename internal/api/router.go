package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/limbo-app/limbo/internal/board"
	"github.com/limbo-app/limbo/internal/cache"
	"github.com/limbo-app/limbo/pkg/config"
	"github.com/limbo-app/limbo/pkg/logging"
)

// Router sets up API routes
type Router struct {
	svc    *board.Service
	cache  *cache.Cache
	cfg    *config.Config
	logger *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(cfg *config.Config, svc *board.Service, redisCache *cache.Cache) *Router {
	return &Router{
		svc:    svc,
		cache:  redisCache,
		cfg:    cfg,
		logger: logging.GetLogger().With(zap.String("component", "api-router")),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", headerUserID, headerUserRole},
		MaxAge:          12 * time.Hour,
	}))

	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	v1 := engine.Group("/api/v1")
	v1.Use(Identity())

	confessions := v1.Group("/confessions")
	confessions.POST("", r.createConfession)
	confessions.GET("", r.listConfessions)
	confessions.GET("/search", r.searchConfessions)
	confessions.GET("/:id", r.getConfession)
	confessions.DELETE("/:id", RequireModerator(), r.deleteConfession)
	confessions.POST("/:id/vote", r.castVote)
	confessions.GET("/:id/vote", r.getUserVote)
	confessions.POST("/:id/share", r.recordShare)
	confessions.POST("/:id/report", r.reportConfession)
	confessions.POST("/:id/comments", r.createComment)
	confessions.GET("/:id/comments", r.listComments)

	comments := v1.Group("/comments")
	comments.GET("/:id", r.getComment)
	comments.PUT("/:id", r.editComment)
	comments.DELETE("/:id", r.deleteComment)
	comments.POST("/:id/like", r.likeComment)
	comments.POST("/:id/dislike", r.dislikeComment)
	comments.POST("/:id/report", r.reportComment)

	v1.GET("/users/:id/stats", r.getUserStats)

	admin := v1.Group("/admin", RequireModerator())
	admin.POST("/moderate", r.moderate)
	admin.POST("/moderate/batch", r.batchModerate)
	admin.POST("/confessions/:id/feature", r.featureConfession)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "limbo-api",
	})
}
