// Package api is the local HTTP gateway that serves BookVerse view models
// to a front end.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookverse/bookverse/internal/catalog"
	"github.com/bookverse/bookverse/internal/feed"
	"github.com/bookverse/bookverse/internal/models"
	"github.com/bookverse/bookverse/internal/notifications"
	"github.com/bookverse/bookverse/internal/search"
	"github.com/bookverse/bookverse/internal/shelves"
	"github.com/bookverse/bookverse/pkg/logging"
)

// HealthChecker is implemented by stores that can report connectivity
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Users is the profile and follow surface of the BookVerse API
type Users interface {
	GetUser(ctx context.Context, username string) (models.User, error)
	FollowCounts(ctx context.Context, username string) (models.FollowCounts, error)
	Follow(ctx context.Context, username string) error
	Unfollow(ctx context.Context, username string) error
}

// Services are the view-model services behind the routes
type Services struct {
	Feed          *feed.Feed
	Catalog       *catalog.Service
	Search        *search.Searcher
	Shelves       *shelves.Service
	Notifications *notifications.Service
	Users         Users
	// Store is checked by /health when set
	Store HealthChecker
}

// Router sets up gateway routes
type Router struct {
	svc    Services
	logger *zap.Logger
}

// NewRouter creates a new gateway router
func NewRouter(svc Services) *Router {
	return &Router{
		svc:    svc,
		logger: logging.WithComponent("gateway"),
	}
}

// NewEngine returns a gin engine with the gateway middleware and routes
func NewEngine(svc Services) *gin.Engine {
	engine := gin.New()
	engine.Use(RequestID(), Recovery(), AccessLog())
	NewRouter(svc).SetupRoutes(engine)
	return engine
}

// SetupRoutes sets up all gateway routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	api := engine.Group("/api")

	feedGroup := api.Group("/feed")
	feedGroup.GET("", r.getFeed)
	feedGroup.POST("/refresh", r.refreshFeed)
	feedGroup.POST("/posts", r.createPost)
	feedGroup.PUT("/posts/:id", r.editPost)
	feedGroup.DELETE("/posts/:id", r.deletePost)
	feedGroup.POST("/posts/:id/like", r.toggleLike)
	feedGroup.POST("/posts/:id/comments", r.addComment)
	feedGroup.DELETE("/posts/:id/comments/:commentId", r.deleteComment)
	feedGroup.POST("/posts/:id/report", r.reportPost)
	feedGroup.POST("/posts/:id/save", r.toggleSaved)
	feedGroup.POST("/reviews", r.shareReview)
	feedGroup.POST("/quotes", r.shareQuote)

	api.GET("/books", r.browseBooks)
	api.GET("/books/trending", r.trendingBooks)
	api.GET("/books/:id", r.getBook)
	api.GET("/search", r.search)

	api.GET("/shelves", r.listShelves)
	api.POST("/shelves/move", r.moveBook)
	api.POST("/shelves/:shelf/books", r.addToShelf)
	api.DELETE("/shelves/:shelf/books/:bookId", r.removeFromShelf)

	api.GET("/users/:username", r.getProfile)
	api.POST("/users/:username/follow", r.follow)
	api.DELETE("/users/:username/follow", r.unfollow)

	api.GET("/notifications", r.listNotifications)
	api.POST("/notifications/:id/dismiss", r.dismissNotification)
	api.POST("/notifications/dismiss-all", r.dismissAllNotifications)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	if r.svc.Store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := r.svc.Store.Health(ctx); err != nil {
			r.logger.Warn("Store health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "DEGRADED",
				"service": "bookverse-gateway",
				"error":   err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "bookverse-gateway",
	})
}

// queryInt parses an optional positive integer query parameter
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, badRequest(key + " must be a positive integer")
	}
	return n, nil
}
