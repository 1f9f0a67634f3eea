// Package handlers implements the HTTP API served to the streaming front end.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/streambox/internal/constants"
	"github.com/amaumene/streambox/internal/middleware"
	"github.com/amaumene/streambox/internal/services"
)

// Handler handles HTTP requests for the catalog API.
type Handler struct {
	services *services.Container
}

// New creates a new Handler with the provided services.
func New(services *services.Container) *Handler {
	return &Handler{services: services}
}

// RegisterRoutes registers all HTTP routes under /api plus /metrics.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/", h.handleHealth)

	movies := api.Group("/movies")
	movies.GET("/trending", h.handleTrending)
	movies.GET("/category/:category", h.handleCategory)
	movies.GET("/search", h.handleSearch)
	movies.GET("/categories/list", h.handleCategories)
	movies.GET("/:id", h.handleDetails)

	auth := api.Group("/auth")
	auth.POST("/login", h.handleLogin)
	auth.POST("/verify", h.handleVerify)

	requireAdmin := middleware.RequireAdmin(h.services.Auth)
	videos := api.Group("/custom-videos")
	videos.POST("/upload", requireAdmin, h.handleUpload)
	videos.GET("/list", h.handleListVideos)
	videos.GET("/stream/:filename", h.handleStreamVideo)
	videos.GET("/thumbnail/:filename", h.handleThumbnail)
	videos.GET("/:id", h.handleGetVideo)
	videos.DELETE("/:id", requireAdmin, h.handleDeleteVideo)

	r.GET("/metrics", gin.WrapH(h.services.Metrics.Handler()))
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": constants.AppName + " API",
		"status":  "running",
		"version": constants.AppVersion,
	})
}
