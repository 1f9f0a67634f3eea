// Package services holds the catalog core and the services around it, wired
// together through Container for the route layer.
package services

import (
	"context"
	"os"

	"github.com/spf13/afero"

	"github.com/amaumene/streambox/internal/metrics"
	"github.com/amaumene/streambox/internal/models"
	"github.com/amaumene/streambox/pkg/logger"
)

// Container holds all application services for dependency injection.
type Container struct {
	Catalog CatalogService
	Videos  VideoService
	Auth    AuthService
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

// CatalogService defines the catalog operations served to the front end.
type CatalogService interface {
	ListTrending(ctx context.Context, limit int) []models.CatalogItem
	ListByCategory(ctx context.Context, category string, limit int) []models.CatalogItem
	Search(ctx context.Context, query string, limit int) ([]models.CatalogItem, error)
	GetDetails(ctx context.Context, id int64, mediaType string) (*models.CatalogDetails, error)
	GetTrailer(ctx context.Context, id int64, mediaType string) (string, bool)
}

// VideoService defines the custom-video operations.
type VideoService interface {
	Upload(u VideoUpload) (*models.CustomVideo, error)
	List() ([]models.CustomVideoView, error)
	Get(id string) (*models.CustomVideoView, error)
	Delete(id string) error
	Open(name string) (afero.File, os.FileInfo, error)
}

// AuthService defines admin session handling.
type AuthService interface {
	Login(clientKey, password string) (string, error)
	Verify(token string) (*AdminClaims, error)
}

var (
	_ CatalogService = (*Catalog)(nil)
	_ VideoService   = (*Videos)(nil)
	_ AuthService    = (*Auth)(nil)
)
