package main

import (
	"github.com/amaumene/streambox/internal/config"
	"github.com/amaumene/streambox/internal/database"
	"github.com/amaumene/streambox/internal/metrics"
	"github.com/amaumene/streambox/internal/services"
	"github.com/amaumene/streambox/internal/storage"
	"github.com/amaumene/streambox/pkg/httputil"
	"github.com/amaumene/streambox/pkg/logger"
	"github.com/amaumene/streambox/pkg/ratelimiter"
	"github.com/amaumene/streambox/pkg/security"
)

// app owns the long-lived resources built at startup.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	db        database.Database
	metrics   *metrics.Metrics
	container *services.Container
	cleanup   *services.CleanupService
}

func newApp(cfg *config.Config) *app {
	return &app{cfg: cfg}
}

func (a *app) initializeLogger() {
	a.log = logger.NewWithOptions(logger.Options{
		Level:         a.cfg.LogLevel,
		Format:        a.cfg.LogFormat,
		File:          a.cfg.LogFile,
		MaxSizeMB:     a.cfg.LogMaxSizeMB,
		MaxBackups:    a.cfg.LogMaxBackups,
		MaxAgeDays:    a.cfg.LogMaxAgeDays,
		CompressFiles: true,
	})

	if a.cfg.UsesDefaultSecrets() {
		a.log.Warn("[App] ADMIN_PASSWORD or JWT_SECRET_KEY is using its default value; set both before exposing the server")
	}
}

func (a *app) initializeDatabase() {
	db, err := database.NewBolt(a.cfg.DatabasePath)
	if err != nil {
		a.log.Fatalf("[App] failed to initialize database: %v", err)
	}
	a.db = db

	a.log.Infof("[App] bolt database initialized at %s", a.cfg.DatabasePath)
}

func (a *app) initializeServices() {
	a.metrics = metrics.NewWithRuntime()

	pool, err := services.NewCredentialPool(a.cfg.TMDBAPIKeys)
	if err != nil {
		a.log.Fatalf("[App] %v", err)
	}
	validator := security.NewAPIKeyValidator()
	for i, key := range a.cfg.TMDBAPIKeys {
		if !validator.IsValidTMDBKey(key) {
			a.log.Warnf("[App] TMDB key #%d (%s) does not look like a v3 key", i, validator.MaskAPIKey(key))
		}
	}

	client := services.NewTMDB(a.cfg.TMDBBaseURL, pool,
		services.WithHTTPClient(httputil.NewHTTPClient(a.cfg.UpstreamTimeout)),
		services.WithTimeout(a.cfg.UpstreamTimeout),
		services.WithLogger(a.log.With("component", "tmdb")),
		services.WithMetrics(a.metrics),
	)

	files, err := storage.NewOSFiles(a.cfg.UploadDir)
	if err != nil {
		a.log.Fatalf("[App] failed to prepare upload directory: %v", err)
	}

	auth, err := services.NewAuth(services.AuthConfig{
		Password: a.cfg.AdminPassword,
		Secret:   a.cfg.JWTSecret,
		TokenTTL: a.cfg.TokenTTL,
		Limiter:  ratelimiter.NewKeyedLimiter(a.cfg.LoginRateBurst, a.cfg.LoginRateLimit),
	}, a.log.With("component", "auth"))
	if err != nil {
		a.log.Fatalf("[App] failed to initialize admin auth: %v", err)
	}

	a.cleanup = services.NewCleanupService(a.db, files, a.log.With("component", "cleanup"))

	a.container = &services.Container{
		Catalog: services.NewCatalog(client, a.cfg.TMDBImageBaseURL, a.log.With("component", "catalog")),
		Videos:  services.NewVideos(a.db, files, a.log.With("component", "videos")),
		Auth:    auth,
		Logger:  a.log,
		Metrics: a.metrics,
	}

	a.log.Infof("[App] services initialized with %d TMDB key(s)", pool.Size())
}

func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup.Stop()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Errorf("[App] failed to close database: %v", err)
		}
	}
}
