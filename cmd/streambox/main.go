package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/streambox/internal/config"
	"github.com/amaumene/streambox/internal/constants"
	"github.com/amaumene/streambox/internal/handlers"
	"github.com/amaumene/streambox/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	a := newApp(cfg)
	a.initializeLogger()
	a.initializeDatabase()
	defer a.close()
	a.initializeServices()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(a.log))
	r.Use(middleware.Metrics(a.metrics))
	r.Use(middleware.CORS())
	r.Use(middleware.Gzip("/api/custom-videos/stream/", "/api/custom-videos/thumbnail/", "/metrics"))

	handlers.New(a.container).RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.cleanup.Start(ctx)

	go func() {
		a.log.Infof("[App] starting %s %s on port %s", constants.AppName, constants.AppVersion, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("[App] HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	a.log.Info("[App] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf("[App] graceful shutdown failed: %v", err)
	}
}
