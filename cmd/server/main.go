package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"gridhash/internal/api"
	"gridhash/internal/api/handlers"
	"gridhash/internal/config"
	"gridhash/internal/geo"
	"gridhash/internal/logger"
	"gridhash/internal/repository"
	"gridhash/internal/repository/memory"
	"gridhash/internal/repository/redisstore"
	"gridhash/internal/services"
)

func main() {
	// Load configuration
	cfg, cfgErr := config.Load()
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if cfgErr != nil {
		log.Warn("config_defaults_used", "err", cfgErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize marker storage
	var markerRepo repository.MarkerRepository
	switch cfg.Store.Backend {
	case config.BackendRedis:
		rdb, err := redisstore.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Error("redis_unavailable", "addr", cfg.Redis.Addr, "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		markerRepo = redisstore.NewMarkerRepository(rdb, redisstore.DefaultPrefix)
	default:
		markerRepo = memory.NewMarkerRepository()
	}

	// Initialize spatial index and services
	spatialIndex := geo.NewSpatialIndex(cfg.Geo.IndexPrecision)
	geohashService := services.NewGeohashService(log)
	markerService := services.NewMarkerService(spatialIndex, markerRepo, cfg.Geo.SearchRadiusKm, log)

	restored, err := markerService.Restore(ctx)
	if err != nil {
		log.Error("marker_restore_failed", "err", err)
		os.Exit(1)
	}

	// Setup router
	router := api.NewRouter(
		handlers.NewGeohashHandler(geohashService),
		handlers.NewMarkerHandler(markerService),
		log,
	)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	router.Setup(engine)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown", "err", err)
		}
	}()

	log.Info("server_start",
		"addr", cfg.Server.Port,
		"store", cfg.Store.Backend,
		"index_precision", spatialIndex.Precision(),
		"markers_restored", restored,
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server_failed", "err", err)
		os.Exit(1)
	}
}
