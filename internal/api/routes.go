package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"gridhash/internal/api/handlers"
	"gridhash/internal/logger"
	"gridhash/internal/metrics"
)

type Router struct {
	geohashHandler *handlers.GeohashHandler
	markerHandler  *handlers.MarkerHandler
	log            *slog.Logger
}

func NewRouter(
	geohashHandler *handlers.GeohashHandler,
	markerHandler *handlers.MarkerHandler,
	log *slog.Logger,
) *Router {
	return &Router{
		geohashHandler: geohashHandler,
		markerHandler:  markerHandler,
		log:            log,
	}
}

func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(logger.AccessMiddleware(r.log))

	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Stateless geohash operations
	geohash := engine.Group("/geohash")
	{
		geohash.GET("/encode", r.geohashHandler.Encode)
		geohash.GET("/:hash/decode", r.geohashHandler.Decode)
		geohash.GET("/:hash/bounds", r.geohashHandler.Bounds)
		geohash.GET("/:hash/adjacent/:direction", r.geohashHandler.Adjacent)
		geohash.GET("/:hash/neighbours", r.geohashHandler.Neighbours)
		geohash.GET("/:hash/grid", r.geohashHandler.Grid)
	}

	// Markers pinned to the spatial index
	markers := engine.Group("/markers")
	{
		markers.PUT("", r.markerHandler.PutMarker)
		markers.GET("/nearby", r.markerHandler.FindNearby)
		markers.GET("/:id", r.markerHandler.GetMarker)
		markers.DELETE("/:id", r.markerHandler.DeleteMarker)
	}
}
