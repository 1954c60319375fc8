package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gridhash/internal/services"
)

type GeohashHandler struct {
	geohashService *services.GeohashService
}

func NewGeohashHandler(geohashService *services.GeohashService) *GeohashHandler {
	return &GeohashHandler{
		geohashService: geohashService,
	}
}

// Encode handles GET /geohash/encode?lat=&lon=&precision=
func (h *GeohashHandler) Encode(c *gin.Context) {
	hash, err := h.geohashService.Encode(c.Query("lat"), c.Query("lon"), c.Query("precision"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"geohash": hash})
}

// Decode handles GET /geohash/:hash/decode
func (h *GeohashHandler) Decode(c *gin.Context) {
	coord, err := h.geohashService.Decode(c.Param("hash"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, coord)
}

// Bounds handles GET /geohash/:hash/bounds
func (h *GeohashHandler) Bounds(c *gin.Context) {
	cell, err := h.geohashService.Bounds(c.Param("hash"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cell)
}

// Adjacent handles GET /geohash/:hash/adjacent/:direction
func (h *GeohashHandler) Adjacent(c *gin.Context) {
	hash, err := h.geohashService.Adjacent(c.Param("hash"), c.Param("direction"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"geohash": hash})
}

// Neighbours handles GET /geohash/:hash/neighbours
func (h *GeohashHandler) Neighbours(c *gin.Context) {
	neighbours, err := h.geohashService.Neighbours(c.Param("hash"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, neighbours)
}

// Grid handles GET /geohash/:hash/grid
func (h *GeohashHandler) Grid(c *gin.Context) {
	grid, err := h.geohashService.Grid(c.Param("hash"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, grid)
}
