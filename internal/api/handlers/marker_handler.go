package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gridhash/internal/geo"
	"gridhash/internal/services"
)

type MarkerHandler struct {
	markerService *services.MarkerService
}

func NewMarkerHandler(markerService *services.MarkerService) *MarkerHandler {
	return &MarkerHandler{
		markerService: markerService,
	}
}

// PutMarkerRequest uses pointers for the coordinates so that 0 is not
// mistaken for a missing field by the binding validator.
type PutMarkerRequest struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Lat   *float64 `json:"lat" binding:"required"`
	Lon   *float64 `json:"lon" binding:"required"`
}

// PutMarker handles PUT /markers
func (h *MarkerHandler) PutMarker(c *gin.Context) {
	var req PutMarkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	marker, err := h.markerService.PutMarker(c.Request.Context(), req.ID, req.Label, *req.Lat, *req.Lon)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, marker)
}

// GetMarker handles GET /markers/:id
func (h *MarkerHandler) GetMarker(c *gin.Context) {
	marker, err := h.markerService.GetMarker(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, marker)
}

// DeleteMarker handles DELETE /markers/:id
func (h *MarkerHandler) DeleteMarker(c *gin.Context) {
	if err := h.markerService.RemoveMarker(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FindNearby handles GET /markers/nearby?lat=&lon=&radius_km=
func (h *MarkerHandler) FindNearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat must be a number"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon must be a number"})
		return
	}
	radius := 0.0
	if s := c.Query("radius_km"); s != "" {
		radius, err = strconv.ParseFloat(s, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radius_km must be a number"})
			return
		}
	}

	nearby, err := h.markerService.FindNearby(c.Request.Context(), lat, lon, radius)
	if err != nil {
		writeError(c, err)
		return
	}
	if nearby == nil {
		nearby = []geo.MarkerWithDistance{}
	}
	c.JSON(http.StatusOK, gin.H{"markers": nearby, "count": len(nearby)})
}
