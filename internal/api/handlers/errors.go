package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gridhash/internal/geo"
	"gridhash/internal/services"
)

// statusFor maps service and geo errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, geo.ErrInvalidInput),
		errors.Is(err, geo.ErrInvalidGeohash),
		errors.Is(err, geo.ErrInvalidDirection),
		errors.Is(err, services.ErrInvalidRadius):
		return http.StatusBadRequest
	case errors.Is(err, geo.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrMarkerNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
