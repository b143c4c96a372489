package handler

import (
	"context"
	"errors"
	"net/http"

	"ipgeo-client/internal/models"
	"ipgeo-client/internal/service"

	"github.com/gin-gonic/gin"
)

// GeoHandler handles geolocation lookups
type GeoHandler struct {
	service GeoLookupService
}

// Service interface for dependency injection
type GeoLookupService interface {
	Lookup(context.Context, string) (*models.GeoRecord, error)
}

// NewGeoHandler creates a new geo handler
func NewGeoHandler(svc GeoLookupService) *GeoHandler {
	return &GeoHandler{service: svc}
}

// Geo handles GET /api/geo requests
//
//	@Summary		Look up an IP address
//	@Description	Returns the geolocation of the given address, or of the caller when ip is omitted.
//	@Tags			geo
//	@Produce		json
//	@Param			ip	query		string	false	"IPv4 or IPv6 address"
//	@Success		200	{object}	models.GeoRecord
//	@Failure		400	{object}	map[string]string
//	@Failure		401	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Security		BearerAuth
//	@Router			/api/geo [get]
func (h *GeoHandler) Geo(c *gin.Context) {
	ip := c.Query("ip")
	if ip == "" {
		ip = c.ClientIP()
	}

	record, err := h.service.Lookup(c.Request.Context(), ip)
	if err != nil {
		if errors.Is(err, service.ErrInvalidIP) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid IP address"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no geolocation data for " + ip})
		return
	}

	c.JSON(http.StatusOK, record)
}
