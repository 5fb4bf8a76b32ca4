package handlers

import (
	"freightflow/internal/api/dto"
	"freightflow/internal/ports"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PlaceHandler backs the origin and destination search boxes.
type PlaceHandler struct {
	Geocoder ports.Geocoder
	Logger   *zap.Logger
}

// Search handles GET /api/places?q=...
func (h *PlaceHandler) Search(c *gin.Context) {
	places, err := h.Geocoder.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	res := dto.ListPlacesResponse{Places: make([]dto.PlaceResponse, 0, len(places))}
	for _, p := range places {
		res.Places = append(res.Places, dto.PlaceResponse{Name: p.Name, Lon: p.Lon, Lat: p.Lat})
	}
	c.JSON(http.StatusOK, res)
}
