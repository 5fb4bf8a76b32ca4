package handlers

import (
	"context"
	"errors"
	"freightflow/internal/ports"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SnapshotReader returns the latest snapshot as stored.
type SnapshotReader interface {
	Raw(ctx context.Context) ([]byte, error)
}

type HazardHandler struct {
	Store  SnapshotReader
	Logger *zap.Logger
}

// Latest handles GET /api/hazards.
func (h *HazardHandler) Latest(c *gin.Context) {
	raw, err := h.Store.Raw(c.Request.Context())
	if errors.Is(err, ports.ErrNoSnapshot) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "No hazard snapshots yet"})
		return
	}
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
