package handlers

import (
	"freightflow/internal/adapters/hazards"
	"freightflow/internal/adapters/risk"
	"freightflow/internal/api/dto"
	"freightflow/internal/geo"
	"freightflow/internal/ports"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RiskHandler scores an arbitrary polyline.
type RiskHandler struct {
	Classifier ports.RiskClassifier
	Logger     *zap.Logger
}

// Assess handles POST /api/risk.
func (h *RiskHandler) Assess(c *gin.Context) {
	var req dto.RiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json body: polyline is required")
		return
	}

	points, err := geo.Decode(req.Polyline)
	if err != nil {
		badRequest(c, "polyline is not a valid encoded polyline")
		return
	}

	if len(req.Hazards) > 0 && string(req.Hazards) != "null" {
		raw, err := hazards.DecodePayload(req.Hazards)
		if err != nil {
			badRequest(c, "hazards must be a GeoJSON FeatureCollection")
			return
		}
		features, _ := hazards.ParseFeatures(raw)
		c.JSON(http.StatusOK, riskResponse(risk.Assess(points, features)))
		return
	}

	reply, err := h.Classifier.Classify(c.Request.Context(), req.Polyline)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	a, err := reply.Decode()
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("risk reply not parseable", zap.Error(err))
		}
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "classifier reply not parseable"})
		return
	}

	c.JSON(http.StatusOK, riskResponse(a))
}
