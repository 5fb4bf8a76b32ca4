package handlers

import (
	"freightflow/internal/api/dto"
	"freightflow/internal/kpi"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// KPIHandler exposes the process KPI snapshot.
type KPIHandler struct {
	Tracker *kpi.Tracker
	Logger  *zap.Logger
}

func (h *KPIHandler) Snapshot(c *gin.Context) {
	snap, err := h.Tracker.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, kpiResponse(snap, h.Tracker.Mode()))
}

func kpiResponse(s kpi.Snapshot, mode kpi.Mode) dto.KPIResponse {
	return dto.KPIResponse{
		Mode:       string(mode),
		DelayPct:   dto.Round(s.DelayPct, 2),
		MoneySaved: dto.Round(s.MoneySaved, 2),
		Routes:     s.Routes,
	}
}
