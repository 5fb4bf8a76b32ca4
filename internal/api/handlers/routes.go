package handlers

import (
	"fmt"
	"freightflow/internal/api/dto"
	"freightflow/internal/domain"
	"freightflow/internal/kpi"
	"freightflow/internal/services"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteHandler answers route-option queries.
type RouteHandler struct {
	Recommender        *services.Recommender
	DefaultDeadlineMin float64
	Logger             *zap.Logger
}

// Options handles GET /api/route-options.
func (h *RouteHandler) Options(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	rec, err := h.Recommender.Recommend(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, routeOptionsResponse(rec, h.Recommender.KPI().Mode()))
}

func (h *RouteHandler) parseQuery(c *gin.Context) (services.RouteQuery, error) {
	var vals [4]float64
	for i, name := range []string{"fromLon", "fromLat", "toLon", "toLat"} {
		v, err := floatParam(c, name)
		if err != nil {
			return services.RouteQuery{}, err
		}
		vals[i] = v
	}

	deadline := h.DefaultDeadlineMin
	if raw := strings.TrimSpace(c.Query("deadlineMin")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return services.RouteQuery{}, fmt.Errorf("%w: deadlineMin is not a number", services.ErrInvalidQuery)
		}
		deadline = v
	}

	return services.RouteQuery{
		Origin:      domain.Coordinates{Lon: vals[0], Lat: vals[1]},
		Destination: domain.Coordinates{Lon: vals[2], Lat: vals[3]},
		DeadlineMin: deadline,
	}, nil
}

func floatParam(c *gin.Context, name string) (float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", services.ErrInvalidQuery, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a number", services.ErrInvalidQuery, name)
	}
	return v, nil
}

func routeOptionsResponse(rec *services.Recommendation, mode kpi.Mode) dto.RouteOptionsResponse {
	sel := rec.Selection

	res := dto.RouteOptionsResponse{
		Routes:       make([]dto.RouteResponse, 0, len(sel.Routes)),
		FinalistTier: sel.FinalistTier,
		SavedAUD:     dto.Round(rec.Outcome.Saved, 2),
		Decision:     make([]dto.DecisionRow, 0, len(sel.Routes)),
		KPI:          kpiResponse(rec.KPI, mode),
	}

	for i, r := range sel.Routes {
		res.Routes = append(res.Routes, routeResponse(r))

		role := ""
		switch r {
		case sel.Recommended:
			res.Recommended = i
			role = "recommended"
		case sel.Alternate:
			idx := i
			res.Alternate = &idx
			role = "alternate"
		}
		if r == sel.Baseline {
			res.Baseline = i
			if role == "" {
				role = "baseline"
			}
		}

		res.Decision = append(res.Decision, dto.DecisionRow{
			Route:       i + 1,
			Role:        role,
			HazardSafe:  r.HazardSafe,
			TrafficSafe: r.TrafficSafe,
			PromiseOK:   r.PromiseOK,
			CostAUD:     dto.Round(r.Cost, 2),
			TollAUD:     dto.Round(r.TollPrice, 2),
			CO2Kg:       dto.Round(r.CO2, 2),
			DelayProb:   dto.Round(r.Delay, 2),
			Reason:      services.TableReason(sel, r),
		})
	}

	return res
}

func routeResponse(r *domain.EnrichedRoute) dto.RouteResponse {
	return dto.RouteResponse{
		Polyline:    r.Polyline,
		DistanceKm:  dto.Round(r.DistanceKm, 2),
		EtaMin:      dto.Round(r.EtaMin, 1),
		TollAUD:     dto.Round(r.TollPrice, 2),
		CostAUD:     dto.Round(r.Cost, 2),
		CO2Kg:       dto.Round(r.CO2, 2),
		Risk:        riskResponse(domain.RiskAssessment{DelayProb: r.Delay, Avoid: r.Avoid, Explain: r.RiskExplain}),
		HazardSafe:  r.HazardSafe,
		TrafficSafe: r.TrafficSafe,
		PromiseOK:   r.PromiseOK,
	}
}

func riskResponse(a domain.RiskAssessment) dto.RiskResponse {
	coords := make([][]float64, 0, len(a.Avoid))
	for _, c := range a.Avoid {
		coords = append(coords, c.CoordsToList())
	}
	return dto.RiskResponse{DelayProb: a.DelayProb, AvoidCoords: coords, Explain: a.Explain}
}
