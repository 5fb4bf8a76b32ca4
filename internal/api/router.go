package api

import (
	"freightflow/internal/api/handlers"
	"freightflow/internal/platform/obs"
	"freightflow/internal/ports"
	"freightflow/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps contains everything the router needs. Handlers stay unaware of
// concrete adapters.
type Deps struct {
	Recommender        *services.Recommender
	Classifier         ports.RiskClassifier
	Geocoder           ports.Geocoder
	Hazards            handlers.SnapshotReader
	Metrics            *obs.Metrics
	Logger             *zap.Logger
	DefaultDeadlineMin float64
}

// NewRouter wires HTTP handlers with their dependencies.
// This is the API composition root.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(accessLog(deps.Logger))

	routeHandler := &handlers.RouteHandler{
		Recommender:        deps.Recommender,
		DefaultDeadlineMin: deps.DefaultDeadlineMin,
		Logger:             deps.Logger,
	}
	kpiHandler := &handlers.KPIHandler{Tracker: deps.Recommender.KPI(), Logger: deps.Logger}
	hazardHandler := &handlers.HazardHandler{Store: deps.Hazards, Logger: deps.Logger}
	riskHandler := &handlers.RiskHandler{Classifier: deps.Classifier, Logger: deps.Logger}
	placeHandler := &handlers.PlaceHandler{Geocoder: deps.Geocoder, Logger: deps.Logger}

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/route-options", routeHandler.Options)
		api.GET("/kpi", kpiHandler.Snapshot)
		api.GET("/hazards", hazardHandler.Latest)
		api.POST("/risk", riskHandler.Assess)
		api.GET("/places", placeHandler.Search)
	}

	return router
}
