package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/miradorstack/mirador-predict/internal/models"
	"github.com/miradorstack/mirador-predict/internal/service"
	"github.com/miradorstack/mirador-predict/internal/simulator"
)

// Handler exposes the prediction surface and, when the simulator is
// enabled, the live-topology dashboard routes.
type Handler struct {
	logger   *slog.Logger
	svc      *service.PredictionService
	sim      *simulator.Simulator
	hub      *simulator.Hub
	upgrader websocket.Upgrader
}

// NewHandler constructs the handler set. sim and hub may be nil when the
// simulator is disabled; the dashboard routes are then not registered.
func NewHandler(logger *slog.Logger, svc *service.PredictionService, sim *simulator.Simulator, hub *simulator.Hub) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger: logger,
		svc:    svc,
		sim:    sim,
		hub:    hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes attaches all routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/features", h.Features)
	router.POST("/predict", h.Predict)

	if h.sim != nil {
		router.GET("/api/services", h.Services)
		router.POST("/api/chaos/inject", h.InjectChaos)
		router.POST("/api/reset", h.Reset)
		router.GET("/api/predict", h.LivePredict)
		router.GET("/api/predict/:service", h.LivePredict)
		if h.hub != nil {
			router.GET("/ws", h.LiveStream)
		}
	}
}

type predictionResponse struct {
	IncidentProbability float64  `json:"incident_probability"`
	RiskLevel           string   `json:"risk_level"`
	Confidence          float64  `json:"confidence"`
	IncidentType        string   `json:"predicted_incident_type"`
	Recommendation      string   `json:"recommendation"`
	ModelVersion        string   `json:"model_version"`
	Prediction          int      `json:"prediction"`
	MissingFeatures     []string `json:"missing_features,omitempty"`
	ServiceName         string   `json:"service_name,omitempty"`
}

func toResponse(result models.PredictionResult) predictionResponse {
	return predictionResponse{
		IncidentProbability: result.IncidentProbability,
		RiskLevel:           string(result.RiskLevel),
		Confidence:          result.Confidence,
		IncidentType:        string(result.IncidentType),
		Recommendation:      result.Recommendation,
		ModelVersion:        result.ModelVersion,
		Prediction:          result.PredictedLabel,
		MissingFeatures:     result.MissingFeatures,
	}
}

// Health reports process liveness and whether the model is loaded.
// Always 200: a degraded service is still alive.
func (h *Handler) Health(c *gin.Context) {
	modelState := "not loaded"
	if h.svc.ModelLoaded() {
		modelState = "loaded"
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "model": modelState})
}

// Features returns the ordered feature schema the model expects.
func (h *Handler) Features(c *gin.Context) {
	names := h.svc.FeatureNames()
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"features": names, "count": len(names)})
}

// Predict scores a telemetry snapshot supplied as a flat name -> number
// mapping. Every failure, including an unloaded model and malformed input,
// is reported uniformly as a 500 with the error message; no retries, no
// partial results.
func (h *Handler) Predict(c *gin.Context) {
	var raw map[string]float64
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.Predict(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, service.ErrModelNotLoaded) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "model not loaded"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toResponse(result))
}

// Services returns the simulator's live state for every service.
func (h *Handler) Services(c *gin.Context) {
	c.JSON(http.StatusOK, h.sim.Snapshot())
}

type chaosRequest struct {
	TargetService string `json:"target_service"`
	ChaosType     string `json:"chaos_type"`
	Duration      int    `json:"duration"`
}

// InjectChaos applies a fault to a simulated service.
func (h *Handler) InjectChaos(c *gin.Context) {
	var req chaosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sim.InjectChaos(req.TargetService, req.ChaosType, req.Duration); err != nil {
		status := http.StatusBadRequest
		if !h.simKnowsService(req.TargetService) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "chaos injected"})
}

func (h *Handler) simKnowsService(name string) bool {
	_, ok := h.sim.Snapshot()[name]
	return ok
}

// Reset restores every simulated service to a healthy state.
func (h *Handler) Reset(c *gin.Context) {
	h.sim.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// LivePredict builds a feature snapshot from the simulator's current state
// and runs it through the model. When the model is not loaded it falls
// back to the heuristic estimate so the dashboard stays usable; the
// fallback is tagged with its own model version.
func (h *Handler) LivePredict(c *gin.Context) {
	serviceName := c.Param("service")

	snapshot := h.sim.FeatureSnapshot(time.Now())
	result, err := h.svc.Predict(c.Request.Context(), snapshot)
	if err != nil {
		if errors.Is(err, service.ErrModelNotLoaded) {
			resp := toResponse(h.sim.FallbackPrediction(serviceName))
			resp.ServiceName = serviceName
			c.JSON(http.StatusOK, resp)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := toResponse(result)
	resp.ServiceName = serviceName
	c.JSON(http.StatusOK, resp)
}

// LiveStream upgrades to a websocket and streams state snapshots until the
// peer disconnects.
func (h *Handler) LiveStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	h.hub.Register(c.Request.Context(), conn, h.sim.Snapshot())
}
