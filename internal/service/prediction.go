// Package service composes the feature schema, the trained classifier and
// the risk interpreter into the per-request prediction flow.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/miradorstack/mirador-predict/internal/classifier"
	"github.com/miradorstack/mirador-predict/internal/features"
	"github.com/miradorstack/mirador-predict/internal/interpreter"
	"github.com/miradorstack/mirador-predict/internal/metrics"
	"github.com/miradorstack/mirador-predict/internal/models"
	"github.com/miradorstack/mirador-predict/internal/utils"
)

// ErrModelNotLoaded is returned by Predict when the service booted in
// degraded mode (model or schema failed to load). The process stays up so
// health checks can report the condition instead of crash-looping.
var ErrModelNotLoaded = errors.New("model not loaded")

// PredictionService is the stateless request-scoped prediction flow. The
// schema and classifier are immutable after construction and shared across
// concurrent requests without locking.
type PredictionService struct {
	logger       *slog.Logger
	schema       *features.Schema
	classifier   *classifier.RiskClassifier
	modelVersion string
	latencies    *utils.LatencyTracker
}

// New constructs the prediction service. schema and clf may be nil, which
// puts the service in degraded mode: health reports the missing model and
// every Predict call fails with ErrModelNotLoaded.
func New(logger *slog.Logger, schema *features.Schema, clf *classifier.RiskClassifier, modelVersion string) *PredictionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionService{
		logger:       logger,
		schema:       schema,
		classifier:   clf,
		modelVersion: modelVersion,
		latencies:    utils.NewLatencyTracker(1024),
	}
}

// ModelLoaded reports whether both the classifier and its schema are available.
func (s *PredictionService) ModelLoaded() bool {
	return s.classifier != nil && s.schema != nil
}

// ModelVersion returns the configured model version string.
func (s *PredictionService) ModelVersion() string {
	return s.modelVersion
}

// FeatureNames returns the ordered schema names, or nil in degraded mode.
func (s *PredictionService) FeatureNames() []string {
	if s.schema == nil {
		return nil
	}
	return s.schema.Names()
}

// Predict scores one telemetry snapshot. Schema features absent from raw
// default to 0.0 (kept for wire compatibility) but are logged, counted and
// echoed back in the result so operators can see the gap. Unknown keys in
// raw are ignored.
func (s *PredictionService) Predict(ctx context.Context, raw map[string]float64) (models.PredictionResult, error) {
	start := time.Now()

	if !s.ModelLoaded() {
		metrics.ObservePrediction(time.Since(start), metrics.OutcomeError)
		return models.PredictionResult{}, ErrModelNotLoaded
	}

	vector, missing := s.schema.Vectorize(raw)
	if len(missing) > 0 {
		metrics.ObserveMissingFeatures(len(missing))
		s.logger.Warn("request missing schema features, defaulted to zero",
			slog.Int("count", len(missing)),
			slog.Any("features", missing))
	}

	pNegative, pIncident, label, err := s.classifier.Classify(vector)
	duration := time.Since(start)
	if err != nil {
		metrics.ObservePrediction(duration, metrics.OutcomeError)
		s.logger.Error("classifier scoring failed", slog.Any("error", err))
		return models.PredictionResult{}, fmt.Errorf("score feature vector: %w", err)
	}

	level, recommendation := interpreter.Level(pIncident)
	incidentType := interpreter.AttributeIncident(raw)

	confidence := pNegative
	if pIncident > confidence {
		confidence = pIncident
	}

	s.latencies.Observe(duration)
	metrics.ObservePrediction(duration, metrics.OutcomeSuccess)
	metrics.ObserveRiskLevel(string(level))
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("prediction latency", slog.Duration("p95", s.latencies.Percentile(95)), slog.Int("samples", count))
	}

	return models.PredictionResult{
		IncidentProbability: pIncident,
		PredictedLabel:      label,
		Confidence:          confidence,
		RiskLevel:           level,
		IncidentType:        incidentType,
		Recommendation:      recommendation,
		ModelVersion:        s.modelVersion,
		MissingFeatures:     missing,
	}, nil
}
