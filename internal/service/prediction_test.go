package service

import (
	"context"
	"errors"
	"testing"

	"github.com/miradorstack/mirador-predict/internal/classifier"
	"github.com/miradorstack/mirador-predict/internal/features"
	"github.com/miradorstack/mirador-predict/internal/models"
	"github.com/miradorstack/mirador-predict/internal/topology"
)

type fixedModel struct {
	pIncident float64
}

func (f *fixedModel) PredictProba(vector []float64) (float64, float64, error) {
	return 1 - f.pIncident, f.pIncident, nil
}

func newTestService(p float64) *PredictionService {
	schema := features.ForTopology(topology.Default())
	return New(nil, schema, classifier.NewRiskClassifier(&fixedModel{pIncident: p}), "xgboost_v1")
}

func TestPredictEndToEnd(t *testing.T) {
	svc := newTestService(0.92)

	result, err := svc.Predict(context.Background(), map[string]float64{
		"database_cpu":          95,
		"database_availability": 0,
		"api_gateway_latency":   1800,
		"slo_violation_count":   14,
	})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}

	if result.IncidentProbability != 0.92 {
		t.Fatalf("unexpected probability: %v", result.IncidentProbability)
	}
	if result.RiskLevel != models.RiskCritical {
		t.Fatalf("expected critical risk, got %s", result.RiskLevel)
	}
	if result.IncidentType != models.IncidentDatabaseOverload {
		t.Fatalf("expected database_overload, got %s", result.IncidentType)
	}
	if result.PredictedLabel != 1 {
		t.Fatalf("expected positive label, got %d", result.PredictedLabel)
	}
	if result.Confidence != 0.92 {
		t.Fatalf("expected confidence 0.92, got %v", result.Confidence)
	}
	if result.ModelVersion != "xgboost_v1" {
		t.Fatalf("unexpected model version: %s", result.ModelVersion)
	}
	// All other schema features were defaulted.
	if len(result.MissingFeatures) != 31-4 {
		t.Fatalf("expected 27 missing features, got %d", len(result.MissingFeatures))
	}
}

func TestPredictMissingFeatureDoesNotFail(t *testing.T) {
	svc := newTestService(0.1)

	result, err := svc.Predict(context.Background(), map[string]float64{"database_cpu": 40})
	if err != nil {
		t.Fatalf("predict with sparse request: %v", err)
	}
	if result.RiskLevel != models.RiskLow {
		t.Fatalf("expected low risk, got %s", result.RiskLevel)
	}
	if result.IncidentType != models.IncidentUnknown {
		t.Fatalf("expected unknown incident type, got %s", result.IncidentType)
	}
}

func TestPredictModelNotLoaded(t *testing.T) {
	svc := New(nil, nil, nil, "xgboost_v1")

	if svc.ModelLoaded() {
		t.Fatalf("expected degraded mode")
	}
	_, err := svc.Predict(context.Background(), map[string]float64{"database_cpu": 40})
	if !errors.Is(err, ErrModelNotLoaded) {
		t.Fatalf("expected ErrModelNotLoaded, got %v", err)
	}
}

func TestFeatureNames(t *testing.T) {
	svc := newTestService(0.5)
	names := svc.FeatureNames()
	if len(names) != 31 {
		t.Fatalf("expected 31 names, got %d", len(names))
	}

	degraded := New(nil, nil, nil, "")
	if degraded.FeatureNames() != nil {
		t.Fatalf("expected nil names in degraded mode")
	}
}
