package simulator

import (
	"math"

	"github.com/miradorstack/mirador-predict/internal/interpreter"
	"github.com/miradorstack/mirador-predict/internal/models"
)

// FallbackVersion tags heuristic predictions so callers can tell them
// apart from model output.
const FallbackVersion = "fallback_v1"

// FallbackPrediction produces a threshold-based estimate from live state
// when the trained model is unavailable. Service may name a single service
// or be empty for a system-wide estimate. The heuristic is deliberately
// crude; it only exists so the dashboard keeps working in degraded mode.
func (s *Simulator) FallbackPrediction(service string) models.PredictionResult {
	s.mu.RLock()
	state, ok := s.states[service]
	if !ok {
		defer s.mu.RUnlock()
		return s.systemPredictionLocked()
	}
	snapshot := *state
	s.mu.RUnlock()

	prob := 0.1
	incidentType := models.IncidentUnknown

	if snapshot.Status == StatusDown {
		prob = 0.99
		incidentType = "service_failure"
	} else {
		if snapshot.CPU > 85 {
			prob += 0.3
			incidentType = "cpu_overload"
		}
		if snapshot.Memory > 90 {
			prob += 0.3
			incidentType = "memory_leak"
		}
		if snapshot.ErrorRate > 5 {
			prob += 0.2
			incidentType = "high_errors"
		}
		if snapshot.Latency > 1000 {
			prob += 0.2
			incidentType = models.IncidentHighLatency
		}
	}

	prob = math.Min(prob, 1.0)
	level, recommendation := interpreter.Level(prob)

	label := 0
	if prob >= 0.5 {
		label = 1
	}
	return models.PredictionResult{
		IncidentProbability: prob,
		PredictedLabel:      label,
		Confidence:          0.75,
		RiskLevel:           level,
		IncidentType:        incidentType,
		Recommendation:      recommendation,
		ModelVersion:        FallbackVersion,
	}
}

func (s *Simulator) systemPredictionLocked() models.PredictionResult {
	avgCPU := 0.0
	avgErrorRate := 0.0
	anyDown := false
	count := 0.0

	for _, state := range s.states {
		avgCPU += state.CPU
		avgErrorRate += state.ErrorRate
		count++
		if state.Status == StatusDown {
			anyDown = true
		}
	}
	if count > 0 {
		avgCPU /= count
		avgErrorRate /= count
	}

	prob := 0.1
	if anyDown {
		prob = 0.95
	} else if avgCPU > 70 || avgErrorRate > 3 {
		prob = 0.5
	}

	level, recommendation := interpreter.Level(prob)
	label := 0
	if prob >= 0.5 {
		label = 1
	}
	return models.PredictionResult{
		IncidentProbability: prob,
		PredictedLabel:      label,
		Confidence:          0.80,
		RiskLevel:           level,
		IncidentType:        models.IncidentUnknown,
		Recommendation:      recommendation,
		ModelVersion:        FallbackVersion,
	}
}
