// Package interpreter turns a model probability and raw request metrics
// into operator-facing output: a four-tier risk level with a fixed
// recommendation, and a rule-attributed incident type.
//
// The two functions are deliberately independent. Risk level follows the
// opaque model; incident type follows auditable threshold rules over raw
// metrics. They can disagree (an "unknown" type at "critical" risk is
// possible); that inconsistency is expected, not a bug.
package interpreter

import "github.com/miradorstack/mirador-predict/internal/models"

// Risk tier thresholds; intervals are half-open with the lower bound
// inclusive, so a probability of exactly 0.3 is medium, 0.6 high, 0.8
// critical.
const (
	mediumThreshold   = 0.3
	highThreshold     = 0.6
	criticalThreshold = 0.8
)

// Attribution thresholds over raw metrics, evaluated in fixed priority
// order. First match wins.
const (
	databaseCPUThreshold    = 80
	gatewayLatencyThreshold = 1000
	sloViolationThreshold   = 5
)

// Level maps an incident probability to its risk tier and the tier's
// fixed recommendation.
func Level(pIncident float64) (models.RiskLevel, string) {
	switch {
	case pIncident < mediumThreshold:
		return models.RiskLow, "System stable. Continue monitoring."
	case pIncident < highThreshold:
		return models.RiskMedium, "Increased risk detected. Review metrics and prepare for scaling."
	case pIncident < criticalThreshold:
		return models.RiskHigh, "High risk! Scale up resources immediately."
	default:
		return models.RiskCritical, "CRITICAL! Incident imminent. Execute incident response plan NOW."
	}
}

// AttributeIncident classifies the most likely incident type from raw
// request metrics (not model output) via a first-match priority chain:
// database CPU, then gateway latency, then SLO violations. Metrics absent
// from the request never match.
func AttributeIncident(raw map[string]float64) models.IncidentType {
	if v, ok := raw["database_cpu"]; ok && v > databaseCPUThreshold {
		return models.IncidentDatabaseOverload
	}
	if v, ok := raw["api_gateway_latency"]; ok && v > gatewayLatencyThreshold {
		return models.IncidentHighLatency
	}
	if v, ok := raw["slo_violation_count"]; ok && v > sloViolationThreshold {
		return models.IncidentSLOBreach
	}
	return models.IncidentUnknown
}
