package models

// RiskLevel is one of the four probability-derived tiers.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// IncidentType is the rule-attributed category of an impending incident.
// It is derived from raw metrics, not from the model, so it can disagree
// with the risk level; that is expected.
type IncidentType string

const (
	IncidentDatabaseOverload IncidentType = "database_overload"
	IncidentHighLatency      IncidentType = "high_latency"
	IncidentSLOBreach        IncidentType = "slo_breach"
	IncidentUnknown          IncidentType = "unknown"
)

// PredictionResult is the per-request outcome of the inference service.
// Lifetime is a single request; it is never persisted.
type PredictionResult struct {
	IncidentProbability float64
	PredictedLabel      int
	Confidence          float64
	RiskLevel           RiskLevel
	IncidentType        IncidentType
	Recommendation      string
	ModelVersion        string
	// MissingFeatures lists schema features absent from the request that
	// were defaulted to zero, so callers can tell "absent" from "zero".
	MissingFeatures []string
}
