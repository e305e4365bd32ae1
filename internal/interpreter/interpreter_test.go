package interpreter

import (
	"testing"

	"github.com/miradorstack/mirador-predict/internal/models"
)

func TestLevelBoundaries(t *testing.T) {
	cases := []struct {
		p    float64
		want models.RiskLevel
	}{
		{0, models.RiskLow},
		{0.29999, models.RiskLow},
		{0.3, models.RiskMedium}, // lower bound inclusive
		{0.59999, models.RiskMedium},
		{0.6, models.RiskHigh},
		{0.79999, models.RiskHigh},
		{0.8, models.RiskCritical},
		{1.0, models.RiskCritical},
	}
	for _, tc := range cases {
		level, rec := Level(tc.p)
		if level != tc.want {
			t.Fatalf("p=%v: expected %s, got %s", tc.p, tc.want, level)
		}
		if rec == "" {
			t.Fatalf("p=%v: empty recommendation", tc.p)
		}
	}
}

func TestAttributePriorityOrder(t *testing.T) {
	// Both database CPU and gateway latency over threshold: the chain must
	// stop at the first match.
	raw := map[string]float64{
		"database_cpu":        90,
		"api_gateway_latency": 1500,
	}
	if got := AttributeIncident(raw); got != models.IncidentDatabaseOverload {
		t.Fatalf("expected database_overload, got %s", got)
	}
}

func TestAttributeChain(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]float64
		want models.IncidentType
	}{
		{"gateway latency", map[string]float64{"api_gateway_latency": 1200}, models.IncidentHighLatency},
		{"slo breach", map[string]float64{"slo_violation_count": 6}, models.IncidentSLOBreach},
		{"thresholds are strict", map[string]float64{"database_cpu": 80, "api_gateway_latency": 1000, "slo_violation_count": 5}, models.IncidentUnknown},
		{"empty request", map[string]float64{}, models.IncidentUnknown},
		{"nil request", nil, models.IncidentUnknown},
	}
	for _, tc := range cases {
		if got := AttributeIncident(tc.raw); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}
