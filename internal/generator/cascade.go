package generator

import (
	"math/rand"

	"github.com/miradorstack/mirador-predict/internal/models"
	"github.com/miradorstack/mirador-predict/internal/topology"
)

// Cascade generates the unambiguous positive class: multi-service failures
// propagating along the dependency graph. Three sub-scenarios are drawn
// uniformly; every row is labelled as an incident.
//
// Blast radii are computed from the topology (TransitiveDependents and
// direct dependents of the failure origin) rather than hardcoded per
// service, so a new topology changes the cascade shape without new
// branches here.
type Cascade struct {
	topo   *topology.ServiceTopology
	origin string
}

// Cascade sub-scenario names, drawn uniformly per row.
const (
	scenarioDatabaseDown    = "database_down"
	scenarioPartialCascade  = "partial_cascade"
	scenarioCompleteFailure = "complete_failure"
)

// NewCascade constructs the cascade generator. origin names the service
// whose failure starts the cascade; for the default topology this is the
// shared database at the bottom of the chain.
func NewCascade(topo *topology.ServiceTopology, origin string) *Cascade {
	return &Cascade{topo: topo, origin: origin}
}

// Name implements Generator.
func (g *Cascade) Name() string { return "cascade_failure" }

// Row implements Generator.
func (g *Cascade) Row(rng *rand.Rand) models.ScenarioRow {
	row := newRow(rng)

	scenarios := [...]string{scenarioDatabaseDown, scenarioPartialCascade, scenarioCompleteFailure}
	switch scenarios[rng.Intn(len(scenarios))] {
	case scenarioDatabaseDown:
		g.originDown(rng, row)
	case scenarioPartialCascade:
		g.partialCascade(rng, row)
	default:
		g.completeFailure(rng, row)
	}

	// Extreme topology features keep the derived signals consistent with
	// the per-service outage profile and the positive label.
	models.TopologyFeatures{
		DependencyHealthScore: uniform(rng, 0, 30),
		CascadeRisk:           uniform(rng, 0.6, 1.0),
		SLOViolationCount:     float64(uniformInt(rng, 12, 16)),
		CriticalPathLatency:   models.MaxLatencyMillis,
	}.Flatten(row)

	return models.ScenarioRow{Features: row, Label: 1}
}

// originDown models the failure origin saturated to its extremes and every
// transitive dependent forced to total outage.
func (g *Cascade) originDown(rng *rand.Rand, row map[string]float64) {
	down := models.MetricSample{
		CPU:          uniform(rng, 30, 50),
		Memory:       uniform(rng, 35, 55),
		Latency:      uniform(rng, 1000, models.MaxLatencyMillis),
		Availability: uniform(rng, 0, 60),
		ErrorRate:    uniform(rng, 40, 100),
		Throughput:   uniform(rng, 0, 50),
	}
	down.Flatten(topology.FeaturePrefix(g.origin), row)

	for _, svc := range g.topo.TransitiveDependents(g.origin) {
		outage := models.Outage(uniform(rng, 20, 50), uniform(rng, 30, 55))
		outage.Flatten(topology.FeaturePrefix(svc), row)
	}
}

// partialCascade models a degraded origin with the blast radius contained:
// exactly one direct dependent is taken out, its sibling is stressed, and
// the entrypoints above are severely degraded but still serving.
func (g *Cascade) partialCascade(rng *rand.Rand, row map[string]float64) {
	degradedOrigin := models.MetricSample{
		CPU:          uniform(rng, 80, 95),
		Memory:       uniform(rng, 75, 90),
		Latency:      uniform(rng, 800, 1500),
		Availability: uniform(rng, 70, 85),
		ErrorRate:    uniform(rng, 10, 30),
		Throughput:   uniform(rng, 30, 70),
	}
	degradedOrigin.Flatten(topology.FeaturePrefix(g.origin), row)

	direct := g.topo.DependentsOf(g.origin)
	downIdx := 0
	if len(direct) > 1 {
		downIdx = rng.Intn(len(direct))
	}
	seen := make(map[string]bool, len(direct))
	for i, svc := range direct {
		seen[svc] = true
		var sample models.MetricSample
		if i == downIdx {
			sample = models.Outage(uniform(rng, 20, 40), uniform(rng, 30, 50))
		} else {
			sample = models.MetricSample{
				CPU:          uniform(rng, 70, 90),
				Memory:       uniform(rng, 65, 85),
				Latency:      uniform(rng, 500, 1200),
				Availability: uniform(rng, 80, 95),
				ErrorRate:    uniform(rng, 5, 20),
				Throughput:   uniform(rng, 40, 80),
			}
		}
		sample.Flatten(topology.FeaturePrefix(svc), row)
	}

	// Everything further up the chain is severely degraded but not down.
	for _, svc := range g.topo.TransitiveDependents(g.origin) {
		if seen[svc] {
			continue
		}
		severe := models.MetricSample{
			CPU:          uniform(rng, 80, 95),
			Memory:       uniform(rng, 75, 90),
			Latency:      uniform(rng, 1000, models.MaxLatencyMillis),
			Availability: uniform(rng, 50, 80),
			ErrorRate:    uniform(rng, 30, 70),
			Throughput:   uniform(rng, 10, 50),
		}
		severe.Flatten(topology.FeaturePrefix(svc), row)
	}
}

// completeFailure forces every service to the outage profile: full
// platform collapse.
func (g *Cascade) completeFailure(rng *rand.Rand, row map[string]float64) {
	for _, svc := range g.topo.Services() {
		outage := models.Outage(uniform(rng, 10, 40), uniform(rng, 20, 50))
		outage.Flatten(topology.FeaturePrefix(svc), row)
	}
}
