package generator

import (
	"math/rand"

	"github.com/miradorstack/mirador-predict/internal/models"
	"github.com/miradorstack/mirador-predict/internal/topology"
)

// NearFailure generates the moments right before a cascade: every service
// under heavy stress, none saturated to an outage extreme. Incident with
// p=0.8: the system usually, but not always, tips over from here.
type NearFailure struct {
	topo   *topology.ServiceTopology
	origin string
}

// NewNearFailure constructs the imminent-failure generator. origin is the
// service whose stress is most pronounced (the shared dependency at the
// bottom of the chain in the default topology).
func NewNearFailure(topo *topology.ServiceTopology, origin string) *NearFailure {
	return &NearFailure{topo: topo, origin: origin}
}

// Name implements Generator.
func (g *NearFailure) Name() string { return "near_failure" }

// Row implements Generator.
func (g *NearFailure) Row(rng *rand.Rand) models.ScenarioRow {
	row := newRow(rng)

	roots := make(map[string]bool)
	for _, svc := range g.topo.Roots() {
		roots[svc] = true
	}

	for _, svc := range g.topo.Services() {
		var sample models.MetricSample
		switch {
		case svc == g.origin:
			// The shared dependency is closest to the edge.
			sample = models.MetricSample{
				CPU:          uniform(rng, 85, 98),
				Memory:       uniform(rng, 85, 95),
				Latency:      uniform(rng, 800, 1800),
				Availability: uniform(rng, 75, 90),
				ErrorRate:    uniform(rng, 8, 25),
				Throughput:   uniform(rng, 40, 70),
			}
		case roots[svc]:
			// Entrypoints absorb the back-pressure.
			sample = models.MetricSample{
				CPU:          uniform(rng, 75, 92),
				Memory:       uniform(rng, 70, 88),
				Latency:      uniform(rng, 600, 1500),
				Availability: uniform(rng, 88, 96),
				ErrorRate:    uniform(rng, 5, 15),
				Throughput:   uniform(rng, 50, 80),
			}
		default:
			sample = models.MetricSample{
				CPU:          uniform(rng, 70, 90),
				Memory:       uniform(rng, 65, 85),
				Latency:      uniform(rng, 400, 1200),
				Availability: uniform(rng, 90, 97),
				ErrorRate:    uniform(rng, 3, 10),
				Throughput:   uniform(rng, 60, 90),
			}
		}
		sample.Flatten(topology.FeaturePrefix(svc), row)
	}

	models.TopologyFeatures{
		DependencyHealthScore: uniform(rng, 40, 70),
		CascadeRisk:           uniform(rng, 0.5, 0.8),
		SLOViolationCount:     float64(uniformInt(rng, 6, 12)),
		CriticalPathLatency:   uniform(rng, 800, 1800),
	}.Flatten(row)

	label := 0
	if rng.Float64() > 0.2 {
		label = 1
	}
	return models.ScenarioRow{Features: row, Label: label}
}
