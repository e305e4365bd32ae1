package generator

import (
	"math/rand"

	"github.com/miradorstack/mirador-predict/internal/models"
	"github.com/miradorstack/mirador-predict/internal/topology"
)

// Degraded generates rows where a single uniformly chosen service is under
// stress while the rest are mildly affected. Labels are deliberately noisy
// (incident with p=0.5): this is the borderline class the model has to
// learn to separate from both healthy traffic and real cascades.
type Degraded struct {
	topo *topology.ServiceTopology
}

// NewDegraded constructs the single-service-stress generator.
func NewDegraded(topo *topology.ServiceTopology) *Degraded {
	return &Degraded{topo: topo}
}

// Name implements Generator.
func (g *Degraded) Name() string { return "degraded" }

// Row implements Generator.
func (g *Degraded) Row(rng *rand.Rand) models.ScenarioRow {
	row := newRow(rng)

	services := g.topo.Services()
	degraded := services[rng.Intn(len(services))]

	for _, svc := range services {
		var sample models.MetricSample
		if svc == degraded {
			sample = models.MetricSample{
				CPU:          uniform(rng, 75, 95),
				Memory:       uniform(rng, 70, 90),
				Latency:      uniform(rng, 500, 1500),
				Availability: uniform(rng, 85, 95),
				ErrorRate:    uniform(rng, 5, 15),
				Throughput:   uniform(rng, 40, 80),
			}
		} else {
			sample = models.MetricSample{
				CPU:          uniform(rng, 40, 75),
				Memory:       uniform(rng, 40, 70),
				Latency:      uniform(rng, 200, 600),
				Availability: uniform(rng, 95, 99),
				ErrorRate:    uniform(rng, 1, 5),
				Throughput:   uniform(rng, 70, 120),
			}
		}
		sample.Flatten(topology.FeaturePrefix(svc), row)
	}

	models.TopologyFeatures{
		DependencyHealthScore: uniform(rng, 70, 90),
		CascadeRisk:           uniform(rng, 0.3, 0.6),
		SLOViolationCount:     float64(uniformInt(rng, 2, 8)),
		CriticalPathLatency:   uniform(rng, 500, 1500),
	}.Flatten(row)

	label := 0
	if rng.Float64() > 0.5 {
		label = 1
	}
	return models.ScenarioRow{Features: row, Label: label}
}
