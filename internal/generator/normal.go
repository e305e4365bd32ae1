package generator

import (
	"math/rand"

	"github.com/miradorstack/mirador-predict/internal/models"
	"github.com/miradorstack/mirador-predict/internal/topology"
)

// Normal generates rows where every service is healthy. The label is
// always 0: this scenario defines the unambiguous negative class.
type Normal struct {
	topo *topology.ServiceTopology
}

// NewNormal constructs the healthy-operations generator.
func NewNormal(topo *topology.ServiceTopology) *Normal {
	return &Normal{topo: topo}
}

// Name implements Generator.
func (g *Normal) Name() string { return "normal" }

// Row implements Generator.
func (g *Normal) Row(rng *rand.Rand) models.ScenarioRow {
	row := newRow(rng)

	for _, svc := range g.topo.Services() {
		sample := models.MetricSample{
			CPU:          uniform(rng, 20, 70),
			Memory:       uniform(rng, 30, 65),
			Latency:      uniform(rng, 100, 400),
			Availability: uniform(rng, 98, 100),
			ErrorRate:    uniform(rng, 0, 2),
			Throughput:   uniform(rng, 80, 150),
		}
		sample.Flatten(topology.FeaturePrefix(svc), row)
	}

	models.TopologyFeatures{
		DependencyHealthScore: uniform(rng, 95, 100),
		CascadeRisk:           uniform(rng, 0, 0.2),
		SLOViolationCount:     float64(uniformInt(rng, 0, 2)),
		CriticalPathLatency:   uniform(rng, 100, 500),
	}.Flatten(row)

	return models.ScenarioRow{Features: row, Label: 0}
}
