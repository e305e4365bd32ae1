package generator

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/miradorstack/mirador-predict/internal/features"
	"github.com/miradorstack/mirador-predict/internal/models"
	"github.com/miradorstack/mirador-predict/internal/topology"
)

func allGenerators() []Generator {
	topo := topology.Default()
	return []Generator{
		NewNormal(topo),
		NewDegraded(topo),
		NewCascade(topo, "database"),
		NewNearFailure(topo, "database"),
	}
}

func TestNormalNeverLabelsIncident(t *testing.T) {
	g := NewNormal(topology.Default())
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		if row := g.Row(rng); row.Label != 0 {
			t.Fatalf("row %d: normal generator produced incident label", i)
		}
	}
}

func TestCascadeAlwaysLabelsIncident(t *testing.T) {
	g := NewCascade(topology.Default(), "database")
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 500; i++ {
		if row := g.Row(rng); row.Label != 1 {
			t.Fatalf("row %d: cascade generator produced non-incident label", i)
		}
	}
}

func TestMetricBoundsAcrossAllGenerators(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for _, g := range allGenerators() {
		for i := 0; i < 300; i++ {
			row := g.Row(rng)
			for name, value := range row.Features {
				switch {
				case strings.HasSuffix(name, "_availability"), strings.HasSuffix(name, "_error_rate"):
					if value < 0 || value > 100 {
						t.Fatalf("%s row %d: %s=%v out of [0,100]", g.Name(), i, name, value)
					}
				case strings.HasSuffix(name, "_latency"), name == "critical_path_latency":
					if value < 0 || value > models.MaxLatencyMillis {
						t.Fatalf("%s row %d: %s=%v out of [0,%d]", g.Name(), i, name, value, models.MaxLatencyMillis)
					}
				case strings.HasSuffix(name, "_throughput"):
					if value < 0 {
						t.Fatalf("%s row %d: %s=%v negative", g.Name(), i, name, value)
					}
				case name == "cascade_risk":
					if value < 0 || value > 1 {
						t.Fatalf("%s row %d: cascade_risk=%v out of [0,1]", g.Name(), i, value)
					}
				}
			}
		}
	}
}

func TestRowsCoverFullSchema(t *testing.T) {
	topo := topology.Default()
	schema := features.ForTopology(topo)
	rng := rand.New(rand.NewSource(4))

	for _, g := range allGenerators() {
		for i := 0; i < 50; i++ {
			row := g.Row(rng)
			if len(row.Features) != schema.Len() {
				t.Fatalf("%s row %d: %d features, schema has %d", g.Name(), i, len(row.Features), schema.Len())
			}
			for _, name := range schema.Names() {
				if _, ok := row.Features[name]; !ok {
					t.Fatalf("%s row %d: missing feature %s", g.Name(), i, name)
				}
			}
		}
	}
}

func TestCascadeOriginDownPropagates(t *testing.T) {
	topo := topology.Default()
	g := NewCascade(topo, "database")
	rng := rand.New(rand.NewSource(5))

	// Sample until each sub-scenario has shown up; any origin-down row must
	// have every dependent of the database at the total-outage profile.
	sawOutagePropagation := false
	for i := 0; i < 400 && !sawOutagePropagation; i++ {
		row := g.Row(rng)
		if row.Features["database_availability"] >= 60 {
			continue
		}
		if row.Features["api_gateway_availability"] != 0 {
			continue
		}
		sawOutagePropagation = true
		for _, svc := range topo.TransitiveDependents("database") {
			prefix := topology.FeaturePrefix(svc)
			if row.Features[prefix+"_availability"] != 0 {
				t.Fatalf("%s availability not forced to 0", svc)
			}
			if row.Features[prefix+"_error_rate"] != 100 {
				t.Fatalf("%s error_rate not forced to 100", svc)
			}
			if row.Features[prefix+"_latency"] != models.MaxLatencyMillis {
				t.Fatalf("%s latency not forced to cap", svc)
			}
			if row.Features[prefix+"_throughput"] != 0 {
				t.Fatalf("%s throughput not forced to 0", svc)
			}
		}
	}
	if !sawOutagePropagation {
		t.Fatalf("never sampled a full origin-down cascade")
	}
}

func TestNearFailureAvoidsSaturation(t *testing.T) {
	g := NewNearFailure(topology.Default(), "database")
	rng := rand.New(rand.NewSource(6))

	for i := 0; i < 300; i++ {
		row := g.Row(rng)
		for name, value := range row.Features {
			if strings.HasSuffix(name, "_availability") && value == 0 {
				t.Fatalf("row %d: %s saturated to 0", i, name)
			}
			if strings.HasSuffix(name, "_error_rate") && value == 100 {
				t.Fatalf("row %d: %s saturated to 100", i, name)
			}
		}
	}
}
