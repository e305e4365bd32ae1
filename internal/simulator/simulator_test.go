package simulator

import (
	"testing"
	"time"

	"github.com/miradorstack/mirador-predict/internal/features"
	"github.com/miradorstack/mirador-predict/internal/models"
	"github.com/miradorstack/mirador-predict/internal/topology"
)

func newTestSimulator() *Simulator {
	return New(nil, topology.Default(), 1)
}

func TestInitialStateHealthy(t *testing.T) {
	sim := newTestSimulator()

	snapshot := sim.Snapshot()
	if len(snapshot) != 4 {
		t.Fatalf("expected 4 services, got %d", len(snapshot))
	}
	for name, state := range snapshot {
		if state.Status != StatusHealthy {
			t.Fatalf("%s not healthy at start: %s", name, state.Status)
		}
	}
}

func TestServiceKillCascades(t *testing.T) {
	sim := newTestSimulator()

	if err := sim.InjectChaos("database", ChaosServiceKill, 60); err != nil {
		t.Fatalf("inject chaos: %v", err)
	}

	snapshot := sim.Snapshot()
	for _, name := range []string{"database", "auth-service", "user-service", "api-gateway"} {
		state := snapshot[name]
		if state.Status != StatusDown {
			t.Fatalf("%s expected down, got %s", name, state.Status)
		}
		if state.Availability != 0 || state.ErrorRate != 100 {
			t.Fatalf("%s not at outage profile: %+v", name, state)
		}
		if state.Latency != models.MaxLatencyMillis {
			t.Fatalf("%s latency not capped: %v", name, state.Latency)
		}
	}
}

func TestKillLeafServiceDoesNotCascadeDown(t *testing.T) {
	sim := newTestSimulator()

	// api-gateway has no dependents; killing it must leave the rest up.
	if err := sim.InjectChaos("api-gateway", ChaosServiceKill, 60); err != nil {
		t.Fatalf("inject chaos: %v", err)
	}

	snapshot := sim.Snapshot()
	if snapshot["api-gateway"].Status != StatusDown {
		t.Fatalf("api-gateway should be down")
	}
	for _, name := range []string{"database", "auth-service", "user-service"} {
		if snapshot[name].Status == StatusDown {
			t.Fatalf("%s should not be affected by a gateway kill", name)
		}
	}
}

func TestResetRestoresHealth(t *testing.T) {
	sim := newTestSimulator()

	if err := sim.InjectChaos("database", ChaosServiceKill, 60); err != nil {
		t.Fatalf("inject chaos: %v", err)
	}
	sim.Reset()

	for name, state := range sim.Snapshot() {
		if state.Status != StatusHealthy {
			t.Fatalf("%s not healthy after reset: %s", name, state.Status)
		}
		if state.ActiveChaos != nil {
			t.Fatalf("%s chaos survived reset", name)
		}
	}
}

func TestInjectChaosUnknownService(t *testing.T) {
	sim := newTestSimulator()
	if err := sim.InjectChaos("payments", ChaosCPUSpike, 10); err == nil {
		t.Fatalf("expected error for unknown service")
	}
	if err := sim.InjectChaos("database", "unplug_everything", 10); err == nil {
		t.Fatalf("expected error for unknown chaos type")
	}
}

func TestFeatureSnapshotCoversSchema(t *testing.T) {
	sim := newTestSimulator()
	schema := features.ForTopology(topology.Default())

	snap := sim.FeatureSnapshot(time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC))
	for _, name := range schema.Names() {
		if _, ok := snap[name]; !ok {
			t.Fatalf("snapshot missing feature %s", name)
		}
	}
	if snap["is_peak_hour"] != 1 {
		t.Fatalf("14:00 Monday should be peak hour")
	}
	if snap["is_weekend"] != 0 {
		t.Fatalf("Monday is not a weekend")
	}
}

func TestDerivedFeaturesReactToOutage(t *testing.T) {
	sim := newTestSimulator()

	before := sim.FeatureSnapshot(time.Now())
	if before["cascade_risk"] != 0 {
		t.Fatalf("healthy stack should carry no cascade risk, got %v", before["cascade_risk"])
	}

	if err := sim.InjectChaos("database", ChaosServiceKill, 60); err != nil {
		t.Fatalf("inject chaos: %v", err)
	}
	after := sim.FeatureSnapshot(time.Now())
	if after["cascade_risk"] != 1 {
		t.Fatalf("database outage should force cascade risk to 1, got %v", after["cascade_risk"])
	}
	if after["critical_path_latency"] != models.MaxLatencyMillis {
		t.Fatalf("critical path latency should saturate, got %v", after["critical_path_latency"])
	}
	if after["dependency_health_score"] >= before["dependency_health_score"] {
		t.Fatalf("dependency health should collapse after outage")
	}
	if after["slo_violation_count"] < 12 {
		t.Fatalf("full outage should breach most SLOs, got %v", after["slo_violation_count"])
	}
}

func TestFallbackPrediction(t *testing.T) {
	sim := newTestSimulator()

	healthy := sim.FallbackPrediction("database")
	if healthy.RiskLevel != models.RiskLow {
		t.Fatalf("healthy database should be low risk, got %s", healthy.RiskLevel)
	}
	if healthy.ModelVersion != FallbackVersion {
		t.Fatalf("fallback must be tagged, got %s", healthy.ModelVersion)
	}

	if err := sim.InjectChaos("database", ChaosServiceKill, 60); err != nil {
		t.Fatalf("inject chaos: %v", err)
	}
	down := sim.FallbackPrediction("database")
	if down.RiskLevel != models.RiskCritical || down.PredictedLabel != 1 {
		t.Fatalf("down database should be critical: %+v", down)
	}

	system := sim.FallbackPrediction("")
	if system.RiskLevel != models.RiskCritical {
		t.Fatalf("system estimate should be critical with a down service, got %s", system.RiskLevel)
	}
}

func TestTickJitterStaysInBounds(t *testing.T) {
	sim := newTestSimulator()

	now := time.Now()
	for i := 0; i < 200; i++ {
		sim.Tick(now)
	}
	for name, state := range sim.Snapshot() {
		if state.CPU < 10 || state.CPU > 100 {
			t.Fatalf("%s cpu out of bounds: %v", name, state.CPU)
		}
		if state.Latency < 50 || state.Latency > models.MaxLatencyMillis {
			t.Fatalf("%s latency out of bounds: %v", name, state.Latency)
		}
	}
}

func TestStaleRecoveryLeavesNewerChaosActive(t *testing.T) {
	sim := newTestSimulator()

	if err := sim.InjectChaos("database", ChaosMemoryLeak, 60); err != nil {
		t.Fatalf("first injection: %v", err)
	}
	if err := sim.InjectChaos("database", ChaosMemoryLeak, 60); err != nil {
		t.Fatalf("second injection: %v", err)
	}

	// The first injection's recovery fires mid-window for the second fault
	// and must leave it untouched.
	sim.recover("database", 1)
	state := sim.Snapshot()["database"]
	if state.ActiveChaos == nil {
		t.Fatal("stale recovery cleared the active fault")
	}

	sim.recover("database", 2)
	state = sim.Snapshot()["database"]
	if state.ActiveChaos != nil {
		t.Fatalf("current recovery left chaos active: %+v", state.ActiveChaos)
	}
	if state.Status != StatusHealthy {
		t.Fatalf("expected healthy after recovery, got %s", state.Status)
	}
}
