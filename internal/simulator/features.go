package simulator

import (
	"math"
	"time"

	"github.com/miradorstack/mirador-predict/internal/models"
	"github.com/miradorstack/mirador-predict/internal/topology"
	"github.com/miradorstack/mirador-predict/internal/utils"
)

// SLO targets the violation counter checks every service against.
const (
	sloLatencyMillis = 500
	sloAvailability  = 99.9
	sloErrorRate     = 1.0
	sloThroughput    = 100
)

// FeatureSnapshot flattens the current live state into the feature map the
// model expects: time context, per-service metrics, and the derived
// topology features.
func (s *Simulator) FeatureSnapshot(now time.Time) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float64, 32)

	models.TimeContext{
		HourOfDay:  now.Hour(),
		IsPeakHour: int(utils.BinaryFlag(utils.IsPeakHour(now))),
		IsWeekend:  int(utils.BinaryFlag(utils.IsWeekend(now))),
	}.Flatten(out)

	for name, state := range s.states {
		models.MetricSample{
			CPU:          state.CPU,
			Memory:       state.Memory,
			Latency:      state.Latency,
			Availability: state.Availability,
			ErrorRate:    state.ErrorRate,
			Throughput:   state.Throughput,
		}.Flatten(topology.FeaturePrefix(name), out)
	}

	models.TopologyFeatures{
		DependencyHealthScore: s.dependencyHealthLocked(),
		CascadeRisk:           s.cascadeRiskLocked(),
		SLOViolationCount:     float64(s.sloViolationsLocked()),
		CriticalPathLatency:   s.criticalPathLatencyLocked(),
	}.Flatten(out)

	return out
}

// dependencyHealthLocked averages availability across the topology; a down
// service contributes zero.
func (s *Simulator) dependencyHealthLocked() float64 {
	total := 0.0
	count := 0.0
	for _, state := range s.states {
		if state.Status != StatusDown {
			total += state.Availability
		}
		count++
	}
	if count == 0 {
		return 99.9
	}
	return total / count
}

// cascadeRiskLocked estimates how close the shared leaf dependencies are
// to dragging the stack down with them.
func (s *Simulator) cascadeRiskLocked() float64 {
	risk := 0.0
	for _, leaf := range s.topo.Leaves() {
		state, ok := s.states[leaf]
		if !ok {
			continue
		}
		if state.Status == StatusDown || state.Availability == 0 {
			return 1.0
		}
		if state.CPU > 80 {
			risk += 0.4
		}
		if state.ErrorRate > 5 {
			risk += 0.3
		}
		if state.Availability < 95 {
			risk += 0.3
		}
	}
	return math.Min(risk, 1.0)
}

// sloViolationsLocked counts SLO breaches across all services; each metric
// breach counts separately, matching how the training rows were labelled.
func (s *Simulator) sloViolationsLocked() int {
	violations := 0
	for _, state := range s.states {
		if state.Latency > sloLatencyMillis {
			violations++
		}
		if state.Availability < sloAvailability {
			violations++
		}
		if state.ErrorRate > sloErrorRate {
			violations++
		}
		if state.Throughput < sloThroughput {
			violations++
		}
	}
	return violations
}

func (s *Simulator) criticalPathLatencyLocked() float64 {
	max := 0.0
	for _, state := range s.states {
		if state.Latency > max {
			max = state.Latency
		}
	}
	return math.Min(max, models.MaxLatencyMillis)
}
