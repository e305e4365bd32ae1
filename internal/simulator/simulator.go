// Package simulator runs a live in-memory model of the service topology:
// jittered telemetry on a ticker, chaos injection with auto-recovery, and
// feature snapshots for the prediction service. It exists so the dashboard
// and the model can be exercised without a real platform behind them.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/miradorstack/mirador-predict/internal/models"
	"github.com/miradorstack/mirador-predict/internal/topology"
)

// Service status values derived from current metrics.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
	StatusDown     = "down"
)

// Chaos types accepted by InjectChaos.
const (
	ChaosCPUSpike       = "cpu_spike"
	ChaosMemoryLeak     = "memory_leak"
	ChaosNetworkLatency = "network_latency"
	ChaosServiceKill    = "service_kill"
)

// Chaos describes an active fault injection on one service.
type Chaos struct {
	Type     string `json:"type"`
	Duration int    `json:"duration"`
	EndTime  int64  `json:"end_time"`
}

// ServiceState is one service's live telemetry plus its status and any
// active chaos. Values returned from Snapshot are copies.
type ServiceState struct {
	Name         string   `json:"name"`
	CPU          float64  `json:"cpu"`
	Memory       float64  `json:"memory"`
	Latency      float64  `json:"latency"`
	Availability float64  `json:"availability"`
	ErrorRate    float64  `json:"error_rate"`
	Throughput   float64  `json:"throughput"`
	Status       string   `json:"status"`
	Dependencies []string `json:"dependencies"`
	ActiveChaos  *Chaos   `json:"active_chaos,omitempty"`
}

// Simulator holds the mutable live state. All access goes through the
// mutex; the topology and baselines are read-only.
type Simulator struct {
	logger *slog.Logger
	topo   *topology.ServiceTopology

	mu     sync.RWMutex
	states map[string]*ServiceState
	rng    *rand.Rand

	// chaosGen counts injections per service. Auto-recovery goroutines
	// carry the generation they were spawned for; a stale generation means
	// a newer fault owns the service and the recovery must not fire.
	chaosGen map[string]uint64

	// onChange, when set, is invoked with a fresh snapshot after every
	// state transition (tick, chaos, recovery, reset).
	onChange func(map[string]ServiceState)
}

type baseline struct {
	cpu, memory, latency, availability, errorRate, throughput float64
}

var baselines = map[string]baseline{
	"api-gateway":  {cpu: 35, memory: 45, latency: 250, availability: 99.9, errorRate: 0.5, throughput: 120},
	"auth-service": {cpu: 30, memory: 40, latency: 150, availability: 99.8, errorRate: 0.8, throughput: 110},
	"user-service": {cpu: 25, memory: 35, latency: 120, availability: 99.9, errorRate: 0.3, throughput: 115},
	"database":     {cpu: 40, memory: 60, latency: 180, availability: 99.95, errorRate: 0.2, throughput: 100},
}

var defaultBaseline = baseline{cpu: 30, memory: 40, latency: 150, availability: 99.9, errorRate: 0.5, throughput: 110}

// New constructs a simulator with every service healthy at its baseline.
func New(logger *slog.Logger, topo *topology.ServiceTopology, seed int64) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Simulator{
		logger:   logger,
		topo:     topo,
		states:   make(map[string]*ServiceState, len(topo.Services())),
		rng:      rand.New(rand.NewSource(seed)),
		chaosGen: make(map[string]uint64),
	}
	for _, svc := range topo.Services() {
		b, ok := baselines[svc]
		if !ok {
			b = defaultBaseline
		}
		s.states[svc] = &ServiceState{
			Name:         svc,
			CPU:          b.cpu,
			Memory:       b.memory,
			Latency:      b.latency,
			Availability: b.availability,
			ErrorRate:    b.errorRate,
			Throughput:   b.throughput,
			Status:       StatusHealthy,
			Dependencies: topo.DependsOn(svc),
		}
	}
	return s
}

// OnChange registers the broadcast callback. Must be called before Run.
func (s *Simulator) OnChange(fn func(map[string]ServiceState)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Snapshot returns a copy of every service's current state.
func (s *Simulator) Snapshot() map[string]ServiceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Simulator) snapshotLocked() map[string]ServiceState {
	out := make(map[string]ServiceState, len(s.states))
	for name, state := range s.states {
		copied := *state
		copied.Dependencies = append([]string(nil), state.Dependencies...)
		if state.ActiveChaos != nil {
			chaos := *state.ActiveChaos
			copied.ActiveChaos = &chaos
		}
		out[name] = copied
	}
	return out
}

func (s *Simulator) notify(snapshot map[string]ServiceState) {
	if s.onChange != nil {
		s.onChange(snapshot)
	}
}

// Run advances the simulation on the given interval until ctx is done.
func (s *Simulator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(time.Now())
		}
	}
}

// Tick applies one step of metric jitter, expires finished chaos, and
// re-derives statuses.
func (s *Simulator) Tick(now time.Time) {
	s.mu.Lock()
	for _, state := range s.states {
		if state.ActiveChaos != nil && now.Unix() > state.ActiveChaos.EndTime {
			state.ActiveChaos = nil
		}
		if state.ActiveChaos != nil || state.Status == StatusDown {
			continue
		}

		state.CPU = clamp(state.CPU+(s.rng.Float64()-0.5)*2, 10, 100)
		state.Memory = clamp(state.Memory+(s.rng.Float64()-0.5)*1.5, 20, 100)
		state.Latency = clamp(state.Latency+(s.rng.Float64()-0.5)*10, 50, models.MaxLatencyMillis)
		deriveStatus(state)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// InjectChaos applies a fault to the target service. A service_kill on a
// service other services depend on cascades the outage to every transitive
// dependent, mirroring how the training generator models propagation.
func (s *Simulator) InjectChaos(target, chaosType string, durationSec int) error {
	s.mu.Lock()
	state, ok := s.states[target]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown service %q", target)
	}
	if durationSec <= 0 {
		durationSec = 30
	}

	state.ActiveChaos = &Chaos{
		Type:     chaosType,
		Duration: durationSec,
		EndTime:  time.Now().Unix() + int64(durationSec),
	}
	s.chaosGen[target]++
	gen := s.chaosGen[target]

	switch chaosType {
	case ChaosCPUSpike:
		state.CPU = math.Min(state.CPU+30, 95)
		state.Latency = math.Min(state.Latency+200, models.MaxLatencyMillis)
	case ChaosMemoryLeak:
		state.Memory = math.Min(state.Memory+40, 95)
		state.ErrorRate = math.Min(state.ErrorRate+10, 50)
	case ChaosNetworkLatency:
		state.Latency = math.Min(state.Latency+1000, models.MaxLatencyMillis)
		state.Availability = math.Max(state.Availability-20, 50)
	case ChaosServiceKill:
		killService(state)
		for _, dependent := range s.topo.TransitiveDependents(target) {
			killService(s.states[dependent])
		}
	default:
		state.ActiveChaos = nil
		s.mu.Unlock()
		return fmt.Errorf("unknown chaos type %q", chaosType)
	}

	deriveStatus(state)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("chaos injected",
		slog.String("service", target),
		slog.String("type", chaosType),
		slog.Int("duration_sec", durationSec))
	s.notify(snapshot)

	// Recover automatically once the chaos window elapses.
	go func() {
		time.Sleep(time.Duration(durationSec) * time.Second)
		s.recover(target, gen)
	}()

	return nil
}

// recover restores the target unless a newer injection or reset has taken
// over the service since gen was issued.
func (s *Simulator) recover(target string, gen uint64) {
	s.mu.Lock()
	state, ok := s.states[target]
	if !ok || s.chaosGen[target] != gen {
		s.mu.Unlock()
		return
	}
	state.ActiveChaos = nil
	s.resetServiceLocked(target)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("service recovered", slog.String("service", target))
	s.notify(snapshot)
}

// Reset restores every service to a healthy state.
func (s *Simulator) Reset() {
	s.mu.Lock()
	for name := range s.states {
		s.resetServiceLocked(name)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// resetServiceLocked re-randomises one service around its healthy range.
// Resetting a service other services depend on also revives its transitive
// dependents: they were only down because of it.
func (s *Simulator) resetServiceLocked(name string) {
	state, ok := s.states[name]
	if !ok {
		return
	}
	wasDown := state.Status == StatusDown
	s.chaosGen[name]++

	state.CPU = 30 + s.rng.Float64()*15
	state.Memory = 35 + s.rng.Float64()*15
	state.Latency = 100 + float64(s.rng.Intn(100))
	state.Availability = 99.5 + s.rng.Float64()*0.5
	state.ErrorRate = s.rng.Float64() * 0.5
	state.Throughput = 100 + float64(s.rng.Intn(50))
	state.Status = StatusHealthy
	state.ActiveChaos = nil

	if wasDown {
		for _, dependent := range s.topo.TransitiveDependents(name) {
			if dep := s.states[dependent]; dep != nil && dep.Status == StatusDown {
				s.resetServiceLocked(dependent)
			}
		}
	}
}

func killService(state *ServiceState) {
	if state == nil {
		return
	}
	state.Status = StatusDown
	state.Availability = 0
	state.ErrorRate = 100
	state.Latency = models.MaxLatencyMillis
	state.Throughput = 0
}

func deriveStatus(state *ServiceState) {
	switch {
	case state.Availability == 0 || state.ErrorRate >= 100:
		state.Status = StatusDown
	case state.CPU > 90 || state.Memory > 90 || state.ErrorRate > 10 || state.Latency > 1000:
		state.Status = StatusDegraded
	default:
		state.Status = StatusHealthy
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
