package models

// MaxLatencyMillis is the saturation cap applied to every latency value,
// both in generated training rows and in live feature snapshots. The model
// never sees a latency above this.
const MaxLatencyMillis = 2000

// LabelColumn names the target column in generated datasets.
const LabelColumn = "will_have_incident"

// MetricSample is one service's telemetry at a single instant.
// Availability and ErrorRate are percentages in [0,100]; Latency is
// milliseconds capped at MaxLatencyMillis; the rest are non-negative.
type MetricSample struct {
	CPU          float64
	Memory       float64
	Latency      float64
	Availability float64
	ErrorRate    float64
	Throughput   float64
}

// Outage is the total-failure profile a service is forced into when a
// cascade reaches it.
func Outage(cpu, memory float64) MetricSample {
	return MetricSample{
		CPU:          cpu,
		Memory:       memory,
		Latency:      MaxLatencyMillis,
		Availability: 0,
		ErrorRate:    100,
		Throughput:   0,
	}
}

// Flatten writes the sample into dst under the conventional per-service
// feature names (<prefix>_cpu, <prefix>_memory, ...).
func (m MetricSample) Flatten(prefix string, dst map[string]float64) {
	dst[prefix+"_cpu"] = m.CPU
	dst[prefix+"_memory"] = m.Memory
	dst[prefix+"_latency"] = m.Latency
	dst[prefix+"_availability"] = m.Availability
	dst[prefix+"_error_rate"] = m.ErrorRate
	dst[prefix+"_throughput"] = m.Throughput
}

// TimeContext carries the calendar features attached to every row.
type TimeContext struct {
	HourOfDay  int
	IsPeakHour int
	IsWeekend  int
}

// Flatten writes the time features into dst.
func (t TimeContext) Flatten(dst map[string]float64) {
	dst["hour_of_day"] = float64(t.HourOfDay)
	dst["is_peak_hour"] = float64(t.IsPeakHour)
	dst["is_weekend"] = float64(t.IsWeekend)
}

// TopologyFeatures are the derived graph-level features.
type TopologyFeatures struct {
	DependencyHealthScore float64
	CascadeRisk           float64
	SLOViolationCount     float64
	CriticalPathLatency   float64
}

// Flatten writes the topology features into dst.
func (f TopologyFeatures) Flatten(dst map[string]float64) {
	dst["dependency_health_score"] = f.DependencyHealthScore
	dst["cascade_risk"] = f.CascadeRisk
	dst["slo_violation_count"] = f.SLOViolationCount
	dst["critical_path_latency"] = f.CriticalPathLatency
}

// ScenarioRow is one training example: a flattened feature map plus the
// binary incident label. Rows are created by a scenario generator and
// consumed once by the dataset assembler; nothing mutates them after that.
type ScenarioRow struct {
	Features map[string]float64
	Label    int
}
