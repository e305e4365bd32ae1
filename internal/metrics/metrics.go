package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels predictions that completed.
	OutcomeSuccess = "success"
	// OutcomeError labels predictions that failed (model missing or scoring error).
	OutcomeError = "error"
)

var (
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirador_predict",
			Name:      "predictions_total",
			Help:      "Total number of predictions served, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	predictionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mirador_predict",
			Name:      "prediction_seconds",
			Help:      "Prediction latency in seconds, including vectorization and scoring.",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	riskLevelTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirador_predict",
			Name:      "risk_level_total",
			Help:      "Predictions partitioned by assigned risk tier.",
		},
		[]string{"level"},
	)

	missingFeaturesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mirador_predict",
			Name:      "missing_features_total",
			Help:      "Schema features absent from requests and defaulted to zero.",
		},
	)
)

// Register attaches mirador-predict collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		predictionsTotal,
		predictionDurationSeconds,
		riskLevelTotal,
		missingFeaturesTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObservePrediction records a prediction duration and outcome label.
func ObservePrediction(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	predictionsTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	predictionDurationSeconds.Observe(duration.Seconds())
}

// ObserveRiskLevel counts a prediction against its assigned tier.
func ObserveRiskLevel(level string) {
	riskLevelTotal.WithLabelValues(level).Inc()
}

// ObserveMissingFeatures counts schema features defaulted to zero.
func ObserveMissingFeatures(count int) {
	if count <= 0 {
		return
	}
	missingFeaturesTotal.Add(float64(count))
}
