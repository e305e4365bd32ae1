// Package generator produces synthetic training rows for the incident
// prediction model. Each generator is a stateless factory: every row is an
// independent random draw with no temporal correlation, so batches can be
// produced by parallel workers and concatenated in any order.
package generator

import (
	"math/rand"

	"github.com/miradorstack/mirador-predict/internal/models"
)

// Generator produces one scenario row per call.
type Generator interface {
	// Name identifies the scenario family (used for logging and counts).
	Name() string
	// Row draws a fresh, independent training example.
	Row(rng *rand.Rand) models.ScenarioRow
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// uniformInt draws an integer from [lo, hi).
func uniformInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo)
}

// randomTimeContext draws the calendar features every scenario shares.
func randomTimeContext(rng *rand.Rand) models.TimeContext {
	return models.TimeContext{
		HourOfDay:  rng.Intn(24),
		IsPeakHour: rng.Intn(2),
		IsWeekend:  rng.Intn(2),
	}
}

func newRow(rng *rand.Rand) map[string]float64 {
	row := make(map[string]float64, 32)
	randomTimeContext(rng).Flatten(row)
	return row
}
