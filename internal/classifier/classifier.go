// Package classifier wraps the externally trained gradient-boosted tree
// model. Training happens offline (the dataset assembler produces its
// input); this package only scores feature vectors.
package classifier

import (
	"fmt"

	"github.com/dmitryikh/leaves"

	"github.com/miradorstack/mirador-predict/internal/utils"
)

// Classifier scores a feature vector built per the persisted schema.
// Implementations must be safe for concurrent use: the model is loaded
// once at startup and read-only afterwards.
type Classifier interface {
	// PredictProba returns the class probabilities for a binary incident
	// model: p(no incident) and p(incident), summing to 1.
	PredictProba(vector []float64) (pNegative, pIncident float64, err error)
}

// GBTClassifier scores with a gradient-boosted tree ensemble loaded from
// an XGBoost model file via leaves. Pure Go, no cgo, bounded latency.
type GBTClassifier struct {
	ensemble *leaves.Ensemble
}

// LoadXGBoost reads an XGBoost binary model from disk. The ensemble is
// loaded with its output transformation, so PredictSingle yields a
// probability for binary:logistic objectives.
func LoadXGBoost(path string) (*GBTClassifier, error) {
	ensemble, err := leaves.XGEnsembleFromFile(path, true)
	if err != nil {
		return nil, utils.NewAppError("classifier.load", "load xgboost model "+path, err)
	}
	return &GBTClassifier{ensemble: ensemble}, nil
}

// PredictProba implements Classifier.
func (c *GBTClassifier) PredictProba(vector []float64) (float64, float64, error) {
	if c.ensemble == nil {
		return 0, 0, fmt.Errorf("ensemble not loaded")
	}
	if n := c.ensemble.NFeatures(); len(vector) < n {
		return 0, 0, fmt.Errorf("feature vector has %d values, model expects %d", len(vector), n)
	}

	p := c.ensemble.PredictSingle(vector, 0)
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return 1 - p, p, nil
}

// RiskClassifier converts raw class probabilities into the
// (probability, predicted label) pair the inference service reports.
type RiskClassifier struct {
	model Classifier
}

// NewRiskClassifier wraps an opaque classifier.
func NewRiskClassifier(model Classifier) *RiskClassifier {
	return &RiskClassifier{model: model}
}

// Classify scores a schema-ordered feature vector. The predicted label is
// the usual 0.5 decision threshold on the incident probability.
func (r *RiskClassifier) Classify(vector []float64) (pNegative, pIncident float64, label int, err error) {
	if r.model == nil {
		return 0, 0, 0, fmt.Errorf("classifier not loaded")
	}
	pNegative, pIncident, err = r.model.PredictProba(vector)
	if err != nil {
		return 0, 0, 0, err
	}
	if pIncident >= 0.5 {
		label = 1
	}
	return pNegative, pIncident, label, nil
}
