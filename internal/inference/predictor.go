package inference

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
)

// Scaler transforms a raw feature matrix into the representation the
// classifier was trained on
type Scaler interface {
	Transform(x [][]float64) ([][]float64, error)
}

// Classifier is a pre-fitted binary classifier.
//
// PredictProba returns one row per input row with the class probabilities
// ordered as trained: index 0 is the negative class, index 1 the positive.
type Classifier interface {
	Predict(x [][]float64) ([]int, error)
	PredictProba(x [][]float64) ([][]float64, error)
}

// Predictor runs the scale and predict steps for a single feature row
type Predictor struct {
	scaler     Scaler
	classifier Classifier
	logger     *slog.Logger
	recommend  bool
}

// NewPredictor creates a new predictor
func NewPredictor(scaler Scaler, classifier Classifier, logger *slog.Logger, recommend bool) *Predictor {
	return &Predictor{
		scaler:     scaler,
		classifier: classifier,
		logger:     logger,
		recommend:  recommend,
	}
}

// Predict scales row and classifies it.
//
// Preconditions carried over from the trained artifacts: the classifier is
// binary, so the probability row must have exactly two entries. A label of
// 1 means detected; every other label is reported as not detected.
func (p *Predictor) Predict(row []float64) (result *PredictionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: model panicked: %v", ErrInference, r)
		}
	}()

	// Work on a copy so the caller's row is never touched by the scaler
	x := [][]float64{slices.Clone(row)}

	scaled, err := p.scaler.Transform(x)
	if err != nil {
		return nil, wrap(ErrInference, fmt.Errorf("failed to scale features: %w", err))
	}
	if len(scaled) != 1 {
		return nil, fmt.Errorf("%w: scaler returned %d rows, want 1", ErrInference, len(scaled))
	}

	p.logger.Debug("features scaled", "raw", row, "scaled", scaled[0])

	labels, err := p.classifier.Predict(scaled)
	if err != nil {
		return nil, wrap(ErrInference, fmt.Errorf("failed to predict label: %w", err))
	}
	if len(labels) != 1 {
		return nil, fmt.Errorf("%w: classifier returned %d labels, want 1", ErrInference, len(labels))
	}

	proba, err := p.classifier.PredictProba(scaled)
	if err != nil {
		return nil, wrap(ErrInference, fmt.Errorf("failed to estimate probabilities: %w", err))
	}
	if len(proba) != 1 {
		return nil, fmt.Errorf("%w: classifier returned %d probability rows, want 1", ErrInference, len(proba))
	}
	if len(proba[0]) != 2 {
		return nil, fmt.Errorf("%w: classifier returned %d class probabilities, want 2", ErrInference, len(proba[0]))
	}
	for _, v := range proba[0] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: classifier returned non-finite probability %v", ErrInference, v)
		}
	}

	label := labels[0]
	noSB, sb := proba[0][0], proba[0][1]

	p.logger.Debug("classifier output",
		"label", label,
		"probability_no_sb", noSB,
		"probability_sb", sb)

	result = &PredictionResult{
		Diagnosis:       DiagnosisNotDetected,
		Confidence:      max(noSB, sb),
		ProbabilityNoSB: noSB,
		ProbabilitySB:   sb,
	}
	if label == 1 {
		result.Diagnosis = DiagnosisDetected
	}

	if p.recommend {
		result.RiskLevel, result.Recommendations = Recommend(result.Diagnosis)
	}

	return result, nil
}
