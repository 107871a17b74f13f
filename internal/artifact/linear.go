package artifact

import (
	"errors"
	"fmt"
	"math"
)

// LogisticRegressionParams are the fitted attributes of a binary logistic regression
type LogisticRegressionParams struct {
	Classes   []int       `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// LogisticRegression is a fitted binary logistic regression
type LogisticRegression struct {
	classes   [2]int
	coef      []float64
	intercept float64
}

// NewLogisticRegression validates p and builds the model
func NewLogisticRegression(p LogisticRegressionParams) (*LogisticRegression, error) {
	classes, err := binaryClasses(p.Classes)
	if err != nil {
		return nil, fmt.Errorf("logistic regression: %w", err)
	}
	if len(p.Coef) != 1 || len(p.Coef[0]) == 0 {
		return nil, errors.New("logistic regression: coef must hold exactly one non-empty row")
	}
	if len(p.Intercept) != 1 {
		return nil, fmt.Errorf("logistic regression: intercept has %d values, want 1", len(p.Intercept))
	}

	return &LogisticRegression{
		classes:   classes,
		coef:      append([]float64(nil), p.Coef[0]...),
		intercept: p.Intercept[0],
	}, nil
}

func (m *LogisticRegression) decision(x [][]float64) ([]float64, error) {
	scores := make([]float64, len(x))
	for r, row := range x {
		if len(row) != len(m.coef) {
			return nil, fmt.Errorf("logistic regression: row %d has %d features, model expects %d", r, len(row), len(m.coef))
		}
		z := m.intercept
		for i, v := range row {
			z += m.coef[i] * v
		}
		scores[r] = z
	}
	return scores, nil
}

// Predict returns the positive class where the decision score is above zero
func (m *LogisticRegression) Predict(x [][]float64) ([]int, error) {
	scores, err := m.decision(x)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(scores))
	for i, z := range scores {
		if z > 0 {
			labels[i] = m.classes[1]
		} else {
			labels[i] = m.classes[0]
		}
	}
	return labels, nil
}

// PredictProba returns [1-p, p] per row with p the logistic of the score
func (m *LogisticRegression) PredictProba(x [][]float64) ([][]float64, error) {
	scores, err := m.decision(x)
	if err != nil {
		return nil, err
	}
	proba := make([][]float64, len(scores))
	for i, z := range scores {
		p := 1 / (1 + math.Exp(-z))
		proba[i] = []float64{1 - p, p}
	}
	return proba, nil
}

// binaryClasses enforces the two-class precondition shared by all classifiers
func binaryClasses(classes []int) ([2]int, error) {
	if len(classes) != 2 {
		return [2]int{}, fmt.Errorf("binary classifier required, artifact has %d classes", len(classes))
	}
	if classes[0] == classes[1] {
		return [2]int{}, fmt.Errorf("duplicate class label %d", classes[0])
	}
	// Probability column 1 is read as the positive class, so the labels
	// must be stored sorted the way training emits them
	if classes[0] > classes[1] {
		return [2]int{}, fmt.Errorf("class labels %v are not in ascending order", classes)
	}
	return [2]int{classes[0], classes[1]}, nil
}
