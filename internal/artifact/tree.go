package artifact

import (
	"errors"
	"fmt"
	"math"
)

// leafChild marks a node without children in the children arrays
const leafChild = -1

// TreeParams is a fitted decision tree in parallel-array layout.
// Value holds per-class sample weights for every node; only leaves are read.
type TreeParams struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// DecisionTreeParams is a single-tree classifier
type DecisionTreeParams struct {
	Classes   []int `json:"classes"`
	NFeatures int   `json:"n_features"`
	TreeParams
}

// RandomForestParams is an ensemble of trees sharing classes and features
type RandomForestParams struct {
	Classes    []int        `json:"classes"`
	NFeatures  int          `json:"n_features"`
	Estimators []TreeParams `json:"estimators"`
}

type tree struct {
	left      []int
	right     []int
	feature   []int
	threshold []float64
	value     [][]float64
}

func newTree(p TreeParams, nFeatures int) (*tree, error) {
	n := len(p.ChildrenLeft)
	if n == 0 {
		return nil, errors.New("tree has no nodes")
	}
	if len(p.ChildrenRight) != n || len(p.Feature) != n || len(p.Threshold) != n || len(p.Value) != n {
		return nil, fmt.Errorf("tree arrays disagree on node count (left=%d right=%d feature=%d threshold=%d value=%d)",
			n, len(p.ChildrenRight), len(p.Feature), len(p.Threshold), len(p.Value))
	}

	for i := 0; i < n; i++ {
		left, right := p.ChildrenLeft[i], p.ChildrenRight[i]
		if left == leafChild || right == leafChild {
			if left != right {
				return nil, fmt.Errorf("node %d has exactly one child", i)
			}
			if len(p.Value[i]) != 2 {
				return nil, fmt.Errorf("leaf %d has %d class values, want 2", i, len(p.Value[i]))
			}
			if err := checkLeafWeights(p.Value[i]); err != nil {
				return nil, fmt.Errorf("leaf %d: %w", i, err)
			}
			continue
		}
		// Children always come after their parent, which also rules out cycles
		if left <= i || left >= n || right <= i || right >= n {
			return nil, fmt.Errorf("node %d has out of range children (%d, %d)", i, left, right)
		}
		if f := p.Feature[i]; f < 0 || f >= nFeatures {
			return nil, fmt.Errorf("node %d splits on feature %d, model has %d", i, f, nFeatures)
		}
	}

	return &tree{
		left:      p.ChildrenLeft,
		right:     p.ChildrenRight,
		feature:   p.Feature,
		threshold: p.Threshold,
		value:     p.Value,
	}, nil
}

// checkLeafWeights requires finite, non-negative weights with a positive sum
// so every leaf normalizes to a probability distribution
func checkLeafWeights(value []float64) error {
	for _, v := range value {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("class weight %v is not a finite non-negative number", v)
		}
	}
	switch total := value[0] + value[1]; {
	case total == 0:
		return errors.New("class weights sum to zero")
	case math.IsInf(total, 0):
		return errors.New("class weights overflow")
	}
	return nil
}

// proba walks row to a leaf and returns its normalized class weights
func (t *tree) proba(row []float64) []float64 {
	node := 0
	for t.left[node] != leafChild {
		// Splits were fitted on float32 inputs
		if float64(float32(row[t.feature[node]])) <= t.threshold[node] {
			node = t.left[node]
		} else {
			node = t.right[node]
		}
	}

	value := t.value[node]
	total := value[0] + value[1]
	return []float64{value[0] / total, value[1] / total}
}

// RandomForest averages the leaf probabilities of its trees.
// A single-tree forest is a decision tree classifier.
type RandomForest struct {
	classes   [2]int
	nFeatures int
	trees     []*tree
}

// NewRandomForest validates p and builds the ensemble
func NewRandomForest(p RandomForestParams) (*RandomForest, error) {
	classes, err := binaryClasses(p.Classes)
	if err != nil {
		return nil, fmt.Errorf("random forest: %w", err)
	}
	if p.NFeatures <= 0 {
		return nil, fmt.Errorf("random forest: n_features must be positive, got %d", p.NFeatures)
	}
	if len(p.Estimators) == 0 {
		return nil, errors.New("random forest: no estimators")
	}

	trees := make([]*tree, 0, len(p.Estimators))
	for i, est := range p.Estimators {
		t, err := newTree(est, p.NFeatures)
		if err != nil {
			return nil, fmt.Errorf("random forest: estimator %d: %w", i, err)
		}
		trees = append(trees, t)
	}

	return &RandomForest{
		classes:   classes,
		nFeatures: p.NFeatures,
		trees:     trees,
	}, nil
}

// NewDecisionTreeClassifier builds a classifier from a single tree
func NewDecisionTreeClassifier(p DecisionTreeParams) (*RandomForest, error) {
	rf, err := NewRandomForest(RandomForestParams{
		Classes:    p.Classes,
		NFeatures:  p.NFeatures,
		Estimators: []TreeParams{p.TreeParams},
	})
	if err != nil {
		return nil, fmt.Errorf("decision tree: %w", err)
	}
	return rf, nil
}

// PredictProba returns the mean of the per-tree class probabilities
func (m *RandomForest) PredictProba(x [][]float64) ([][]float64, error) {
	proba := make([][]float64, len(x))
	for r, row := range x {
		if len(row) != m.nFeatures {
			return nil, fmt.Errorf("random forest: row %d has %d features, model expects %d", r, len(row), m.nFeatures)
		}
		sum := []float64{0, 0}
		for _, t := range m.trees {
			p := t.proba(row)
			sum[0] += p[0]
			sum[1] += p[1]
		}
		n := float64(len(m.trees))
		proba[r] = []float64{sum[0] / n, sum[1] / n}
	}
	return proba, nil
}

// Predict returns the class with the highest mean probability; ties go to
// the first class
func (m *RandomForest) Predict(x [][]float64) ([]int, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(proba))
	for i, p := range proba {
		if p[1] > p[0] {
			labels[i] = m.classes[1]
		} else {
			labels[i] = m.classes[0]
		}
	}
	return labels, nil
}
