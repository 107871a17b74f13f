package artifact

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestStandardScaler(t *testing.T) {
	tests := []struct {
		name        string
		params      StandardScalerParams
		input       [][]float64
		want        [][]float64
		errContains string
	}{
		{
			name:   "center and scale",
			params: StandardScalerParams{Mean: []float64{10, 2}, Scale: []float64{2, 0.5}},
			input:  [][]float64{{14, 3}},
			want:   [][]float64{{2, 2}},
		},
		{
			name:   "zero scale is treated as one",
			params: StandardScalerParams{Mean: []float64{1, 1}, Scale: []float64{0, 4}},
			input:  [][]float64{{3, 9}},
			want:   [][]float64{{2, 2}},
		},
		{
			name:   "without mean",
			params: StandardScalerParams{Scale: []float64{2}, WithMean: boolPtr(false)},
			input:  [][]float64{{8}},
			want:   [][]float64{{4}},
		},
		{
			name:   "without std",
			params: StandardScalerParams{Mean: []float64{5}, WithStd: boolPtr(false)},
			input:  [][]float64{{8}},
			want:   [][]float64{{3}},
		},
		{
			name:        "width mismatch on transform",
			params:      StandardScalerParams{Mean: []float64{0, 0}, Scale: []float64{1, 1}},
			input:       [][]float64{{1, 2, 3}},
			errContains: "row 0 has 3 features, scaler expects 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scaler, err := NewStandardScaler(tt.params)
			require.NoError(t, err)

			got, err := scaler.Transform(tt.input)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStandardScalerDoesNotMutateInput(t *testing.T) {
	scaler, err := NewStandardScaler(StandardScalerParams{Mean: []float64{1}, Scale: []float64{2}})
	require.NoError(t, err)

	input := [][]float64{{5}}
	_, err = scaler.Transform(input)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{5}}, input)
}

func TestNewStandardScalerRejects(t *testing.T) {
	tests := []struct {
		name   string
		params StandardScalerParams
	}{
		{name: "missing mean", params: StandardScalerParams{Scale: []float64{1}}},
		{name: "missing scale", params: StandardScalerParams{Mean: []float64{1}}},
		{name: "mismatched widths", params: StandardScalerParams{Mean: []float64{1, 2}, Scale: []float64{1}}},
		{name: "nothing enabled", params: StandardScalerParams{WithMean: boolPtr(false), WithStd: boolPtr(false)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStandardScaler(tt.params)
			assert.Error(t, err)
		})
	}
}

func TestMinMaxScaler(t *testing.T) {
	scaler, err := NewMinMaxScaler(MinMaxScalerParams{
		Scale: []float64{0.5, 2},
		Min:   []float64{-1, 0.25},
	})
	require.NoError(t, err)

	got, err := scaler.Transform([][]float64{{4, 1}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2.25}}, got)

	_, err = scaler.Transform([][]float64{{4}})
	assert.Error(t, err)

	_, err = NewMinMaxScaler(MinMaxScalerParams{Scale: []float64{1, 2}, Min: []float64{0}})
	assert.Error(t, err)
}

func TestLogisticRegression(t *testing.T) {
	model, err := NewLogisticRegression(LogisticRegressionParams{
		Classes:   []int{0, 1},
		Coef:      [][]float64{{2, -1}},
		Intercept: []float64{-0.5},
	})
	require.NoError(t, err)

	x := [][]float64{
		{1, 0},    // z = 1.5
		{0, 1},    // z = -1.5
		{0.25, 0}, // z = 0
	}

	labels, err := model.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0}, labels)

	proba, err := model.PredictProba(x)
	require.NoError(t, err)
	require.Len(t, proba, 3)

	sigmoid := 1 / (1 + math.Exp(-1.5))
	assert.InDelta(t, 1-sigmoid, proba[0][0], 1e-12)
	assert.InDelta(t, sigmoid, proba[0][1], 1e-12)
	assert.InDelta(t, sigmoid, proba[1][0], 1e-12)
	assert.InDelta(t, 0.5, proba[2][1], 1e-12)
	for _, row := range proba {
		assert.InDelta(t, 1.0, row[0]+row[1], 1e-12)
	}

	_, err = model.Predict([][]float64{{1, 2, 3}})
	assert.Error(t, err)
}

func TestNewLogisticRegressionRejects(t *testing.T) {
	tests := []struct {
		name        string
		params      LogisticRegressionParams
		errContains string
	}{
		{
			name:        "multiclass",
			params:      LogisticRegressionParams{Classes: []int{0, 1, 2}, Coef: [][]float64{{1}, {1}, {1}}, Intercept: []float64{0, 0, 0}},
			errContains: "binary classifier required",
		},
		{
			name:        "duplicate classes",
			params:      LogisticRegressionParams{Classes: []int{1, 1}, Coef: [][]float64{{1}}, Intercept: []float64{0}},
			errContains: "duplicate class label",
		},
		{
			name:        "descending classes",
			params:      LogisticRegressionParams{Classes: []int{1, 0}, Coef: [][]float64{{1}}, Intercept: []float64{0}},
			errContains: "not in ascending order",
		},
		{
			name:        "empty coef",
			params:      LogisticRegressionParams{Classes: []int{0, 1}, Intercept: []float64{0}},
			errContains: "coef",
		},
		{
			name:        "missing intercept",
			params:      LogisticRegressionParams{Classes: []int{0, 1}, Coef: [][]float64{{1}}},
			errContains: "intercept",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLogisticRegression(tt.params)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

// stump splits on feature 0 at threshold and returns the given leaf weights
func stump(threshold float64, low, high []float64) TreeParams {
	return TreeParams{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{0, -2, -2},
		Threshold:     []float64{threshold, -2, -2},
		Value:         [][]float64{{0, 0}, low, high},
	}
}

func TestDecisionTreeClassifier(t *testing.T) {
	model, err := NewDecisionTreeClassifier(DecisionTreeParams{
		Classes:    []int{0, 1},
		NFeatures:  2,
		TreeParams: stump(0.5, []float64{8, 2}, []float64{1, 9}),
	})
	require.NoError(t, err)

	x := [][]float64{{0.5, 100}, {0.75, -100}}

	proba, err := model.PredictProba(x)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.8, 0.2}, {0.1, 0.9}}, proba)

	labels, err := model.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, labels)

	_, err = model.PredictProba([][]float64{{1}})
	assert.Error(t, err)
}

func TestRandomForestAveragesTrees(t *testing.T) {
	model, err := NewRandomForest(RandomForestParams{
		Classes:   []int{0, 1},
		NFeatures: 1,
		Estimators: []TreeParams{
			stump(0, []float64{1, 0}, []float64{0, 4}),
			stump(10, []float64{1, 1}, []float64{0, 2}),
		},
	})
	require.NoError(t, err)

	proba, err := model.PredictProba([][]float64{{5}})
	require.NoError(t, err)
	// tree one lands right (0, 1), tree two lands left (0.5, 0.5)
	assert.Equal(t, [][]float64{{0.25, 0.75}}, proba)

	labels, err := model.Predict([][]float64{{5}, {-1}})
	require.NoError(t, err)
	// {-1}: tree one (1, 0), tree two (0.5, 0.5)
	assert.Equal(t, []int{1, 0}, labels)
}

func TestRandomForestTieGoesToFirstClass(t *testing.T) {
	model, err := NewRandomForest(RandomForestParams{
		Classes:    []int{0, 1},
		NFeatures:  1,
		Estimators: []TreeParams{stump(0, []float64{1, 1}, []float64{1, 1})},
	})
	require.NoError(t, err)

	labels, err := model.Predict([][]float64{{1}})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, labels)
}

func TestNewRandomForestRejects(t *testing.T) {
	valid := stump(0, []float64{1, 0}, []float64{0, 1})

	tests := []struct {
		name        string
		params      RandomForestParams
		errContains string
	}{
		{
			name:        "no estimators",
			params:      RandomForestParams{Classes: []int{0, 1}, NFeatures: 1},
			errContains: "no estimators",
		},
		{
			name:        "no features",
			params:      RandomForestParams{Classes: []int{0, 1}, Estimators: []TreeParams{valid}},
			errContains: "n_features",
		},
		{
			name:        "three classes",
			params:      RandomForestParams{Classes: []int{0, 1, 2}, NFeatures: 1, Estimators: []TreeParams{valid}},
			errContains: "binary classifier required",
		},
		{
			name: "ragged arrays",
			params: RandomForestParams{Classes: []int{0, 1}, NFeatures: 1, Estimators: []TreeParams{{
				ChildrenLeft:  []int{-1},
				ChildrenRight: []int{-1},
				Feature:       []int{-2},
				Threshold:     []float64{},
				Value:         [][]float64{{1, 0}},
			}}},
			errContains: "disagree on node count",
		},
		{
			name: "cycle",
			params: RandomForestParams{Classes: []int{0, 1}, NFeatures: 1, Estimators: []TreeParams{{
				ChildrenLeft:  []int{1, 0, -1},
				ChildrenRight: []int{2, 2, -1},
				Feature:       []int{0, 0, -2},
				Threshold:     []float64{0, 0, -2},
				Value:         [][]float64{{0, 0}, {0, 0}, {1, 0}},
			}}},
			errContains: "out of range children",
		},
		{
			name: "split on unknown feature",
			params: RandomForestParams{Classes: []int{0, 1}, NFeatures: 1, Estimators: []TreeParams{{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{3, -2, -2},
				Threshold:     []float64{0, -2, -2},
				Value:         [][]float64{{0, 0}, {1, 0}, {0, 1}},
			}}},
			errContains: "splits on feature 3",
		},
		{
			name: "leaf with three class values",
			params: RandomForestParams{Classes: []int{0, 1}, NFeatures: 1, Estimators: []TreeParams{{
				ChildrenLeft:  []int{-1},
				ChildrenRight: []int{-1},
				Feature:       []int{-2},
				Threshold:     []float64{-2},
				Value:         [][]float64{{1, 0, 0}},
			}}},
			errContains: "class values",
		},
		{
			name:        "leaf with zero weights",
			params:      RandomForestParams{Classes: []int{0, 1}, NFeatures: 1, Estimators: []TreeParams{stump(0, []float64{1, 0}, []float64{0, 0})}},
			errContains: "leaf 2: class weights sum to zero",
		},
		{
			name:        "leaf with negative weight",
			params:      RandomForestParams{Classes: []int{0, 1}, NFeatures: 1, Estimators: []TreeParams{stump(0, []float64{-1, 2}, []float64{0, 1})}},
			errContains: "leaf 1: class weight -1",
		},
		{
			name:        "leaf with nan weight",
			params:      RandomForestParams{Classes: []int{0, 1}, NFeatures: 1, Estimators: []TreeParams{stump(0, []float64{1, 0}, []float64{math.NaN(), 1})}},
			errContains: "leaf 2: class weight NaN",
		},
		{
			name:        "descending classes",
			params:      RandomForestParams{Classes: []int{1, 0}, NFeatures: 1, Estimators: []TreeParams{valid}},
			errContains: "not in ascending order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRandomForest(tt.params)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
