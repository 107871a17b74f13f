package artifact

import (
	"errors"
	"fmt"
)

// StandardScalerParams are the fitted attributes of a standard scaler
type StandardScalerParams struct {
	Mean     []float64 `json:"mean,omitempty"`
	Scale    []float64 `json:"scale,omitempty"`
	WithMean *bool     `json:"with_mean,omitempty"`
	WithStd  *bool     `json:"with_std,omitempty"`
}

// StandardScaler centers each column on its mean and divides by its scale
type StandardScaler struct {
	mean  []float64 // nil when centering is disabled
	scale []float64 // nil when scaling is disabled
	width int
}

// NewStandardScaler validates p and builds the scaler.
// A zero scale (constant column at fit time) is treated as 1.
func NewStandardScaler(p StandardScalerParams) (*StandardScaler, error) {
	withMean := p.WithMean == nil || *p.WithMean
	withStd := p.WithStd == nil || *p.WithStd

	s := &StandardScaler{}
	if withMean {
		if len(p.Mean) == 0 {
			return nil, errors.New("standard scaler: mean is required when with_mean is set")
		}
		s.mean = append([]float64(nil), p.Mean...)
		s.width = len(p.Mean)
	}
	if withStd {
		if len(p.Scale) == 0 {
			return nil, errors.New("standard scaler: scale is required when with_std is set")
		}
		if s.width != 0 && len(p.Scale) != s.width {
			return nil, fmt.Errorf("standard scaler: mean has %d columns but scale has %d", s.width, len(p.Scale))
		}
		s.scale = make([]float64, len(p.Scale))
		for i, v := range p.Scale {
			if v == 0 {
				v = 1
			}
			s.scale[i] = v
		}
		s.width = len(p.Scale)
	}
	if s.width == 0 {
		return nil, errors.New("standard scaler: neither centering nor scaling is enabled")
	}

	return s, nil
}

// Transform returns a scaled copy of x
func (s *StandardScaler) Transform(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))
	for r, row := range x {
		if len(row) != s.width {
			return nil, fmt.Errorf("standard scaler: row %d has %d features, scaler expects %d", r, len(row), s.width)
		}
		scaled := make([]float64, s.width)
		for i, v := range row {
			if s.mean != nil {
				v -= s.mean[i]
			}
			if s.scale != nil {
				v /= s.scale[i]
			}
			scaled[i] = v
		}
		out[r] = scaled
	}
	return out, nil
}

// MinMaxScalerParams are the fitted attributes of a min-max scaler
type MinMaxScalerParams struct {
	Scale []float64 `json:"scale"`
	Min   []float64 `json:"min"`
}

// MinMaxScaler maps each column with x*scale + min
type MinMaxScaler struct {
	scale []float64
	min   []float64
}

// NewMinMaxScaler validates p and builds the scaler
func NewMinMaxScaler(p MinMaxScalerParams) (*MinMaxScaler, error) {
	if len(p.Scale) == 0 {
		return nil, errors.New("minmax scaler: scale is required")
	}
	if len(p.Scale) != len(p.Min) {
		return nil, fmt.Errorf("minmax scaler: scale has %d columns but min has %d", len(p.Scale), len(p.Min))
	}
	return &MinMaxScaler{
		scale: append([]float64(nil), p.Scale...),
		min:   append([]float64(nil), p.Min...),
	}, nil
}

// Transform returns a scaled copy of x
func (s *MinMaxScaler) Transform(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))
	for r, row := range x {
		if len(row) != len(s.scale) {
			return nil, fmt.Errorf("minmax scaler: row %d has %d features, scaler expects %d", r, len(row), len(s.scale))
		}
		scaled := make([]float64, len(row))
		for i, v := range row {
			scaled[i] = v*s.scale[i] + s.min[i]
		}
		out[r] = scaled
	}
	return out, nil
}
