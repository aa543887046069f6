package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FeatureCount is the width of every feature row: ph, temperature, tds, turbidity.
const FeatureCount = 4

// ErrDimension is returned when a matrix row does not have the artifact's width.
var ErrDimension = errors.New("feature dimension mismatch")

// Scaler applies a pre-fitted, column-wise feature transform.
type Scaler interface {
	Transform(x [][]float64) ([][]float64, error)
}

const (
	ScalerStandard = "standard"
	ScalerRobust   = "robust"
	ScalerMinMax   = "minmax"
)

// ScalerParams is the exported form of a fitted scaler.
//
// standard/robust: (x - center) / scale, centring only where scale is 0.
// minmax: x*scale + min.
type ScalerParams struct {
	Kind   string    `json:"kind"`
	Center []float64 `json:"center,omitempty"`
	Min    []float64 `json:"min,omitempty"`
	Scale  []float64 `json:"scale"`
}

// LinearScaler is an immutable Scaler built from ScalerParams.
type LinearScaler struct {
	params ScalerParams
}

// ParseScaler decodes and validates a JSON scaler artifact.
func ParseScaler(content []byte) (*LinearScaler, error) {
	var params ScalerParams
	if err := json.Unmarshal(content, &params); err != nil {
		return nil, fmt.Errorf("failed to parse scaler parameters: %w", err)
	}
	return NewLinearScaler(params)
}

func NewLinearScaler(params ScalerParams) (*LinearScaler, error) {
	if params.Kind == "" {
		params.Kind = ScalerStandard
	}

	var offsets []float64
	switch params.Kind {
	case ScalerStandard, ScalerRobust:
		offsets = params.Center
	case ScalerMinMax:
		offsets = params.Min
	default:
		return nil, fmt.Errorf("unsupported scaler kind %q", params.Kind)
	}

	if len(offsets) != FeatureCount || len(params.Scale) != FeatureCount {
		return nil, fmt.Errorf("%w: scaler %q needs %d offsets and scales, got %d and %d",
			ErrDimension, params.Kind, FeatureCount, len(offsets), len(params.Scale))
	}

	return &LinearScaler{params: params}, nil
}

// Transform returns a new matrix; x is left untouched.
func (s *LinearScaler) Transform(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))

	for i, row := range x {
		if len(row) != FeatureCount {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimension, i, len(row), FeatureCount)
		}

		scaled := make([]float64, FeatureCount)
		for j, val := range row {
			scaled[j] = s.scale(j, val)
		}
		out[i] = scaled
	}

	return out, nil
}

func (s *LinearScaler) scale(col int, val float64) float64 {
	p := s.params

	if p.Kind == ScalerMinMax {
		return val*p.Scale[col] + p.Min[col]
	}

	if p.Scale[col] != 0 {
		return (val - p.Center[col]) / p.Scale[col]
	}
	return val - p.Center[col] // zero-variance column: only centre it
}
