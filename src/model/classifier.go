package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

// Classifier produces one probability in [0,1] per feature row, in row order.
type Classifier interface {
	Predict(ctx context.Context, x [][]float64) ([]float64, error)
}

const (
	ActivationLinear  = "linear"
	ActivationReLU    = "relu"
	ActivationTanh    = "tanh"
	ActivationSigmoid = "sigmoid"
)

// Layer is one dense layer. Weights are laid out [input][output].
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

// MLPParams is the exported form of a trained feed-forward network.
type MLPParams struct {
	Layers []Layer `json:"layers"`
}

// MLP evaluates a dense network whose single output unit is the probability of
// the positive (not potable) class.
type MLP struct {
	layers []Layer
}

// ParseMLP decodes and validates a JSON network artifact.
func ParseMLP(content []byte) (*MLP, error) {
	var params MLPParams
	if err := json.Unmarshal(content, &params); err != nil {
		return nil, fmt.Errorf("failed to parse classifier weights: %w", err)
	}
	return NewMLP(params)
}

func NewMLP(params MLPParams) (*MLP, error) {
	if len(params.Layers) == 0 {
		return nil, fmt.Errorf("classifier has no layers")
	}

	width := FeatureCount
	for i, l := range params.Layers {
		if len(l.Weights) != width {
			return nil, fmt.Errorf("%w: layer %d expects %d inputs, got %d", ErrDimension, i, width, len(l.Weights))
		}

		out := len(l.Bias)
		if out == 0 {
			return nil, fmt.Errorf("layer %d has no units", i)
		}
		for r, w := range l.Weights {
			if len(w) != out {
				return nil, fmt.Errorf("%w: layer %d weight row %d has %d units, bias has %d", ErrDimension, i, r, len(w), out)
			}
		}

		switch l.Activation {
		case "":
			params.Layers[i].Activation = ActivationLinear
		case ActivationLinear, ActivationReLU, ActivationTanh, ActivationSigmoid:
		default:
			return nil, fmt.Errorf("layer %d: unsupported activation %q", i, l.Activation)
		}

		width = out
	}

	if width != 1 {
		return nil, fmt.Errorf("%w: classifier must end in 1 unit, got %d", ErrDimension, width)
	}

	return &MLP{layers: params.Layers}, nil
}

func (m *MLP) Predict(ctx context.Context, x [][]float64) ([]float64, error) {
	probs := make([]float64, len(x))

	for i, row := range x {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(row) != FeatureCount {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimension, i, len(row), FeatureCount)
		}
		probs[i] = m.forward(row)
	}

	return probs, nil
}

func (m *MLP) forward(input []float64) float64 {
	activations := input

	for _, l := range m.layers {
		next := make([]float64, len(l.Bias))
		copy(next, l.Bias)

		for in, a := range activations {
			for out, w := range l.Weights[in] {
				next[out] += a * w
			}
		}
		for j := range next {
			next[j] = activate(l.Activation, next[j])
		}

		activations = next
	}

	return activations[0]
}

func activate(kind string, v float64) float64 {
	switch kind {
	case ActivationReLU:
		return math.Max(0, v)
	case ActivationTanh:
		return math.Tanh(v)
	case ActivationSigmoid:
		return 1 / (1 + math.Exp(-v))
	default:
		return v
	}
}
