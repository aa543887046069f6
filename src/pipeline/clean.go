package pipeline

import (
	"math"
	"strconv"
	"strings"

	"groundwater-quality-api/src/types"
)

// Cleaned holds the readings that survived cleaning and their feature rows.
// Matrix[i] belongs to Readings[i].
type Cleaned struct {
	Readings []types.Reading
	Matrix   [][]float64
}

// CleanFeatures drops every reading with a missing or non-numeric feature and builds
// the [ph, temperature, tds, turbidity] matrix for the rest, keeping input order.
// It also returns how many readings were dropped.
func CleanFeatures(readings []types.Reading) (Cleaned, int) {
	cleaned := Cleaned{
		Readings: make([]types.Reading, 0, len(readings)),
		Matrix:   make([][]float64, 0, len(readings)),
	}

	for _, r := range readings {
		row, ok := featureRow(r)
		if !ok {
			continue
		}
		cleaned.Readings = append(cleaned.Readings, r)
		cleaned.Matrix = append(cleaned.Matrix, row)
	}

	return cleaned, len(readings) - len(cleaned.Readings)
}

func featureRow(r types.Reading) ([]float64, bool) {
	row := make([]float64, len(types.FeatureColumns))

	for i, col := range types.FeatureColumns {
		raw, _ := r.Get(col)
		v, ok := coerceFloat(raw)
		if !ok {
			return nil, false
		}
		row[i] = v
	}

	return row, true
}

// coerceFloat accepts numbers and numeric strings. nil, NaN, ±Inf and anything
// else count as missing.
func coerceFloat(raw interface{}) (float64, bool) {
	var v float64

	switch x := raw.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
