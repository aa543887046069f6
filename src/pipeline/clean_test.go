package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundwater-quality-api/src/types"
)

func reading(attrs map[string]interface{}) types.Reading {
	return types.Reading{Attributes: attrs}
}

func validAttrs(id int) map[string]interface{} {
	return map[string]interface{}{
		"id":          id,
		"kode_pos":    float64(12345),
		"timestamp":   float64(1700000000000 - int64(id)*60000),
		"ph":          7.2,
		"temperature": 27.0,
		"tds":         310.0,
		"turbidity":   1.5,
	}
}

func TestCleanFeatures_ColumnOrder(t *testing.T) {
	cleaned, dropped := CleanFeatures([]types.Reading{reading(validAttrs(1))})

	assert.Zero(t, dropped)
	require.Len(t, cleaned.Matrix, 1)
	assert.Equal(t, []float64{7.2, 27.0, 310.0, 1.5}, cleaned.Matrix[0])
}

func TestCleanFeatures_Coercion(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		keep  bool
		want  float64
	}{
		{name: "float", value: 6.5, keep: true, want: 6.5},
		{name: "int", value: 7, keep: true, want: 7},
		{name: "int64", value: int64(8), keep: true, want: 8},
		{name: "float32", value: float32(0.5), keep: true, want: 0.5},
		{name: "numeric string", value: " 7.25 ", keep: true, want: 7.25},
		{name: "exponent string", value: "1e2", keep: true, want: 100},
		{name: "nil", value: nil},
		{name: "text", value: "n/a"},
		{name: "empty string", value: ""},
		{name: "bool", value: true},
		{name: "nan", value: math.NaN()},
		{name: "nan string", value: "NaN"},
		{name: "inf", value: math.Inf(-1)},
		{name: "list", value: []interface{}{7.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := validAttrs(1)
			attrs["ph"] = tt.value

			cleaned, dropped := CleanFeatures([]types.Reading{reading(attrs)})

			if !tt.keep {
				assert.Equal(t, 1, dropped)
				assert.Empty(t, cleaned.Readings)
				assert.Empty(t, cleaned.Matrix)
				return
			}
			assert.Zero(t, dropped)
			require.Len(t, cleaned.Matrix, 1)
			assert.Equal(t, tt.want, cleaned.Matrix[0][0])
		})
	}
}

func TestCleanFeatures_AbsentKeys(t *testing.T) {
	for _, col := range types.FeatureColumns {
		t.Run(col, func(t *testing.T) {
			attrs := validAttrs(1)
			delete(attrs, col)

			cleaned, dropped := CleanFeatures([]types.Reading{reading(attrs)})
			assert.Equal(t, 1, dropped)
			assert.Empty(t, cleaned.Readings)
		})
	}
}

func TestCleanFeatures_CountsAndOrder(t *testing.T) {
	var in []types.Reading
	for i := 0; i < 40; i++ {
		attrs := validAttrs(i)
		switch i % 4 {
		case 1:
			delete(attrs, "tds")
		case 3:
			attrs["turbidity"] = "cloudy"
		}
		in = append(in, reading(attrs))
	}

	cleaned, dropped := CleanFeatures(in)

	assert.Equal(t, len(in), len(cleaned.Readings)+dropped)
	assert.Equal(t, 20, dropped)
	require.Len(t, cleaned.Matrix, len(cleaned.Readings))

	prev := -1
	for _, r := range cleaned.Readings {
		id := r.Attributes["id"].(int)
		assert.Greater(t, id, prev)
		assert.Contains(t, []int{0, 2}, id%4)
		prev = id
	}
}

func TestCleanFeatures_Empty(t *testing.T) {
	cleaned, dropped := CleanFeatures(nil)

	assert.Zero(t, dropped)
	assert.Empty(t, cleaned.Readings)
	assert.Empty(t, cleaned.Matrix)
}
