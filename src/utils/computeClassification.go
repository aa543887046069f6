package utils

import "math"

type Classification string

const (
	FIT_FOR_DRINKING     Classification = "Fit for drinking"
	NOT_FIT_FOR_DRINKING Classification = "Not fit for drinking"
	UNKNOWN              Classification = "Unknown"
)

// PotabilityThreshold is the probability above which a reading is not fit for drinking.
const PotabilityThreshold = 0.5

func (c Classification) String() string {
	switch c {
	case FIT_FOR_DRINKING:
		return "Fit for drinking"
	case NOT_FIT_FOR_DRINKING:
		return "Not fit for drinking"
	default:
		return "Unknown"
	}
}

// ComputeClassification maps a model probability to a label. The boundary value 0.5
// is fit for drinking; anything outside [0,1] is UNKNOWN.
func ComputeClassification(probability float64) Classification {
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return UNKNOWN
	}

	if probability > PotabilityThreshold {
		return NOT_FIT_FOR_DRINKING
	}

	return FIT_FOR_DRINKING
}

// ComputeClassifications labels a probability vector, keeping index alignment.
func ComputeClassifications(probabilities []float64) []Classification {
	labels := make([]Classification, len(probabilities))
	for i, p := range probabilities {
		labels[i] = ComputeClassification(p)
	}
	return labels
}
