package matcher

import "math"

// EuclideanDistance computes the Euclidean distance between two embeddings.
// Returns +Inf for mismatched or empty vectors so invalid input never matches.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// MinDistance returns the smallest Euclidean distance between the reference
// embedding and any of the candidate embeddings. Returns +Inf when the
// candidate list is empty.
func MinDistance(candidates [][]float32, reference []float32) float64 {
	best := math.Inf(1)
	for _, c := range candidates {
		if d := EuclideanDistance(c, reference); d < best {
			best = d
		}
	}
	return best
}

// IsMatch reports whether any candidate embedding lies within tolerance of
// the reference. The boundary is inclusive: distance == tolerance matches.
func IsMatch(candidates [][]float32, reference []float32, tolerance float64) bool {
	return MinDistance(candidates, reference) <= tolerance
}
