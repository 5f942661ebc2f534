package matcher

import (
	"math"
	"testing"
)

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        []float32{1, 2, 3},
			b:        []float32{1, 2, 3},
			expected: 0,
		},
		{
			name:     "unit distance",
			a:        []float32{0, 0},
			b:        []float32{1, 0},
			expected: 1,
		},
		{
			name:     "pythagorean",
			a:        []float32{0, 0},
			b:        []float32{3, 4},
			expected: 5,
		},
		{
			name:     "negative components",
			a:        []float32{-1, -1},
			b:        []float32{1, 1},
			expected: 2 * math.Sqrt2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EuclideanDistance(tt.a, tt.b)
			if math.Abs(result-tt.expected) > 0.0001 {
				t.Errorf("EuclideanDistance(%v, %v) = %v, want %v", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestEuclideanDistanceInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
	}{
		{name: "mismatched length", a: []float32{1, 2}, b: []float32{1, 2, 3}},
		{name: "both empty", a: []float32{}, b: []float32{}},
		{name: "nil vectors", a: nil, b: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := EuclideanDistance(tt.a, tt.b); !math.IsInf(result, 1) {
				t.Errorf("expected +Inf for invalid input, got %v", result)
			}
		})
	}
}

func TestMinDistance(t *testing.T) {
	reference := []float32{0, 0}
	candidates := [][]float32{
		{0.9, 0},
		{0.3, 0},
		{0.6, 0},
	}

	result := MinDistance(candidates, reference)
	if math.Abs(result-0.3) > 0.0001 {
		t.Errorf("MinDistance = %v, want 0.3", result)
	}
}

func TestMinDistanceEmpty(t *testing.T) {
	if result := MinDistance(nil, []float32{0, 0}); !math.IsInf(result, 1) {
		t.Errorf("expected +Inf for empty candidates, got %v", result)
	}
}

func TestIsMatch(t *testing.T) {
	reference := []float32{0, 0}

	tests := []struct {
		name       string
		candidates [][]float32
		tolerance  float64
		expected   bool
	}{
		{
			name:       "below tolerance",
			candidates: [][]float32{{0.3, 0}},
			tolerance:  0.6,
			expected:   true,
		},
		{
			name:       "exactly at tolerance matches",
			candidates: [][]float32{{0.6, 0}},
			tolerance:  0.6,
			expected:   true,
		},
		{
			name:       "above tolerance",
			candidates: [][]float32{{0.9, 0}},
			tolerance:  0.6,
			expected:   false,
		},
		{
			name:       "any face within tolerance wins",
			candidates: [][]float32{{2, 0}, {0.1, 0}},
			tolerance:  0.6,
			expected:   true,
		},
		{
			name:       "no candidates never match",
			candidates: nil,
			tolerance:  0.6,
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsMatch(tt.candidates, reference, tt.tolerance); result != tt.expected {
				t.Errorf("IsMatch = %v, want %v", result, tt.expected)
			}
		})
	}
}
