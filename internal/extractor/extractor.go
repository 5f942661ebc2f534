// Package extractor provides face detection and embedding extraction backends.
//
// An extractor turns raw image bytes into an ordered sequence of face
// embeddings. The order is the detector's own and is preserved so callers
// can apply "first face wins" policies deterministically.
package extractor

import "context"

// Face is a single detected face with its embedding.
type Face struct {
	Index     int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2] in pixels
	Score     float64   `json:"det_score"`
}

// Extractor detects faces in an image and computes their embeddings.
// Implementations must be deterministic for a fixed model and image bytes.
type Extractor interface {
	// ExtractFaces returns the detected faces in detector order.
	// An image with no faces yields an empty slice and a nil error.
	ExtractFaces(ctx context.Context, imageData []byte) ([]Face, error)

	// Name identifies the backend for logs and reports.
	Name() string
}
