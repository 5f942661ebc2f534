package extractor

import (
	"context"
	"fmt"

	"github.com/Kagami/go-face"

	"github.com/kozaktomas/face-sieve/internal/imaging"
)

// DlibExtractor computes 128-dim face descriptors locally using dlib.
// It needs the dlib model files (shape_predictor_5_face_landmarks.dat,
// dlib_face_recognition_resnet_model_v1.dat, mmod_human_face_detector.dat)
// in the configured models directory. dlib runs on the CPU; the device
// preference does not apply to this backend.
type DlibExtractor struct {
	rec *face.Recognizer
}

// NewDlibExtractor loads the dlib models from modelsDir.
func NewDlibExtractor(modelsDir string) (*DlibExtractor, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dlib recognizer: %w", err)
	}
	return &DlibExtractor{rec: rec}, nil
}

// ExtractFaces detects faces and returns their descriptors in detector order.
// dlib only accepts JPEG input, so other supported formats are re-encoded
// first; a decode failure surfaces here as the extraction error.
func (e *DlibExtractor) ExtractFaces(ctx context.Context, imageData []byte) ([]Face, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jpegData, err := imaging.EnsureJPEG(imageData)
	if err != nil {
		return nil, err
	}

	detected, err := e.rec.Recognize(jpegData)
	if err != nil {
		return nil, fmt.Errorf("face recognition failed: %w", err)
	}

	faces := make([]Face, 0, len(detected))
	for i, f := range detected {
		desc := [128]float32(f.Descriptor)
		faces = append(faces, Face{
			Index:     i,
			Dim:       len(desc),
			Embedding: desc[:],
			BBox: []float64{
				float64(f.Rectangle.Min.X),
				float64(f.Rectangle.Min.Y),
				float64(f.Rectangle.Max.X),
				float64(f.Rectangle.Max.Y),
			},
		})
	}
	return faces, nil
}

// Name returns the backend identifier.
func (e *DlibExtractor) Name() string {
	return "dlib"
}

// Close releases the dlib recognizer resources.
func (e *DlibExtractor) Close() {
	e.rec.Close()
}
