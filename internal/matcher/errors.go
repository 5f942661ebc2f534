package matcher

import (
	"errors"
	"fmt"
)

// ErrNoFaceInReference is returned when the reference image contains no
// detectable face.
var ErrNoFaceInReference = errors.New("no face found in reference image")

// SetupReason classifies why a run could not start.
type SetupReason string

const (
	ReasonReferenceMissing  SetupReason = "reference_missing"
	ReasonReferenceInvalid  SetupReason = "reference_invalid"
	ReasonNoFaceInReference SetupReason = "no_face_in_reference"
	ReasonDatasetMissing    SetupReason = "dataset_missing"
	ReasonOutputUnwritable  SetupReason = "output_unwritable"
)

// SetupError is a fatal pre-batch failure. When a run fails with a
// SetupError no candidate has been touched and no statistics exist.
type SetupError struct {
	Reason SetupReason
	Err    error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup failed (%s): %v", e.Reason, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// AsSetupError returns the SetupError wrapped in err, or nil.
func AsSetupError(err error) *SetupError {
	var se *SetupError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
