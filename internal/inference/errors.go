package inference

import (
	"errors"
	"fmt"
)

// Error kinds reported by the pipeline. All of them serialize to the same
// ErrorResult document; callers that need to branch use errors.Is.
var (
	ErrInputParse        = errors.New("input parse error")
	ErrArtifactLoad      = errors.New("artifact load error")
	ErrFeatureValidation = errors.New("feature validation error")
	ErrInference         = errors.New("inference error")
)

// wrap tags err with kind, producing "<kind>: <cause>"
func wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}
