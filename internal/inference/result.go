package inference

import (
	"encoding/json"
	"fmt"
	"io"
)

// Diagnosis strings written to the result document
const (
	DiagnosisDetected    = "SB Detected"
	DiagnosisNotDetected = "SB Not Detected"
	DiagnosisError       = "Error"
)

// Risk levels attached when recommendations are requested
const (
	RiskHigh = "High"
	RiskLow  = "Low"
)

// PredictionResult is the success document
type PredictionResult struct {
	Diagnosis       string   `json:"diagnosis"`
	Confidence      float64  `json:"confidence"`
	ProbabilityNoSB float64  `json:"probability_no_sb"`
	ProbabilitySB   float64  `json:"probability_sb"`
	RiskLevel       string   `json:"risk_level,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// ErrorResult is the failure document.
//
// Confidence is always the literal 0.0, which encoding/json would
// otherwise print as 0.
type ErrorResult struct {
	Error      string      `json:"error"`
	Diagnosis  string      `json:"diagnosis"`
	Confidence json.Number `json:"confidence"`
}

// NewErrorResult builds the failure document for err
func NewErrorResult(err error) *ErrorResult {
	return &ErrorResult{
		Error:      err.Error(),
		Diagnosis:  DiagnosisError,
		Confidence: "0.0",
	}
}

// Emit writes v to w as a single line of compact JSON followed by a newline
func Emit(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to emit result: %w", err)
	}
	return nil
}
