package inference

import "slices"

var (
	detectedRecommendations = []string{
		"Immediate urine culture recommended",
		"Consider antibiotic therapy",
		"Monitor kidney function closely",
		"Increase fluid intake",
		"Follow-up in 48-72 hours",
	}

	notDetectedRecommendations = []string{
		"Continue routine monitoring",
		"Maintain adequate hydration",
		"Regular follow-up as scheduled",
	}
)

// Recommend returns the risk level and follow-up actions for a diagnosis
func Recommend(diagnosis string) (string, []string) {
	if diagnosis == DiagnosisDetected {
		return RiskHigh, slices.Clone(detectedRecommendations)
	}
	return RiskLow, slices.Clone(notDetectedRecommendations)
}
