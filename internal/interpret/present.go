// Package interpret turns raw model output into what front ends display.
package interpret

import (
	"math"

	"github.com/Alias1177/CardioPredictor/models"
)

const (
	LabelPositive = "Heart Patient"
	LabelNegative = "Healthy"
)

// Present builds the presentation view of a result.
// Both percentages are rounded to one decimal independently, so their sum can drift from 100 by 0.1.
func Present(result models.PredictionResult) models.PresentationResult {
	p := Clamp(result.Probability)
	isPositive := result.Label == 1

	classification := LabelNegative
	if isPositive {
		classification = LabelPositive
	}

	return models.PresentationResult{
		IsPositive:     isPositive,
		PositivePct:    roundTenth(p * 100),
		NegativePct:    roundTenth((1 - p) * 100),
		Classification: classification,
	}
}

// Clamp limits p to [0,1]. NaN is treated as 0.
func Clamp(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(1, p))
}

// Confidence is the whole-percent confidence in the predicted label
func Confidence(result models.PredictionResult) int {
	p := Clamp(result.Probability)
	if result.Label != 1 {
		p = 1 - p
	}
	return int(math.Round(p * 100))
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
