package usecase

import (
	"math"

	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

// Composite combines weighted component scores. Weights are renormalized
// over the components actually present, so a missing signal redistributes
// its weight instead of dragging the score down.
func Composite(components map[string]domain.Component) float64 {
	var weighted, total float64
	for _, c := range components {
		if c.Weight <= 0 {
			continue
		}
		weighted += c.Value * c.Weight
		total += c.Weight
	}
	if total == 0 {
		return 0
	}
	return domain.ClampScore(weighted / total)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
