// Package grading holds the numeric rules shared by the weight ledger and
// the grade and attendance aggregators.
package grading

import (
	"math"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

const (
	// Epsilon absorbs rounding from repeated percentage arithmetic.
	Epsilon = 1e-6
	// Budget is the full weight of a course, in percentage points.
	Budget = 100.0
	// FractionThreshold is the largest weight sum still read as 0–1 fractions.
	FractionThreshold = 1.5
)

// UnitScale returns the factor that converts authored weights to percentage points.
// An explicit unit wins; otherwise weights summing to at most FractionThreshold
// are read as fractions.
func UnitScale(unit models.WeightUnit, sum float64) float64 {
	switch unit {
	case models.WeightUnitFraction:
		return 100
	case models.WeightUnitPercent:
		return 1
	}
	if sum > 0 && sum <= FractionThreshold {
		return 100
	}
	return 1
}

// Sum adds the given weights.
func Sum(weights []float64) float64 {
	var total float64
	for _, w := range weights {
		total += w
	}
	return total
}

// ExceedsBudget reports whether total is over 100 by more than Epsilon.
func ExceedsBudget(total float64) bool {
	return total > Budget+Epsilon
}

// MeetsBudget reports whether total equals 100 within Epsilon.
func MeetsBudget(total float64) bool {
	return math.Abs(total-Budget) <= Epsilon
}

// Clamp bounds value to [0,100].
func Clamp(value float64) float64 {
	switch {
	case value < 0:
		return 0
	case value > Budget:
		return Budget
	default:
		return value
	}
}

// WeightedScore is one contribution to a weighted average.
type WeightedScore struct {
	Percent float64
	Weight  float64
}

// WeightedAverage returns sum(percent*weight)/sum(weight), or 0 when no weight contributes.
func WeightedAverage(scores []WeightedScore) float64 {
	var numerator, denominator float64
	for _, score := range scores {
		numerator += score.Percent * score.Weight
		denominator += score.Weight
	}
	if denominator <= 0 {
		return 0
	}
	return numerator / denominator
}

// Mean returns the arithmetic mean and false for an empty input.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return Sum(values) / float64(len(values)), true
}

// AttendancePercent returns round(100*attended/total); no sessions count as full attendance.
func AttendancePercent(attended, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(100 * float64(attended) / float64(total)))
}
