package domain

import "math"

// Category is a BMI classification.
type Category string

const (
	Underweight Category = "Underweight"
	Normal      Category = "Normal"
	Overweight  Category = "Overweight"
	Obese       Category = "Obese"
)

// Severity orders categories from Underweight (0) to Obese (3).
func (c Category) Severity() int {
	switch c {
	case Underweight:
		return 0
	case Normal:
		return 1
	case Overweight:
		return 2
	case Obese:
		return 3
	}
	return -1
}

// Categorize maps a BMI to its category. Thresholds are half-open, so a
// boundary value belongs to the higher category.
func Categorize(bmi float64) Category {
	switch {
	case bmi < 18.5:
		return Underweight
	case bmi < 25.0:
		return Normal
	case bmi < 30.0:
		return Overweight
	default:
		return Obese
	}
}

// ComputeBMI expects weight in kilograms and height in centimeters and
// rounds the result to one decimal place.
func ComputeBMI(weightKg, heightCm float64) float64 {
	h := heightCm / 100.0
	return roundTenth(weightKg / (h * h))
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
