// Package wellness turns a weight/height pair into a BMI and a coarse
// wellness category with a fixed piece of advice.
package wellness

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type Category string

const (
	Underweight  Category = "Underweight"
	NormalWeight Category = "Normal Weight"
	Overweight   Category = "Overweight"
	Obese        Category = "Obese"
)

type band struct {
	lo, hi   float64 // lo <= bmi < hi
	category Category
	advice   string
}

// bands are evaluated in order and the first match wins. BMIs in the gaps
// [24.9, 25) and [29.9, +inf) fall through to the final Obese entry.
var bands = []band{
	{math.Inf(-1), 18.5, Underweight, "Consider consulting a nutritionist to gain weight healthily."},
	{18.5, 24.9, NormalWeight, "Great job! Maintain your current lifestyle."},
	{25, 29.9, Overweight, "Incorporating more physical activity could be beneficial."},
}

var fallback = band{category: Obese, advice: "Please consult a healthcare provider for personalized advice."}

// Assessment is the per-request result; it is never persisted.
type Assessment struct {
	BMI     float64  `json:"bmi"`
	Status  Category `json:"status"`
	Message string   `json:"message"`
}

// BMI returns weight / (height in metres)^2 rounded to two decimals.
// A zero height or a non-finite input yields 0.
func BMI(weightKg, heightCm float64) float64 {
	if heightCm == 0 || !finite(weightKg) || !finite(heightCm) {
		return 0
	}

	heightM := heightCm / 100
	bmi := weightKg / (heightM * heightM)
	if !finite(bmi) {
		return 0
	}

	return round2(bmi)
}

// round2 rounds the exact binary value to two decimals. Exact ties go to the
// even digit.
func round2(f float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 2, 64), 64)
	if err != nil {
		return 0
	}
	return r
}

// BMIFromInput is BMI over loosely typed request values. Anything that is
// not a number or a numeric string yields 0.
func BMIFromInput(weight, height any) float64 {
	w, ok := toFloat(weight)
	if !ok {
		return 0
	}
	h, ok := toFloat(height)
	if !ok {
		return 0
	}
	return BMI(w, h)
}

// Classify maps any BMI, NaN included, to exactly one category.
func Classify(bmi float64) (Category, string) {
	for _, b := range bands {
		if bmi >= b.lo && bmi < b.hi {
			return b.category, b.advice
		}
	}
	return fallback.category, fallback.advice
}

func Assess(weight, height any) Assessment {
	bmi := BMIFromInput(weight, height)
	status, message := Classify(bmi)

	return Assessment{BMI: bmi, Status: status, Message: message}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
