package scoring

import (
	"fmt"
	"math"
)

// Categories is the canonical attribute order used everywhere ties need a
// deterministic winner.
var Categories = []string{
	"fragrance", "flavor", "aftertaste", "acidity", "body",
	"balance", "uniformity", "clean_cup", "sweetness", "overall",
}

// Attributes holds the ten SCA sub-scores plus the defects deduction for a
// single sample. Primary attributes and overall run 6.0–10.0 in quarter
// points; uniformity, clean cup and sweetness run 0–10 in steps of 2.
type Attributes struct {
	Fragrance  float64 `json:"fragrance"`
	Flavor     float64 `json:"flavor"`
	Aftertaste float64 `json:"aftertaste"`
	Acidity    float64 `json:"acidity"`
	Body       float64 `json:"body"`
	Balance    float64 `json:"balance"`
	Uniformity float64 `json:"uniformity"`
	CleanCup   float64 `json:"clean_cup"`
	Sweetness  float64 `json:"sweetness"`
	Overall    float64 `json:"overall"`
	Defects    float64 `json:"defects"`
}

// NewAttributes returns the cupping form defaults: primaries at the scale
// floor, cup attributes at the full 10.
func NewAttributes() Attributes {
	return Attributes{
		Fragrance:  6.0,
		Flavor:     6.0,
		Aftertaste: 6.0,
		Acidity:    6.0,
		Body:       6.0,
		Balance:    6.0,
		Uniformity: 10.0,
		CleanCup:   10.0,
		Sweetness:  10.0,
		Overall:    6.0,
	}
}

// Total computes the SCA score: the sum of all ten attributes minus the
// defects deduction. Pure arithmetic over already-validated inputs; behavior
// outside the validated domain is unspecified.
func (a Attributes) Total() float64 {
	return a.Fragrance + a.Flavor + a.Aftertaste + a.Acidity +
		a.Body + a.Balance + a.Uniformity + a.CleanCup +
		a.Sweetness + a.Overall - a.Defects
}

// Value returns the attribute named by one of Categories.
func (a Attributes) Value(category string) float64 {
	switch category {
	case "fragrance":
		return a.Fragrance
	case "flavor":
		return a.Flavor
	case "aftertaste":
		return a.Aftertaste
	case "acidity":
		return a.Acidity
	case "body":
		return a.Body
	case "balance":
		return a.Balance
	case "uniformity":
		return a.Uniformity
	case "clean_cup":
		return a.CleanCup
	case "sweetness":
		return a.Sweetness
	case "overall":
		return a.Overall
	}
	return 0
}

// Quality grades, inclusive lower bounds per the SCA convention.
const (
	GradeOutstanding = "Outstanding"
	GradeExcellent   = "Excellent"
	GradeVeryGood    = "Very Good"
	GradeGood        = "Good"
	GradeFair        = "Fair"
)

// Grades lists the grade labels from best to worst.
var Grades = []string{GradeOutstanding, GradeExcellent, GradeVeryGood, GradeGood, GradeFair}

// Grade maps a total score to its quality label. Boundaries are inclusive:
// 90 is Outstanding, 85 Excellent, 80 Very Good, 75 Good, below that Fair.
func Grade(total float64) string {
	switch {
	case total >= 90:
		return GradeOutstanding
	case total >= 85:
		return GradeExcellent
	case total >= 80:
		return GradeVeryGood
	case total >= 75:
		return GradeGood
	default:
		return GradeFair
	}
}

// NextGrade reports the nearest grade above the given total and how many
// points short of it the total is. ok is false once the total already sits
// in the top bracket.
func NextGrade(total float64) (grade string, points float64, ok bool) {
	bounds := []struct {
		grade string
		min   float64
	}{
		{GradeGood, 75},
		{GradeVeryGood, 80},
		{GradeExcellent, 85},
		{GradeOutstanding, 90},
	}
	for _, b := range bounds {
		if total < b.min {
			return b.grade, b.min - total, true
		}
	}
	return "", 0, false
}

// Validate checks that every attribute is inside its allowed domain. It must
// pass before Total or Grade results are trusted; the calculator itself
// never rejects input.
func Validate(a Attributes) error {
	primaries := []struct {
		name  string
		value float64
	}{
		{"fragrance", a.Fragrance},
		{"flavor", a.Flavor},
		{"aftertaste", a.Aftertaste},
		{"acidity", a.Acidity},
		{"body", a.Body},
		{"balance", a.Balance},
		{"overall", a.Overall},
	}
	for _, p := range primaries {
		if p.value < 6.0 || p.value > 10.0 {
			return fmt.Errorf("%s %.2f out of range [6.0, 10.0]", p.name, p.value)
		}
		if !quarterStep(p.value) {
			return fmt.Errorf("%s %.2f is not a 0.25 increment", p.name, p.value)
		}
	}

	cups := []struct {
		name  string
		value float64
	}{
		{"uniformity", a.Uniformity},
		{"clean_cup", a.CleanCup},
		{"sweetness", a.Sweetness},
	}
	for _, c := range cups {
		if c.value < 0 || c.value > 10 {
			return fmt.Errorf("%s %.2f out of range [0, 10]", c.name, c.value)
		}
		if !evenStep(c.value) {
			return fmt.Errorf("%s %.2f is not a step of 2", c.name, c.value)
		}
	}

	if a.Defects < 0 {
		return fmt.Errorf("defects %.2f must be non-negative", a.Defects)
	}
	return nil
}

func quarterStep(v float64) bool {
	scaled := v * 4
	return scaled == math.Trunc(scaled)
}

func evenStep(v float64) bool {
	if v != math.Trunc(v) {
		return false
	}
	return int(v)%2 == 0
}
