package composer

import (
	"math"
	"strings"

	"github.com/arielallagbe23/mealprep/internal/textnorm"
)

// MealType selects the share of the post-breakfast calories a meal receives.
type MealType string

const (
	Lunch  MealType = "lunch"
	Dinner MealType = "dinner"
)

const (
	lunchRatio  = 0.6
	dinnerRatio = 0.4
)

// ParseMealType accepts English and French spellings. Anything that is not
// lunch is treated as dinner.
func ParseMealType(s string) MealType {
	switch textnorm.Normalize(strings.ReplaceAll(s, "_", " ")) {
	case "lunch", "dejeuner":
		return Lunch
	default:
		return Dinner
	}
}

// Ratio is the fraction of the remaining calories given to the meal type.
func (m MealType) Ratio() float64 {
	if m == Lunch {
		return lunchRatio
	}
	return dinnerRatio
}

// Label is the display name used in auto-generated meal names.
func (m MealType) Label() string {
	if m == Lunch {
		return "Lunch"
	}
	return "Dinner"
}

// Remaining is max(0, daily - breakfast). Non-finite input counts as 0.
func Remaining(dailyKcal, breakfastKcal float64) float64 {
	return math.Max(0, finite(dailyKcal)-finite(breakfastKcal))
}

// Target computes the calorie goal for one meal. It never fails: bad input
// degrades to a target of 0, which disables allocation.
func Target(dailyKcal, breakfastKcal float64, mealType MealType) int {
	return roundHalfUp(Remaining(dailyKcal, breakfastKcal) * mealType.Ratio())
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// roundHalfUp rounds .5 towards +Inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
