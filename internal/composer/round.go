package composer

import "math"

// GramStep is the granularity of every gram amount the composer produces.
const GramStep = 5

// maxGrams keeps huge figures from zero-density foods inside int range.
const maxGrams = math.MaxInt32 - math.MaxInt32%GramStep

// Round5 rounds g to the nearest multiple of 5, never below 0.
func Round5(g float64) int {
	if math.IsNaN(g) || g <= 0 {
		return 0
	}
	if g >= maxGrams {
		return maxGrams
	}
	return int(math.Floor(g/GramStep+0.5)) * GramStep
}
