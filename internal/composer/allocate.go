package composer

import (
	"math"
	"sort"

	"github.com/arielallagbe23/mealprep/internal/textnorm"
)

// DefaultCategory is assumed for foods without a category.
const DefaultCategory = "Other"

// SeedGrams is the amount given to a food when it is added or seeded.
const SeedGrams = 100

// Food is the composer's view of a catalog entry.
type Food struct {
	ID              string
	Name            string
	Category        string
	CaloriesPer100g float64
}

// KcalPerGram is the caloric density; negative or non-finite values count as 0.
func (f Food) KcalPerGram() float64 {
	v := f.CaloriesPer100g
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v / 100
}

func (f Food) categoryKey() string {
	if key := textnorm.Normalize(f.Category); key != "" {
		return key
	}
	return textnorm.Normalize(DefaultCategory)
}

// Selection maps food id to grams.
type Selection map[string]int

// Clone returns an independent copy. A nil selection clones to an empty one.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for id, g := range s {
		out[id] = g
	}
	return out
}

// Allocate sizes the selected foods so the meal lands near target kcal.
//
// The returned selection replaces sel. It only holds foods of categories with
// a positive share in the ratio table; entries may be 0 g when caps force it.
// A target <= 0 returns an unchanged copy of sel. Only malformed rules fail.
func Allocate(target float64, rules Rules, catalog []Food, sel Selection) (Selection, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(target) || target <= 0 {
		return sel.Clone(), nil
	}

	a := newAllocator(rules.compile(), catalog)
	return a.allocate(target, sel), nil
}

type allocator struct {
	rules   compiled
	catalog []Food
	foods   map[string]Food
}

func newAllocator(rules compiled, catalog []Food) *allocator {
	foods := make(map[string]Food, len(catalog))
	for _, f := range catalog {
		if _, dup := foods[f.ID]; !dup {
			foods[f.ID] = f
		}
	}
	return &allocator{rules: rules, catalog: catalog, foods: foods}
}

func (a *allocator) allocate(target float64, sel Selection) Selection {
	current := sel.Clone()
	if len(current) == 0 {
		current = a.seed()
	}

	next := a.splitEvenly(target, current)
	a.scaleToTarget(target, next)
	a.applyCategoryCaps(next)
	a.applyItemCeilings(next)
	a.adjustDown(target*(1+a.rules.tolerance), next)

	return next
}

// seed picks the first catalog food of every ratio category.
func (a *allocator) seed() Selection {
	out := make(Selection)
	for _, cat := range a.rules.categories {
		for _, f := range a.catalog {
			if f.categoryKey() == cat {
				out[f.ID] = SeedGrams
				break
			}
		}
	}
	return out
}

func (a *allocator) splitEvenly(target float64, current Selection) Selection {
	byCategory := make(map[string][]Food)
	for _, id := range sortedIDs(current) {
		f, ok := a.foods[id]
		if !ok {
			continue
		}
		key := f.categoryKey()
		byCategory[key] = append(byCategory[key], f)
	}

	next := make(Selection)
	for _, cat := range a.rules.categories {
		items := byCategory[cat]
		catTarget := roundHalfUp(target * a.rules.ratios[cat])
		if len(items) == 0 || catTarget <= 0 {
			continue
		}

		perItem := float64(catTarget) / float64(len(items))
		for _, f := range items {
			density := f.KcalPerGram()
			if density <= 0 {
				density = a.rules.minDensity
			}
			next[f.ID] = Round5(perItem / density)
		}
	}
	return next
}

func (a *allocator) scaleToTarget(target float64, next Selection) {
	total := a.totalKcal(next)
	if total <= 0 {
		return
	}
	factor := target / total
	for id, g := range next {
		next[id] = Round5(float64(g) * factor)
	}
}

func (a *allocator) applyCategoryCaps(next Selection) {
	members := a.membersByCategory(next)
	for cat, cp := range a.rules.caps {
		ids := members[cat]
		if len(ids) == 0 {
			continue
		}

		total := 0
		for _, id := range ids {
			total += next[id]
		}
		clamped := clampInt(total, cp)
		if clamped == total {
			continue
		}

		factor := float64(clamped) / float64(max(total, 1))
		for _, id := range ids {
			next[id] = Round5(float64(next[id]) * factor)
		}
	}
}

func (a *allocator) applyItemCeilings(next Selection) {
	for id, g := range next {
		ceiling, ok := a.rules.ceilingFor(a.foods[id])
		if ok && g > ceiling {
			next[id] = floorStep(ceiling)
		}
	}
}

// adjustDown removes 5 g at a time from the densest movable food until the
// total is at most limit. Every step lowers the total, so the loop ends when
// nothing can move or the iteration guard trips.
func (a *allocator) adjustDown(limit float64, next Selection) {
	total := a.totalKcal(next)
	if total <= limit {
		return
	}

	candidates := make([]string, 0, len(next))
	for id := range next {
		if a.foods[id].KcalPerGram() > 0 {
			candidates = append(candidates, id)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		di, dj := a.foods[candidates[i]].KcalPerGram(), a.foods[candidates[j]].KcalPerGram()
		if di != dj {
			return di > dj
		}
		return candidates[i] < candidates[j]
	})

	catGrams := make(map[string]int)
	for id, g := range next {
		catGrams[a.foods[id].categoryKey()] += g
	}

	for i := 0; i < a.rules.maxIterations && total > limit; i++ {
		moved := false
		for _, id := range candidates {
			if next[id] < GramStep {
				continue
			}
			cat := a.foods[id].categoryKey()
			if cp, ok := a.rules.caps[cat]; ok && cp.Min != nil && catGrams[cat]-GramStep < *cp.Min {
				continue
			}

			next[id] -= GramStep
			catGrams[cat] -= GramStep
			moved = true
			break
		}
		if !moved {
			return
		}
		total = a.totalKcal(next)
	}
}

func (a *allocator) membersByCategory(sel Selection) map[string][]string {
	out := make(map[string][]string)
	for _, id := range sortedIDs(sel) {
		f, ok := a.foods[id]
		if !ok {
			continue
		}
		key := f.categoryKey()
		out[key] = append(out[key], id)
	}
	return out
}

func (a *allocator) totalKcal(sel Selection) float64 {
	total := 0.0
	for id, g := range sel {
		total += float64(g) * a.foods[id].KcalPerGram()
	}
	return total
}

// TotalKcal is the unrounded calorie sum of sel. Unknown foods count as 0.
func TotalKcal(catalog []Food, sel Selection) float64 {
	return newAllocator(compiled{}, catalog).totalKcal(sel)
}

func clampInt(v int, cp Cap) int {
	if cp.Min != nil && v < *cp.Min {
		v = *cp.Min
	}
	if cp.Max != nil && v > *cp.Max {
		v = *cp.Max
	}
	return v
}

// floorStep rounds a ceiling down so the clamped amount never exceeds it.
func floorStep(g int) int {
	if g <= 0 {
		return 0
	}
	return g - g%GramStep
}

func sortedIDs(sel Selection) []string {
	ids := make([]string, 0, len(sel))
	for id := range sel {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
