package composer

import (
	"math"
	"sort"
)

// CategorySummary compares one category's calories with its share of the target.
type CategorySummary struct {
	Category   string `json:"category"`
	Grams      int    `json:"grams"`
	Kcal       int    `json:"kcal"`
	TargetKcal int    `json:"targetKcal"`
	Diff       int    `json:"diff"` // target minus current
}

// Summary is the composer's read-out for a selection.
type Summary struct {
	Target          int               `json:"target"`
	TotalKcal       int               `json:"totalKcal"`
	MinKcal         int               `json:"minKcal"`
	MaxKcal         int               `json:"maxKcal"`
	WithinTolerance bool              `json:"withinTolerance"`
	Portions        int               `json:"portions"`
	SurplusKcal     int               `json:"surplusKcal"`
	Categories      []CategorySummary `json:"categories"`
}

// Summarize builds a Summary without a Session.
func Summarize(target float64, rules Rules, catalog []Food, sel Selection, portions int) (Summary, error) {
	if err := rules.Validate(); err != nil {
		return Summary{}, err
	}
	c := rules.compile()
	return summarize(c, newAllocator(c, catalog), target, sel, portions), nil
}

func summarize(c compiled, a *allocator, target float64, sel Selection, portions int) Summary {
	target = math.Max(0, finite(target))
	if portions <= 0 {
		portions = 1
	}

	type acc struct {
		name  string
		grams int
		kcal  int
	}
	byCategory := make(map[string]*acc)
	total := 0
	for _, id := range sortedIDs(sel) {
		f, ok := a.foods[id]
		if !ok {
			continue
		}
		kcal := roundHalfUp(float64(sel[id]) * f.KcalPerGram())
		key := f.categoryKey()
		entry, ok := byCategory[key]
		if !ok {
			name := f.Category
			if name == "" {
				name = DefaultCategory
			}
			entry = &acc{name: name}
			byCategory[key] = entry
		}
		entry.grams += sel[id]
		entry.kcal += kcal
		total += kcal
	}

	out := Summary{
		Target:      roundHalfUp(target),
		TotalKcal:   total,
		MinKcal:     roundHalfUp(target * (1 - c.tolerance)),
		MaxKcal:     int(math.Floor(target * (1 + c.tolerance))),
		Portions:    portions,
		SurplusKcal: max(0, (roundHalfUp(target)-total)*portions),
	}
	out.WithinTolerance = target > 0 &&
		float64(total) >= target*(1-c.tolerance) &&
		float64(total) <= target*(1+c.tolerance)

	seen := make(map[string]bool, len(c.categories))
	for _, cat := range c.categories {
		seen[cat] = true
		cs := CategorySummary{
			Category:   c.display[cat],
			TargetKcal: roundHalfUp(target * c.ratios[cat]),
		}
		if entry, ok := byCategory[cat]; ok {
			cs.Grams = entry.grams
			cs.Kcal = entry.kcal
		}
		cs.Diff = cs.TargetKcal - cs.Kcal
		out.Categories = append(out.Categories, cs)
	}

	extra := make([]CategorySummary, 0)
	for key, entry := range byCategory {
		if seen[key] {
			continue
		}
		extra = append(extra, CategorySummary{
			Category: entry.name,
			Grams:    entry.grams,
			Kcal:     entry.kcal,
			Diff:     -entry.kcal,
		})
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Category < extra[j].Category })
	out.Categories = append(out.Categories, extra...)

	return out
}
