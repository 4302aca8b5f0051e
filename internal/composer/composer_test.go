package composer

import (
	"math"
	"testing"

	"github.com/arielallagbe23/mealprep/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []Food {
	return []Food{
		{ID: "rice", Name: "Basmati rice", Category: "Starches", CaloriesPer100g: 350},
		{ID: "pasta", Name: "Pasta", Category: "Starches", CaloriesPer100g: 360},
		{ID: "chicken", Name: "Raw chicken breast", Category: "Proteins", CaloriesPer100g: 120},
		{ID: "salmon", Name: "Salmon", Category: "Proteins", CaloriesPer100g: 200},
		{ID: "broccoli", Name: "Broccoli", Category: "Vegetables", CaloriesPer100g: 35},
		{ID: "oil", Name: "Olive oil", Category: "Sides", CaloriesPer100g: 900},
		{ID: "water", Name: "Sparkling water", Category: "", CaloriesPer100g: 0},
	}
}

func defaultRules(t *testing.T) Rules {
	t.Helper()
	rules, err := NewRules(config.DefaultComposerConfig())
	require.NoError(t, err)
	return rules
}

func ratiosOnly(ratios map[string]float64) Rules {
	return Rules{
		Ratios:        ratios,
		MinDensity:    DefaultMinDensity,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
	}
}

func intp(v int) *int { return &v }

func assertRoundingClosure(t *testing.T, sel Selection) {
	t.Helper()
	for id, g := range sel {
		assert.GreaterOrEqual(t, g, 0, "negative grams for %s", id)
		assert.Zero(t, g%5, "grams for %s not a multiple of 5: %d", id, g)
	}
}

func TestTarget(t *testing.T) {
	t.Run("lunch example", func(t *testing.T) {
		assert.Equal(t, 1020, Target(2200, 500, Lunch))
	})

	t.Run("dinner takes the remaining share", func(t *testing.T) {
		assert.Equal(t, 680, Target(2200, 500, Dinner))
	})

	t.Run("breakfast above daily clamps to zero", func(t *testing.T) {
		assert.Equal(t, 0, Target(400, 500, Lunch))
	})

	t.Run("non-finite input is zero", func(t *testing.T) {
		assert.Equal(t, 0, Target(math.NaN(), 500, Lunch))
		assert.Equal(t, 1200, Target(2000, math.Inf(1), Lunch))
	})

	t.Run("half rounds up", func(t *testing.T) {
		// 1005 * 0.4 = 402, 1001.25 * 0.4 = 400.5
		assert.Equal(t, 402, Target(1005, 0, Dinner))
		assert.Equal(t, 401, Target(1001.25, 0, Dinner))
	})
}

func TestParseMealType(t *testing.T) {
	for _, in := range []string{"lunch", "LUNCH", "dejeuner", "Déjeuner"} {
		assert.Equal(t, Lunch, ParseMealType(in), in)
	}
	for _, in := range []string{"dinner", "diner", "Dîner", "", "brunch"} {
		assert.Equal(t, Dinner, ParseMealType(in), in)
	}
	assert.Equal(t, "Lunch", Lunch.Label())
	assert.Equal(t, "Dinner", Dinner.Label())
}

func TestRound5(t *testing.T) {
	assert.Equal(t, 0, Round5(-12))
	assert.Equal(t, 0, Round5(2.4))
	assert.Equal(t, 5, Round5(2.5))
	assert.Equal(t, 95, Round5(94.857))
	assert.Equal(t, 405, Round5(404.17))
	assert.Equal(t, 0, Round5(math.NaN()))
	assert.Equal(t, maxGrams, Round5(math.Inf(1)))
}

func TestRulesValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		rules := defaultRules(t)
		assert.Equal(t, DefaultMaxIterations, rules.MaxIterations)
	})

	tests := map[string]Rules{
		"empty ratios":       ratiosOnly(nil),
		"negative ratio":     ratiosOnly(map[string]float64{"Starches": -0.1}),
		"ratio above one":    ratiosOnly(map[string]float64{"Starches": 1.5}),
		"colliding names":    ratiosOnly(map[string]float64{"Féculents": 0.3, "feculents": 0.2}),
		"min above max":      ratiosOnly(map[string]float64{"Sides": 0.1}).WithCaps(map[string]Cap{"Sides": {Min: intp(50), Max: intp(25)}}),
		"negative min cap":   ratiosOnly(map[string]float64{"Sides": 0.1}).WithCaps(map[string]Cap{"Sides": {Min: intp(-5)}}),
		"zero max iteration": {Ratios: map[string]float64{"Sides": 0.1}, MinDensity: 0.01},
	}
	for name, rules := range tests {
		t.Run(name, func(t *testing.T) {
			err := rules.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRules)
		})
	}

	t.Run("allocate surfaces invalid rules", func(t *testing.T) {
		_, err := Allocate(500, ratiosOnly(nil), testCatalog(), nil)
		assert.ErrorIs(t, err, ErrInvalidRules)
	})
}

func TestAllocate_NonPositiveTargetIsNoop(t *testing.T) {
	rules := defaultRules(t)
	sel := Selection{"rice": 150, "ghost": 40}

	for _, target := range []float64{0, -100, math.NaN()} {
		out, err := Allocate(target, rules, testCatalog(), sel)
		require.NoError(t, err)
		assert.Equal(t, sel, out)
	}

	out, _ := Allocate(0, rules, testCatalog(), sel)
	out["rice"] = 5
	assert.Equal(t, 150, sel["rice"], "result must not alias the input")
}

func TestAllocate_SeedsAndAppliesCapsAndCeilings(t *testing.T) {
	out, err := Allocate(1020, defaultRules(t), testCatalog(), Selection{})
	require.NoError(t, err)

	// one food per ratio category; the chicken ceiling undercuts proteins
	assert.Equal(t, Selection{
		"rice":     95,
		"chicken":  300,
		"broccoli": 200,
		"oil":      15,
	}, out)
	assertRoundingClosure(t, out)

	total := TotalKcal(testCatalog(), out)
	assert.InDelta(t, 897.5, total, 1e-9)
	assert.LessOrEqual(t, total, 1020*1.05)
}

func TestAllocate_DropsFoodsOutsideRatioCategories(t *testing.T) {
	out, err := Allocate(1020, defaultRules(t), testCatalog(), Selection{"rice": 100, "water": 250, "ghost": 100})
	require.NoError(t, err)

	assert.Contains(t, out, "rice")
	assert.NotContains(t, out, "water")
	assert.NotContains(t, out, "ghost")
}

func TestAllocate_EvenSplitWithinCategory(t *testing.T) {
	rules := ratiosOnly(map[string]float64{"Starches": 1})

	out, err := Allocate(700, rules, testCatalog(), Selection{"rice": 100, "pasta": 100})
	require.NoError(t, err)

	// 350 kcal each: 100 g rice, 97.2 g pasta -> 95 g, then scaled by 700/692
	assert.Equal(t, 100, out["rice"])
	assert.Equal(t, 95, out["pasta"])
	assertRoundingClosure(t, out)
}

func TestAllocate_GreedyCorrectionRespectsCategoryMinimum(t *testing.T) {
	catalog := []Food{
		{ID: "a1", Name: "Dense", Category: "A", CaloriesPer100g: 400},
		{ID: "b1", Name: "Light", Category: "B", CaloriesPer100g: 200},
	}
	rules := ratiosOnly(map[string]float64{"A": 0.5, "B": 0.5}).
		WithCaps(map[string]Cap{"B": {Min: intp(100)}})

	t.Run("feasible overshoot is trimmed from the densest food", func(t *testing.T) {
		out, err := Allocate(200, rules, catalog, Selection{"a1": 100, "b1": 100})
		require.NoError(t, err)

		assert.Equal(t, Selection{"a1": 0, "b1": 100}, out)
		assert.LessOrEqual(t, TotalKcal(catalog, out), 200*1.05)
	})

	t.Run("infeasible minimum leaves a best effort", func(t *testing.T) {
		out, err := Allocate(100, rules, catalog, Selection{"a1": 100, "b1": 100})
		require.NoError(t, err)

		assert.Equal(t, Selection{"a1": 0, "b1": 100}, out)
		assert.Greater(t, TotalKcal(catalog, out), 100*1.05)
	})
}

func TestAllocate_CategoryCapScalesMembers(t *testing.T) {
	catalog := []Food{
		{ID: "v1", Name: "Broccoli", Category: "Vegetables", CaloriesPer100g: 35},
		{ID: "v2", Name: "Green beans", Category: "Vegetables", CaloriesPer100g: 30},
	}
	rules := ratiosOnly(map[string]float64{"Vegetables": 1}).
		WithCaps(map[string]Cap{"Vegetables": {Min: intp(200), Max: intp(450)}})

	a := newAllocator(rules.compile(), catalog)
	sel := Selection{"v1": 300, "v2": 300}
	a.applyCategoryCaps(sel)

	assert.Equal(t, Selection{"v1": 225, "v2": 225}, sel)
}

func TestAllocate_ZeroDensityUsesFloor(t *testing.T) {
	catalog := []Food{
		{ID: "water", Name: "Water", Category: "Drinks", CaloriesPer100g: 0},
		{ID: "rice", Name: "Rice", Category: "Starches", CaloriesPer100g: 350},
	}
	rules := ratiosOnly(map[string]float64{"Drinks": 0.01, "Starches": 0.99})

	out, err := Allocate(1000, rules, catalog, Selection{})
	require.NoError(t, err)

	// 10 kcal at 0.01 kcal/g, then scaled along with the rice
	assert.Equal(t, 1005, out["water"])
	assert.Equal(t, 285, out["rice"])
	assertRoundingClosure(t, out)
	assert.LessOrEqual(t, TotalKcal(catalog, out), 1000*1.05)
}

func TestAllocate_ToleranceFromAbove(t *testing.T) {
	rules := ratiosOnly(map[string]float64{"Starches": 0.325, "Proteins": 0.475, "Vegetables": 0.05, "Sides": 0.15})
	catalog := testCatalog()[:6]
	selections := []Selection{
		{},
		{"rice": 100, "salmon": 100},
		{"rice": 100, "pasta": 100, "chicken": 100, "salmon": 100, "broccoli": 100, "oil": 100},
		{"oil": 10, "broccoli": 400},
	}

	for target := 150.0; target <= 2500; target += 85 {
		for _, sel := range selections {
			out, err := Allocate(target, rules, catalog, sel)
			require.NoError(t, err)
			assertRoundingClosure(t, out)
			assert.LessOrEqual(t, TotalKcal(catalog, out), target*1.05, "target=%v sel=%v", target, sel)
		}
	}
}

func TestAllocate_IterationGuardStopsGreedyLoop(t *testing.T) {
	catalog := []Food{
		{ID: "chicken", Name: "Raw chicken breast", Category: "Proteins", CaloriesPer100g: 120},
		{ID: "oil", Name: "Olive oil", Category: "Sides", CaloriesPer100g: 900},
	}
	// a 100 g oil minimum keeps the meal far above any reachable band
	rules := ratiosOnly(map[string]float64{"Proteins": 0.5, "Sides": 0.5})
	rules.Caps = map[string]Cap{"Sides": {Min: intp(100)}}
	sel := Selection{"chicken": 100, "oil": 10}
	const target = 200.0

	unbounded, err := Allocate(target, rules, catalog, sel)
	require.NoError(t, err)
	assert.Equal(t, Selection{"chicken": 0, "oil": 100}, unbounded)

	rules.MaxIterations = 2
	guarded, err := Allocate(target, rules, catalog, sel)
	require.NoError(t, err)
	assertRoundingClosure(t, guarded)

	// caps leave chicken at 90 g; two steps remove exactly 2*GramStep
	assert.Equal(t, 90-2*GramStep, guarded["chicken"])
	assert.Equal(t, 100, guarded["oil"])
	assert.Greater(t, TotalKcal(catalog, guarded), target*(1+DefaultTolerance))
}

func TestAllocate_Idempotent(t *testing.T) {
	rules := defaultRules(t)
	catalog := testCatalog()
	sel := Selection{"pasta": 80, "salmon": 120, "broccoli": 100}

	first, err := Allocate(900, rules, catalog, sel)
	require.NoError(t, err)
	second, err := Allocate(900, rules, catalog, sel)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	again, err := Allocate(900, rules, catalog, first)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestAllocate_NormalizedCategoryAndCeilingKeys(t *testing.T) {
	catalog := []Food{
		{ID: "p1", Name: "Blanc de poulet cru", Category: "Protéines", CaloriesPer100g: 120},
	}
	rules := ratiosOnly(map[string]float64{"proteines": 1})
	rules.ItemCeilings = map[string]int{"BLANC DE POULET CRU": 300}

	out, err := Allocate(1000, rules, catalog, Selection{})
	require.NoError(t, err)
	assert.Equal(t, Selection{"p1": 300}, out)
}
