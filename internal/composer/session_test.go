package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AddRemove(t *testing.T) {
	s, err := NewSession(defaultRules(t), testCatalog(), Selection{"rice": 42, "ghost": 100})
	require.NoError(t, err)

	assert.Equal(t, Selection{"rice": 40}, s.Selection())

	assert.True(t, s.Add("salmon"))
	assert.True(t, s.Add("rice"))
	assert.False(t, s.Add("ghost"))
	assert.Equal(t, Selection{"rice": 40, "salmon": 100}, s.Selection())

	s.Remove("rice")
	s.Remove("unknown")
	assert.Equal(t, Selection{"salmon": 100}, s.Selection())
}

func TestSession_Adjust(t *testing.T) {
	s, err := NewSession(defaultRules(t), testCatalog(), nil)
	require.NoError(t, err)

	t.Run("unselected food starts from zero", func(t *testing.T) {
		assert.Equal(t, 5, s.Adjust("rice", 5))
	})

	t.Run("item ceiling caps increments", func(t *testing.T) {
		require.True(t, s.Add("chicken"))
		assert.Equal(t, 300, s.Adjust("chicken", 500))
		assert.Equal(t, 300, s.Adjust("chicken", 5))
	})

	t.Run("reaching zero deselects", func(t *testing.T) {
		assert.Equal(t, 0, s.Adjust("chicken", -300))
		assert.NotContains(t, s.Selection(), "chicken")
		assert.Equal(t, 0, s.Adjust("rice", -20))
		assert.NotContains(t, s.Selection(), "rice")
	})

	t.Run("unknown food is ignored", func(t *testing.T) {
		assert.Equal(t, 0, s.Adjust("ghost", 50))
		assert.Empty(t, s.Selection())
	})
}

func TestSession_AllocateReplacesSelection(t *testing.T) {
	s, err := NewSession(defaultRules(t), testCatalog(), nil)
	require.NoError(t, err)

	s.Allocate(0)
	assert.Empty(t, s.Selection())

	s.Allocate(1020)
	assert.Equal(t, Selection{"rice": 95, "chicken": 300, "broccoli": 200, "oil": 15}, s.Selection())

	snapshot := s.Selection()
	snapshot["rice"] = 999
	assert.Equal(t, 95, s.Selection()["rice"])
}

func TestSummary(t *testing.T) {
	s, err := NewSession(defaultRules(t), testCatalog(), Selection{"rice": 100, "chicken": 200, "water": 500})
	require.NoError(t, err)

	sum := s.Summary(1020, 2)

	assert.Equal(t, 1020, sum.Target)
	assert.Equal(t, 590, sum.TotalKcal)
	assert.Equal(t, 969, sum.MinKcal)
	assert.Equal(t, 1071, sum.MaxKcal)
	assert.False(t, sum.WithinTolerance)
	assert.Equal(t, 2, sum.Portions)
	assert.Equal(t, 860, sum.SurplusKcal)

	require.Len(t, sum.Categories, 5)
	names := make([]string, 0, len(sum.Categories))
	for _, c := range sum.Categories {
		names = append(names, c.Category)
	}
	assert.Equal(t, []string{"Proteins", "Starches", "Sides", "Vegetables", "Other"}, names)

	starches := sum.Categories[1]
	assert.Equal(t, 100, starches.Grams)
	assert.Equal(t, 350, starches.Kcal)
	assert.Equal(t, 332, starches.TargetKcal)
	assert.Equal(t, -18, starches.Diff)

	proteins := sum.Categories[0]
	assert.Equal(t, 240, proteins.Kcal)
	assert.InDelta(t, 485, proteins.TargetKcal, 1)

	other := sum.Categories[4]
	assert.Equal(t, 500, other.Grams)
	assert.Equal(t, 0, other.Kcal)
}

func TestSummary_WithinTolerance(t *testing.T) {
	sum, err := Summarize(350, ratiosOnly(map[string]float64{"Starches": 1}), testCatalog(), Selection{"rice": 100}, 0)
	require.NoError(t, err)

	assert.True(t, sum.WithinTolerance)
	assert.Equal(t, 1, sum.Portions)
	assert.Equal(t, 0, sum.SurplusKcal)
}
