package shopping

import (
	"sort"

	"github.com/arielallagbe23/mealprep/internal/composer"
	"github.com/arielallagbe23/mealprep/internal/storage"
	"github.com/arielallagbe23/mealprep/internal/textnorm"
)

// Item is one consolidated line of the shopping list.
type Item struct {
	FoodID          *string `json:"foodId"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	CaloriesPer100g float64 `json:"caloriesPer100g"`
	Grams           int     `json:"grams"`
}

// Multiplier picks the portion count for a meal: the override when positive,
// else the meal's own portions, else 1.
func Multiplier(meal storage.Meal, portionsByMeal map[string]int) int {
	if p := portionsByMeal[meal.ID]; p > 0 {
		return p
	}
	if meal.Portions > 0 {
		return meal.Portions
	}
	return 1
}

// Aggregate merges the items of meals into one list.
//
// Items merge on food id, or on the normalized name when the id is empty, so
// two foods sharing a name without ids collapse into one line. The first
// item seen for a key supplies name, category and calories. Totals are
// rounded to 5 g and sorted by category then name.
func Aggregate(meals []storage.Meal, portionsByMeal map[string]int) []Item {
	type entry struct {
		item  Item
		grams int
	}

	byKey := make(map[string]*entry)
	order := make([]string, 0)

	for _, meal := range meals {
		mult := Multiplier(meal, portionsByMeal)
		for _, it := range meal.Items {
			key := itemKey(it)
			e, ok := byKey[key]
			if !ok {
				e = &entry{item: newItem(it)}
				byKey[key] = e
				order = append(order, key)
			}
			e.grams += max(0, it.GramsPerPortion) * mult
		}
	}

	out := make([]Item, 0, len(order))
	for _, key := range order {
		e := byKey[key]
		e.item.Grams = composer.Round5(float64(e.grams))
		out = append(out, e.item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func itemKey(it storage.MealItem) string {
	if it.FoodID != "" {
		return "id:" + it.FoodID
	}
	return "name:" + textnorm.Normalize(it.Name)
}

func newItem(it storage.MealItem) Item {
	category := it.Category
	if category == "" {
		category = storage.DefaultCategoryName
	}

	var foodID *string
	if it.FoodID != "" {
		id := it.FoodID
		foodID = &id
	}

	return Item{
		FoodID:          foodID,
		Name:            it.Name,
		Category:        category,
		CaloriesPer100g: max(0, it.CaloriesPer100g),
	}
}

// TotalGrams sums the grams of items.
func TotalGrams(items []Item) int {
	total := 0
	for _, it := range items {
		total += it.Grams
	}
	return total
}
