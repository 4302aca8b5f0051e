package meals

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arielallagbe23/mealprep/internal/composer"
	"github.com/arielallagbe23/mealprep/internal/storage"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrMealNotFound = errors.New("meal not found")
	ErrForbidden    = errors.New("meal belongs to another user")
)

// CreateMealRequest is the body of POST /v1/meals. Selection maps food id to
// grams for ONE portion; entries at 0 g are ignored.
type CreateMealRequest struct {
	Name      string                     `json:"name"`
	MealType  string                     `json:"mealType"`
	Portions  composer.Number            `json:"portions"`
	Selection map[string]composer.Number `json:"selection"`
}

// Validate normalizes the request and checks bounds.
func (r *CreateMealRequest) Validate(maxItems, maxPortions int) error {
	r.Name = strings.TrimSpace(r.Name)
	if len(r.Name) > 200 {
		return fmt.Errorf("%w: name must be at most 200 characters", ErrValidation)
	}

	portions := r.Portions.Int()
	if portions == 0 {
		r.Portions = 1
		portions = 1
	}
	if portions < 1 || portions > maxPortions {
		return fmt.Errorf("%w: portions must be between 1 and %d", ErrValidation, maxPortions)
	}

	if len(r.grams()) == 0 {
		return fmt.Errorf("%w: selection must contain at least one food", ErrValidation)
	}
	if len(r.Selection) > maxItems {
		return fmt.Errorf("%w: selection must have at most %d foods", ErrValidation, maxItems)
	}
	return nil
}

// grams returns the positive entries snapped to 5 g.
func (r CreateMealRequest) grams() map[string]int {
	out := make(map[string]int, len(r.Selection))
	for id, g := range r.Selection {
		id = strings.TrimSpace(id)
		grams := composer.Round5(g.Float())
		if id == "" || grams <= 0 {
			continue
		}
		out[id] = grams
	}
	return out
}

// MealItemDTO is one stored item. FoodID is null when the food left the catalog.
type MealItemDTO struct {
	FoodID          *string `json:"foodId"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	CaloriesPer100g float64 `json:"caloriesPer100g"`
	GramsPerPortion int     `json:"gramsPerPortion"`
}

// MealDTO is the wire form of a saved meal.
type MealDTO struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	MealType       string        `json:"mealType"`
	Portions       int           `json:"portions"`
	Items          []MealItemDTO `json:"items"`
	KcalPerPortion int           `json:"kcalPerPortion"`
	CreatedAt      time.Time     `json:"createdAt"`
}

type ListMealsResponse struct {
	Items []MealDTO `json:"items"`
}

func toDTO(m storage.Meal) MealDTO {
	items := make([]MealItemDTO, len(m.Items))
	kcal := 0.0
	for i, it := range m.Items {
		var foodID *string
		if it.FoodID != "" {
			id := it.FoodID
			foodID = &id
		}
		items[i] = MealItemDTO{
			FoodID:          foodID,
			Name:            it.Name,
			Category:        it.Category,
			CaloriesPer100g: it.CaloriesPer100g,
			GramsPerPortion: it.GramsPerPortion,
		}
		kcal += float64(it.GramsPerPortion) * it.CaloriesPer100g / 100
	}

	return MealDTO{
		ID:             m.ID,
		Name:           m.Name,
		MealType:       m.MealType,
		Portions:       m.Portions,
		Items:          items,
		KcalPerPortion: int(kcal + 0.5),
		CreatedAt:      m.CreatedAt,
	}
}
