package meals

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/arielallagbe23/mealprep/internal/composer"
	"github.com/arielallagbe23/mealprep/internal/storage"
	"github.com/arielallagbe23/mealprep/internal/textnorm"
)

// FoodLookup resolves the foods of a selection.
type FoodLookup interface {
	GetFoods(ctx context.Context, ids []string) ([]storage.Food, error)
}

var (
	starchPattern        = regexp.MustCompile(`starch|feculent|carb`)
	proteinPattern       = regexp.MustCompile(`protein`)
	proteinSourcePattern = regexp.MustCompile(`meat|fish|egg|viande|poisson|oeuf`)
)

// Service handles saved meals.
type Service struct {
	meals       storage.MealsStorage
	foods       FoodLookup
	maxItems    int
	maxPortions int
}

// NewService creates a meals service.
func NewService(meals storage.MealsStorage, foods FoodLookup, maxItems, maxPortions int) *Service {
	return &Service{meals: meals, foods: foods, maxItems: maxItems, maxPortions: maxPortions}
}

// List returns the user's meals, newest first.
func (s *Service) List(ctx context.Context, ownerUserID string) ([]storage.Meal, error) {
	return s.meals.List(ctx, ownerUserID)
}

// Get returns one of the user's meals. Meals of other users read as not found.
func (s *Service) Get(ctx context.Context, ownerUserID, id string) (storage.Meal, error) {
	m, found, err := s.meals.Get(ctx, id)
	if err != nil {
		return storage.Meal{}, fmt.Errorf("get meal: %w", err)
	}
	if !found || m.OwnerUserID != ownerUserID {
		return storage.Meal{}, ErrMealNotFound
	}
	return m, nil
}

// Create snapshots the selection with the catalog data of each food.
func (s *Service) Create(ctx context.Context, ownerUserID string, req CreateMealRequest) (storage.Meal, error) {
	if err := req.Validate(s.maxItems, s.maxPortions); err != nil {
		return storage.Meal{}, err
	}

	grams := req.grams()
	ids := make([]string, 0, len(grams))
	for id := range grams {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	foods, err := s.foods.GetFoods(ctx, ids)
	if err != nil {
		return storage.Meal{}, fmt.Errorf("load foods: %w", err)
	}
	byID := make(map[string]storage.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}

	var unknown []string
	items := make([]storage.MealItem, 0, len(ids))
	for _, id := range ids {
		f, ok := byID[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		category := strings.TrimSpace(f.CategoryName)
		if category == "" {
			category = storage.DefaultCategoryName
		}
		items = append(items, storage.MealItem{
			FoodID:          f.ID,
			Name:            f.Name,
			Category:        category,
			CaloriesPer100g: f.CaloriesPer100g,
			GramsPerPortion: grams[id],
		})
	}
	if len(unknown) > 0 {
		return storage.Meal{}, fmt.Errorf("%w: unknown food ids: %s", ErrValidation, strings.Join(unknown, ", "))
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})

	mealType := composer.ParseMealType(req.MealType)
	name := req.Name
	if name == "" {
		name = AutoName(mealType, items)
	}

	meal, err := s.meals.Create(ctx, storage.Meal{
		OwnerUserID: ownerUserID,
		Name:        name,
		MealType:    string(mealType),
		Portions:    req.Portions.Int(),
		Items:       items,
	})
	if err != nil {
		return storage.Meal{}, fmt.Errorf("create meal: %w", err)
	}
	return meal, nil
}

// Delete removes one of the user's meals.
func (s *Service) Delete(ctx context.Context, ownerUserID, id string) error {
	err := s.meals.Delete(ctx, ownerUserID, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrMealNotFound
	case errors.Is(err, storage.ErrForbidden):
		return ErrForbidden
	case err != nil:
		return fmt.Errorf("delete meal: %w", err)
	}
	return nil
}

// AutoName builds "<Lunch|Dinner> — <starch> + <protein>" from the first
// matching items.
func AutoName(mealType composer.MealType, items []storage.MealItem) string {
	starch := firstByCategory(items, starchPattern)
	if starch == "" && len(items) > 0 {
		starch = items[0].Name
	}
	if starch == "" {
		starch = "starch"
	}

	protein := firstByCategory(items, proteinPattern)
	if protein == "" {
		protein = firstByCategory(items, proteinSourcePattern)
	}
	if protein == "" {
		protein = "protein"
	}

	return fmt.Sprintf("%s — %s + %s", mealType.Label(), starch, protein)
}

func firstByCategory(items []storage.MealItem, pattern *regexp.Regexp) string {
	for _, it := range items {
		if pattern.MatchString(textnorm.Normalize(it.Category)) {
			return it.Name
		}
	}
	return ""
}
