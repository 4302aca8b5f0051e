package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/arielallagbe23/mealprep/internal/storage"
)

func TestSeededCatalog(t *testing.T) {
	ctx := context.Background()
	m := New()

	categories, err := m.Catalog().ListCategories(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(categories) != len(defaultCategories) {
		t.Fatalf("expected %d categories, got %d", len(defaultCategories), len(categories))
	}

	foods, err := m.Catalog().ListFoods(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(foods) != len(defaultFoods) {
		t.Fatalf("expected %d foods, got %d", len(defaultFoods), len(foods))
	}
	for _, f := range foods {
		if f.CategoryName == "" {
			t.Fatalf("food %q has no category name", f.Name)
		}
	}

	// ids are stable across instances
	again, _ := New().Catalog().ListFoods(ctx, "")
	if again[0].ID != foods[0].ID {
		t.Fatalf("expected stable seed ids, got %s and %s", foods[0].ID, again[0].ID)
	}
}

func TestCatalogCreate(t *testing.T) {
	ctx := context.Background()
	cat := NewEmpty().Catalog()

	c, err := cat.CreateCategory(ctx, "Féculents")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cat.CreateCategory(ctx, "feculents"); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	f, err := cat.CreateFood(ctx, storage.Food{Name: "Riz", CategoryID: c.ID, CaloriesPer100g: 350})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ID == "" || f.CategoryName != "Féculents" {
		t.Fatalf("unexpected food: %+v", f)
	}

	if _, err := cat.CreateFood(ctx, storage.Food{Name: "Ghost", CategoryID: "missing"}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	byCategory, _ := cat.ListFoods(ctx, c.ID)
	if len(byCategory) != 1 {
		t.Fatalf("expected 1 food in category, got %d", len(byCategory))
	}
	none, _ := cat.ListFoods(ctx, "other")
	if len(none) != 0 {
		t.Fatalf("expected no foods, got %d", len(none))
	}
}

func TestMealsOwnership(t *testing.T) {
	ctx := context.Background()
	meals := NewEmpty().Meals()

	created, err := meals.Create(ctx, storage.Meal{
		OwnerUserID: "u1",
		Name:        "Lunch",
		Portions:    2,
		Items:       []storage.MealItem{{FoodID: "rice", Name: "Rice", GramsPerPortion: 100}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, found, err := meals.Get(ctx, created.ID)
	if err != nil || !found {
		t.Fatalf("expected meal, found=%t err=%v", found, err)
	}
	got.Items[0].GramsPerPortion = 999

	again, _, _ := meals.Get(ctx, created.ID)
	if again.Items[0].GramsPerPortion != 100 {
		t.Fatal("stored meal must not be mutated through a returned copy")
	}

	if list, _ := meals.List(ctx, "u2"); len(list) != 0 {
		t.Fatalf("expected no meals for u2, got %d", len(list))
	}
	if err := meals.Delete(ctx, "u2", created.ID); !errors.Is(err, storage.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := meals.Delete(ctx, "u1", created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := meals.Delete(ctx, "u1", created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCalorieLogFilters(t *testing.T) {
	ctx := context.Background()
	log := NewEmpty().CalorieLog()

	log.Create(ctx, storage.CalorieLogEntry{OwnerUserID: "u1", Date: "2026-01-01", MealKcal: 600, DayKcal: 2000, Label: "Lunch"})
	log.Create(ctx, storage.CalorieLogEntry{OwnerUserID: "u1", Date: "2026-01-02", MealKcal: 500, DayKcal: 2000, Label: "Dinner"})
	log.Create(ctx, storage.CalorieLogEntry{OwnerUserID: "u2", Date: "2026-01-01", MealKcal: 700, DayKcal: 2500, Label: "Lunch"})

	day, _ := log.List(ctx, "u1", "2026-01-01")
	if len(day) != 1 || day[0].MealKcal != 600 {
		t.Fatalf("unexpected entries: %+v", day)
	}

	all, _ := log.List(ctx, "u1", "")
	if len(all) != 2 || all[0].Date != "2026-01-02" {
		t.Fatalf("expected newest day first, got %+v", all)
	}
}
