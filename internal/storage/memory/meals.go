package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arielallagbe23/mealprep/internal/storage"
	"github.com/google/uuid"
)

type mealsStorage struct {
	mu    sync.RWMutex
	meals map[string]storage.Meal // key: meal_id
}

func newMealsStorage() *mealsStorage {
	return &mealsStorage{meals: make(map[string]storage.Meal)}
}

func (s *mealsStorage) List(ctx context.Context, ownerUserID string) ([]storage.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.Meal, 0)
	for _, m := range s.meals {
		if m.OwnerUserID == ownerUserID {
			out = append(out, copyMeal(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *mealsStorage) Get(ctx context.Context, id string) (storage.Meal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meals[id]
	if !ok {
		return storage.Meal{}, false, nil
	}
	return copyMeal(m), true, nil
}

func (s *mealsStorage) GetMany(ctx context.Context, ids []string) ([]storage.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.Meal, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.meals[id]; ok {
			out = append(out, copyMeal(m))
		}
	}
	return out, nil
}

func (s *mealsStorage) Create(ctx context.Context, meal storage.Meal) (storage.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meal.ID = uuid.New().String()
	meal.CreatedAt = time.Now().UTC()
	meal = copyMeal(meal)
	s.meals[meal.ID] = meal
	return copyMeal(meal), nil
}

func (s *mealsStorage) Delete(ctx context.Context, ownerUserID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meals[id]
	if !ok {
		return storage.ErrNotFound
	}
	if m.OwnerUserID != ownerUserID {
		return storage.ErrForbidden
	}

	delete(s.meals, id)
	return nil
}

// copyMeal detaches the items slice from the stored value.
func copyMeal(m storage.Meal) storage.Meal {
	items := make([]storage.MealItem, len(m.Items))
	copy(items, m.Items)
	m.Items = items
	return m
}
