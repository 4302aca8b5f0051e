package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arielallagbe23/mealprep/internal/storage"
	"github.com/arielallagbe23/mealprep/internal/textnorm"
	"github.com/google/uuid"
)

type catalogStorage struct {
	mu         sync.RWMutex
	categories map[string]storage.Category // key: category_id
	foods      map[string]storage.Food     // key: food_id
}

func newCatalogStorage() *catalogStorage {
	return &catalogStorage{
		categories: make(map[string]storage.Category),
		foods:      make(map[string]storage.Food),
	}
}

// seed ids are stable across restarts so clients can cache them.
func (s *catalogStorage) seed(categories []string, foods []seedFood) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	byName := make(map[string]string, len(categories))
	for _, name := range categories {
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("mealprep:category:"+name)).String()
		s.categories[id] = storage.Category{ID: id, Name: name, CreatedAt: now}
		byName[name] = id
	}
	for _, f := range foods {
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("mealprep:food:"+f.name)).String()
		s.foods[id] = storage.Food{
			ID:              id,
			Name:            f.name,
			CategoryID:      byName[f.category],
			CaloriesPer100g: f.kcal,
			CreatedAt:       now,
		}
	}
}

func (s *catalogStorage) ListCategories(ctx context.Context) ([]storage.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *catalogStorage) GetCategory(ctx context.Context, id string) (storage.Category, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	return c, ok, nil
}

func (s *catalogStorage) CreateCategory(ctx context.Context, name string) (storage.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := textnorm.Normalize(name)
	for _, c := range s.categories {
		if textnorm.Normalize(c.Name) == key {
			return storage.Category{}, fmt.Errorf("category %q: %w", name, storage.ErrConflict)
		}
	}

	c := storage.Category{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *catalogStorage) ListFoods(ctx context.Context, categoryID string) ([]storage.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.Food, 0, len(s.foods))
	for _, f := range s.foods {
		if categoryID != "" && f.CategoryID != categoryID {
			continue
		}
		out = append(out, s.withCategoryLocked(f))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *catalogStorage) GetFoods(ctx context.Context, ids []string) ([]storage.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.Food, 0, len(ids))
	for _, id := range ids {
		if f, ok := s.foods[id]; ok {
			out = append(out, s.withCategoryLocked(f))
		}
	}
	return out, nil
}

func (s *catalogStorage) CreateFood(ctx context.Context, food storage.Food) (storage.Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[food.CategoryID]; !ok {
		return storage.Food{}, fmt.Errorf("category %s: %w", food.CategoryID, storage.ErrNotFound)
	}

	food.ID = uuid.New().String()
	food.CreatedAt = time.Now().UTC()
	s.foods[food.ID] = food
	return s.withCategoryLocked(food), nil
}

func (s *catalogStorage) withCategoryLocked(f storage.Food) storage.Food {
	if c, ok := s.categories[f.CategoryID]; ok {
		f.CategoryName = c.Name
	}
	return f
}
