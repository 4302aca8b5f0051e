package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/arielallagbe23/mealprep/internal/cache"
	"github.com/arielallagbe23/mealprep/internal/composer"
	"github.com/arielallagbe23/mealprep/internal/storage"
)

const (
	categoriesKey  = "catalog:categories"
	foodsKeyPrefix = "catalog:foods:"
	allFoodsKey    = foodsKeyPrefix + "all"
)

// Service reads and writes the food catalog, caching list reads.
type Service struct {
	store storage.CatalogStorage
	cache cache.Cache
	ttl   time.Duration
}

// NewService creates a catalog service. A nil cache disables caching.
func NewService(store storage.CatalogStorage, c cache.Cache, ttl time.Duration) *Service {
	return &Service{store: store, cache: c, ttl: ttl}
}

func (s *Service) ListCategories(ctx context.Context) ([]storage.Category, error) {
	var cached []storage.Category
	if s.readCache(ctx, categoriesKey, &cached) {
		return cached, nil
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	s.writeCache(ctx, categoriesKey, categories)
	return categories, nil
}

func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (storage.Category, error) {
	if err := req.Validate(); err != nil {
		return storage.Category{}, err
	}

	c, err := s.store.CreateCategory(ctx, req.Name)
	if errors.Is(err, storage.ErrConflict) {
		return storage.Category{}, fmt.Errorf("%w: %s", ErrDuplicateCategory, req.Name)
	}
	if err != nil {
		return storage.Category{}, fmt.Errorf("create category: %w", err)
	}

	s.invalidate(ctx, categoriesKey)
	return c, nil
}

// ListFoods lists foods of one category, or all foods when categoryID is empty.
func (s *Service) ListFoods(ctx context.Context, categoryID string) ([]storage.Food, error) {
	key := allFoodsKey
	if categoryID != "" {
		key = foodsKeyPrefix + categoryID
	}

	var cached []storage.Food
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}

	foods, err := s.store.ListFoods(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}

	s.writeCache(ctx, key, foods)
	return foods, nil
}

func (s *Service) CreateFood(ctx context.Context, req CreateFoodRequest) (storage.Food, error) {
	if err := req.Validate(); err != nil {
		return storage.Food{}, err
	}

	f, err := s.store.CreateFood(ctx, storage.Food{
		Name:            req.Name,
		CategoryID:      req.CategoryID,
		CaloriesPer100g: req.CaloriesPer100g.Float(),
	})
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Food{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, req.CategoryID)
	}
	if err != nil {
		return storage.Food{}, fmt.Errorf("create food: %w", err)
	}

	s.invalidate(ctx, allFoodsKey, foodsKeyPrefix+f.CategoryID)
	return f, nil
}

// ComposerFoods returns the whole catalog in the composer's shape.
func (s *Service) ComposerFoods(ctx context.Context) ([]composer.Food, error) {
	foods, err := s.ListFoods(ctx, "")
	if err != nil {
		return nil, err
	}
	return ToComposerFoods(foods), nil
}

// ToComposerFoods maps storage foods to composer foods.
func ToComposerFoods(foods []storage.Food) []composer.Food {
	out := make([]composer.Food, len(foods))
	for i, f := range foods {
		out[i] = composer.Food{
			ID:              f.ID,
			Name:            f.Name,
			Category:        f.CategoryName,
			CaloriesPer100g: f.CaloriesPer100g,
		}
	}
	return out
}

func (s *Service) readCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		log.Printf("WARN catalog.cache: get %s: %v", key, err)
		return false
	}
	return found
}

func (s *Service) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		log.Printf("WARN catalog.cache: set %s: %v", key, err)
	}
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Printf("WARN catalog.cache: delete %v: %v", keys, err)
	}
}
