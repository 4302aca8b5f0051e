package memory

import (
	"github.com/arielallagbe23/mealprep/internal/storage"
)

// MemoryStorage is the in-memory backend used when no DATABASE_URL is set.
type MemoryStorage struct {
	catalog    *catalogStorage
	meals      *mealsStorage
	calorieLog *calorieLogStorage
}

// New creates a MemoryStorage with the default catalog loaded.
func New() *MemoryStorage {
	m := NewEmpty()
	m.catalog.seed(defaultCategories, defaultFoods)
	return m
}

// NewEmpty creates a MemoryStorage without any catalog data.
func NewEmpty() *MemoryStorage {
	return &MemoryStorage{
		catalog:    newCatalogStorage(),
		meals:      newMealsStorage(),
		calorieLog: newCalorieLogStorage(),
	}
}

func (m *MemoryStorage) Catalog() storage.CatalogStorage {
	return m.catalog
}

func (m *MemoryStorage) Meals() storage.MealsStorage {
	return m.meals
}

func (m *MemoryStorage) CalorieLog() storage.CalorieLogStorage {
	return m.calorieLog
}

func (m *MemoryStorage) Close() error {
	return nil
}
