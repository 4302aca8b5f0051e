package storage

import (
	"context"
	"errors"
	"time"
)

// DefaultCategoryName is used for foods without a category.
const DefaultCategoryName = "Other"

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("already exists")
)

// Storage is implemented by the memory and postgres backends.
type Storage interface {
	Catalog() CatalogStorage
	Meals() MealsStorage
	CalorieLog() CalorieLogStorage

	// Close releases the underlying connection pool (postgres only)
	Close() error
}

// Category groups foods and keys the composer's ratio table.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Food is a catalog entry. CategoryName is filled by List/Get when the category is known.
type Food struct {
	ID              string
	Name            string
	CategoryID      string
	CategoryName    string
	CaloriesPer100g float64
	CreatedAt       time.Time
}

// CatalogStorage reads and writes categories and foods.
type CatalogStorage interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id string) (Category, bool, error)

	// CreateCategory returns ErrConflict when the normalized name is taken
	CreateCategory(ctx context.Context, name string) (Category, error)

	// ListFoods returns foods ordered by name; an empty categoryID lists all of them
	ListFoods(ctx context.Context, categoryID string) ([]Food, error)
	GetFoods(ctx context.Context, ids []string) ([]Food, error)

	// CreateFood returns ErrNotFound when the category does not exist
	CreateFood(ctx context.Context, food Food) (Food, error)
}

// Meal is a saved composition. Item grams are per one portion.
type Meal struct {
	ID          string
	OwnerUserID string
	Name        string
	MealType    string
	Portions    int
	Items       []MealItem
	CreatedAt   time.Time
}

// MealItem is a denormalized copy of the food at save time.
type MealItem struct {
	FoodID          string // empty when the food is no longer in the catalog
	Name            string
	Category        string
	CaloriesPer100g float64
	GramsPerPortion int
}

// MealsStorage persists saved meals.
type MealsStorage interface {
	// List returns the owner's meals, newest first
	List(ctx context.Context, ownerUserID string) ([]Meal, error)
	Get(ctx context.Context, id string) (Meal, bool, error)
	GetMany(ctx context.Context, ids []string) ([]Meal, error)
	Create(ctx context.Context, meal Meal) (Meal, error)

	// Delete returns ErrNotFound for unknown ids and ErrForbidden for other owners
	Delete(ctx context.Context, ownerUserID string, id string) error
}

// CalorieLogEntry records the kcal of one eaten meal against the day's budget.
type CalorieLogEntry struct {
	ID          string
	OwnerUserID string
	Date        string // YYYY-MM-DD
	MealKcal    int
	DayKcal     int
	Label       string
	CreatedAt   time.Time
}

// CalorieLogStorage persists calorie log entries.
type CalorieLogStorage interface {
	List(ctx context.Context, ownerUserID string, date string) ([]CalorieLogEntry, error)
	Create(ctx context.Context, entry CalorieLogEntry) (CalorieLogEntry, error)
	Delete(ctx context.Context, ownerUserID string, id string) error
}
