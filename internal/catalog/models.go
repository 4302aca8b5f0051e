package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arielallagbe23/mealprep/internal/composer"
	"github.com/arielallagbe23/mealprep/internal/storage"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("category already exists")
)

const maxNameLength = 120

// CategoryDTO is the wire form of a category.
type CategoryDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// FoodDTO is the wire form of a food. Category is set only when expanded.
type FoodDTO struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	CategoryID      string    `json:"categoryId"`
	Category        *string   `json:"category,omitempty"`
	CaloriesPer100g float64   `json:"caloriesPer100g"`
	CreatedAt       time.Time `json:"createdAt"`
}

type CategoriesResponse struct {
	Items []CategoryDTO `json:"items"`
}

type FoodsResponse struct {
	Items []FoodDTO `json:"items"`
}

// CreateCategoryRequest is the body of POST /v1/categories.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

func (r *CreateCategoryRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(r.Name) > maxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrValidation, maxNameLength)
	}
	return nil
}

// CreateFoodRequest is the body of POST /v1/foods.
type CreateFoodRequest struct {
	Name            string          `json:"name"`
	CaloriesPer100g composer.Number `json:"caloriesPer100g"`
	CategoryID      string          `json:"categoryId"`
}

func (r *CreateFoodRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.CategoryID = strings.TrimSpace(r.CategoryID)

	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(r.Name) > maxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrValidation, maxNameLength)
	}
	if r.CategoryID == "" {
		return fmt.Errorf("%w: categoryId is required", ErrValidation)
	}
	if r.CaloriesPer100g.Float() < 0 {
		return fmt.Errorf("%w: caloriesPer100g must be >= 0", ErrValidation)
	}
	if r.CaloriesPer100g.Float() > 900 {
		return fmt.Errorf("%w: caloriesPer100g must be <= 900", ErrValidation)
	}
	return nil
}

func toCategoryDTO(c storage.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

func toFoodDTO(f storage.Food, expand bool) FoodDTO {
	dto := FoodDTO{
		ID:              f.ID,
		Name:            f.Name,
		CategoryID:      f.CategoryID,
		CaloriesPer100g: f.CaloriesPer100g,
		CreatedAt:       f.CreatedAt,
	}
	if expand {
		name := f.CategoryName
		if strings.TrimSpace(name) == "" {
			name = storage.DefaultCategoryName
		}
		dto.Category = &name
	}
	return dto
}
