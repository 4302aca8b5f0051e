package shopping

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arielallagbe23/mealprep/internal/composer"
)

const maxMealIDs = 100

var (
	ErrValidation    = errors.New("validation failed")
	ErrInvalidFormat = errors.New("invalid format")
)

// ListRequest is the body of POST /v1/shopping-list.
type ListRequest struct {
	MealIDs        []string                   `json:"mealIds"`
	PortionsByMeal map[string]composer.Number `json:"portionsByMeal"`
}

// ExportRequest is the body of POST /v1/shopping-list/export.
type ExportRequest struct {
	ListRequest
	Format string `json:"format"`
}

// MealRef reports a meal that contributed to the list.
type MealRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Multiplier int    `json:"multiplier"`
}

// ListResponse is returned by POST /v1/shopping-list.
type ListResponse struct {
	Items          []Item    `json:"items"`
	Meals          []MealRef `json:"meals"`
	SkippedMealIDs []string  `json:"skippedMealIds"`
	TotalGrams     int       `json:"totalGrams"`
}

// ExportResponse is returned by the export endpoint when a blob store is configured.
type ExportResponse struct {
	Format         string   `json:"format"`
	URL            string   `json:"url"`
	ObjectKey      string   `json:"objectKey"`
	SizeBytes      int64    `json:"sizeBytes"`
	SkippedMealIDs []string `json:"skippedMealIds"`
}

// Validate trims and deduplicates meal ids.
func (r *ListRequest) Validate() error {
	ids := make([]string, 0, len(r.MealIDs))
	seen := make(map[string]bool, len(r.MealIDs))
	for _, id := range r.MealIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return fmt.Errorf("%w: mealIds is required and must not be empty", ErrValidation)
	}
	if len(ids) > maxMealIDs {
		return fmt.Errorf("%w: mealIds cannot exceed %d", ErrValidation, maxMealIDs)
	}

	r.MealIDs = ids
	return nil
}

// Portions converts the loosely typed overrides to ints.
func (r *ListRequest) Portions() map[string]int {
	out := make(map[string]int, len(r.PortionsByMeal))
	for id, n := range r.PortionsByMeal {
		out[strings.TrimSpace(id)] = n.Int()
	}
	return out
}

// NormalizedFormat defaults to pdf.
func (r *ExportRequest) NormalizedFormat() (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(r.Format)); f {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q (allowed: pdf, csv)", ErrInvalidFormat, r.Format)
	}
}
