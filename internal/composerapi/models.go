package composerapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arielallagbe23/mealprep/internal/composer"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrFoodNotFound = errors.New("food not found")
)

const maxSelectionSize = 100

// TargetInput resolves a kcal target either directly or from the day's budget.
type TargetInput struct {
	Target        *composer.Number `json:"target,omitempty"`
	DailyKcal     composer.Number  `json:"dailyKcal"`
	BreakfastKcal *composer.Number `json:"breakfastKcal,omitempty"`
	MealType      string           `json:"mealType"`
}

// TargetRequest is the body of POST /v1/composer/target.
type TargetRequest struct {
	TargetInput
}

type TargetResponse struct {
	Target        int               `json:"target"`
	Remaining     int               `json:"remaining"`
	Ratio         float64           `json:"ratio"`
	MealType      composer.MealType `json:"mealType"`
	BreakfastKcal int               `json:"breakfastKcal"`
}

// SelectionRequest carries the client's current selection. Grams may be strings.
type SelectionRequest struct {
	TargetInput
	Selection map[string]composer.Number `json:"selection"`
	Portions  composer.Number            `json:"portions"`
}

func (r SelectionRequest) validateSelection() error {
	if len(r.Selection) > maxSelectionSize {
		return fmt.Errorf("%w: selection must have at most %d foods", ErrValidation, maxSelectionSize)
	}
	return nil
}

func (r SelectionRequest) selection() composer.Selection {
	sel := make(composer.Selection, len(r.Selection))
	for id, g := range r.Selection {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		sel[id] = g.Int()
	}
	return sel
}

// AllocateRequest is the body of POST /v1/composer/allocate. Ratios and caps
// override the server's tables for this call only.
type AllocateRequest struct {
	SelectionRequest
	CategoryRatios map[string]float64      `json:"categoryRatios,omitempty"`
	Caps           map[string]composer.Cap `json:"caps,omitempty"`
}

func (r AllocateRequest) Validate() error {
	return r.validateSelection()
}

// FoodRequest is the body of add, remove and adjust.
type FoodRequest struct {
	SelectionRequest
	FoodID string          `json:"foodId"`
	Delta  composer.Number `json:"delta"`
}

func (r *FoodRequest) Validate() error {
	r.FoodID = strings.TrimSpace(r.FoodID)
	if r.FoodID == "" {
		return fmt.Errorf("%w: foodId is required", ErrValidation)
	}
	return r.validateSelection()
}

// SelectionResponse is returned by every selection-changing call.
type SelectionResponse struct {
	Selection composer.Selection `json:"selection"`
	Grams     *int               `json:"grams,omitempty"`
	composer.Summary
}
