package composerapi

import (
	"context"
	"fmt"
	"math"

	"github.com/arielallagbe23/mealprep/internal/composer"
)

// FoodSource supplies the catalog the composer works on.
type FoodSource interface {
	ComposerFoods(ctx context.Context) ([]composer.Food, error)
}

// Service runs one composer.Session per call over the current catalog.
type Service struct {
	foods         FoodSource
	rules         composer.Rules
	breakfastKcal float64
}

// NewService creates a composer service. rules must be valid.
func NewService(foods FoodSource, rules composer.Rules, breakfastKcal float64) *Service {
	return &Service{foods: foods, rules: rules, breakfastKcal: breakfastKcal}
}

// Target computes the meal target. A missing breakfast uses the configured default.
func (s *Service) Target(in TargetInput) TargetResponse {
	breakfast := s.breakfast(in)
	mt := composer.ParseMealType(in.MealType)
	daily := in.DailyKcal.Float()

	return TargetResponse{
		Target:        composer.Target(daily, breakfast, mt),
		Remaining:     int(math.Round(composer.Remaining(daily, breakfast))),
		Ratio:         mt.Ratio(),
		MealType:      mt,
		BreakfastKcal: int(math.Round(breakfast)),
	}
}

func (s *Service) resolveTarget(in TargetInput) float64 {
	if in.Target != nil {
		return math.Max(0, in.Target.Float())
	}
	if in.DailyKcal.Float() <= 0 {
		return 0
	}
	return float64(composer.Target(in.DailyKcal.Float(), s.breakfast(in), composer.ParseMealType(in.MealType)))
}

func (s *Service) breakfast(in TargetInput) float64 {
	if in.BreakfastKcal != nil {
		return in.BreakfastKcal.Float()
	}
	return s.breakfastKcal
}

// Allocate sizes the request's selection to its target.
func (s *Service) Allocate(ctx context.Context, req AllocateRequest) (SelectionResponse, error) {
	if err := req.Validate(); err != nil {
		return SelectionResponse{}, err
	}

	rules := s.rules
	if len(req.CategoryRatios) > 0 {
		rules = rules.WithRatios(req.CategoryRatios)
	}
	if len(req.Caps) > 0 {
		rules = rules.WithCaps(req.Caps)
	}

	session, err := s.session(ctx, rules, req.SelectionRequest)
	if err != nil {
		return SelectionResponse{}, err
	}

	target := s.resolveTarget(req.TargetInput)
	session.Allocate(target)
	return respond(session, target, req.Portions, nil), nil
}

// Add selects a food at the default amount.
func (s *Service) Add(ctx context.Context, req FoodRequest) (SelectionResponse, error) {
	if err := req.Validate(); err != nil {
		return SelectionResponse{}, err
	}

	session, err := s.session(ctx, s.rules, req.SelectionRequest)
	if err != nil {
		return SelectionResponse{}, err
	}
	if !session.Add(req.FoodID) {
		return SelectionResponse{}, fmt.Errorf("%w: %s", ErrFoodNotFound, req.FoodID)
	}

	return respond(session, s.resolveTarget(req.TargetInput), req.Portions, nil), nil
}

// Remove deselects a food. Unknown ids are a no-op.
func (s *Service) Remove(ctx context.Context, req FoodRequest) (SelectionResponse, error) {
	if err := req.Validate(); err != nil {
		return SelectionResponse{}, err
	}

	session, err := s.session(ctx, s.rules, req.SelectionRequest)
	if err != nil {
		return SelectionResponse{}, err
	}
	session.Remove(req.FoodID)

	return respond(session, s.resolveTarget(req.TargetInput), req.Portions, nil), nil
}

// Adjust moves one food by delta grams, a multiple of 5.
func (s *Service) Adjust(ctx context.Context, req FoodRequest) (SelectionResponse, error) {
	if err := req.Validate(); err != nil {
		return SelectionResponse{}, err
	}
	delta := req.Delta.Int()
	if delta == 0 || delta%composer.GramStep != 0 {
		return SelectionResponse{}, fmt.Errorf("%w: delta must be a non-zero multiple of %d", ErrValidation, composer.GramStep)
	}

	session, err := s.session(ctx, s.rules, req.SelectionRequest)
	if err != nil {
		return SelectionResponse{}, err
	}
	if !session.Knows(req.FoodID) {
		return SelectionResponse{}, fmt.Errorf("%w: %s", ErrFoodNotFound, req.FoodID)
	}

	grams := session.Adjust(req.FoodID, delta)
	return respond(session, s.resolveTarget(req.TargetInput), req.Portions, &grams), nil
}

func (s *Service) session(ctx context.Context, rules composer.Rules, req SelectionRequest) (*composer.Session, error) {
	foods, err := s.foods.ComposerFoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return composer.NewSession(rules, foods, req.selection())
}

func respond(session *composer.Session, target float64, portions composer.Number, grams *int) SelectionResponse {
	return SelectionResponse{
		Selection: session.Selection(),
		Grams:     grams,
		Summary:   session.Summary(target, portions.Int()),
	}
}
