package composer

import "math"

// Session owns one selection for a single composing user. It is not safe
// for concurrent use; each request builds its own.
type Session struct {
	rules     Rules
	compiled  compiled
	alloc     *allocator
	selection Selection
}

// NewSession validates rules and loads initial. Entries for foods missing
// from the catalog are dropped and grams are snapped to 5 g steps.
func NewSession(rules Rules, catalog []Food, initial Selection) (*Session, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	c := rules.compile()
	s := &Session{
		rules:     rules,
		compiled:  c,
		alloc:     newAllocator(c, catalog),
		selection: make(Selection, len(initial)),
	}
	for id, g := range initial {
		if _, ok := s.alloc.foods[id]; !ok {
			continue
		}
		s.selection[id] = Round5(float64(g))
	}
	return s, nil
}

// Knows reports whether foodID is in the session's catalog.
func (s *Session) Knows(foodID string) bool {
	_, ok := s.alloc.foods[foodID]
	return ok
}

// Add selects a food at 100 g. Already selected foods keep their grams.
// It reports false for foods outside the catalog.
func (s *Session) Add(foodID string) bool {
	if _, ok := s.alloc.foods[foodID]; !ok {
		return false
	}
	if _, selected := s.selection[foodID]; !selected {
		s.selection[foodID] = SeedGrams
	}
	return true
}

// Remove deselects a food.
func (s *Session) Remove(foodID string) {
	delete(s.selection, foodID)
}

// Adjust moves a food by delta grams, honouring its item ceiling. Reaching
// 0 g deselects it. It returns the new amount.
func (s *Session) Adjust(foodID string, delta int) int {
	f, ok := s.alloc.foods[foodID]
	if !ok {
		return 0
	}

	next := float64(s.selection[foodID] + delta)
	if ceiling, ok := s.compiled.ceilingFor(f); ok {
		next = math.Min(next, float64(floorStep(ceiling)))
	}

	grams := Round5(next)
	if grams <= 0 {
		delete(s.selection, foodID)
		return 0
	}
	s.selection[foodID] = grams
	return grams
}

// Allocate replaces the selection with the allocator's result.
func (s *Session) Allocate(target float64) {
	if math.IsNaN(target) || target <= 0 {
		return
	}
	s.selection = s.alloc.allocate(target, s.selection)
}

// Selection returns a copy of the current selection.
func (s *Session) Selection() Selection {
	return s.selection.Clone()
}

// Summary describes the current selection against target.
func (s *Session) Summary(target float64, portions int) Summary {
	return summarize(s.compiled, s.alloc, target, s.selection, portions)
}
