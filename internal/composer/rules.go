package composer

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/arielallagbe23/mealprep/internal/config"
	"github.com/arielallagbe23/mealprep/internal/textnorm"
)

// ErrInvalidRules is returned when a ratio, cap or ceiling table cannot be used.
var ErrInvalidRules = errors.New("invalid composer rules")

const (
	// DefaultMaxIterations bounds the greedy downward correction.
	DefaultMaxIterations = 300
	// DefaultMinDensity replaces a zero kcal/g density during the even split.
	DefaultMinDensity = 0.01
	// DefaultTolerance is the accepted overshoot above the target.
	DefaultTolerance = 0.05
)

// Cap bounds the total grams of a category. A nil bound is open.
type Cap struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// Rules is everything Allocate needs besides the target and the foods.
// Category and item keys are matched through textnorm.Normalize.
type Rules struct {
	Ratios        map[string]float64
	Caps          map[string]Cap
	ItemCeilings  map[string]int
	MinDensity    float64
	Tolerance     float64
	MaxIterations int
}

// NewRules converts the loaded configuration and validates it.
func NewRules(cfg config.ComposerConfig) (Rules, error) {
	r := Rules{
		Ratios:        make(map[string]float64, len(cfg.Ratios)),
		Caps:          make(map[string]Cap, len(cfg.CategoryCaps)),
		ItemCeilings:  make(map[string]int, len(cfg.ItemCeilings)),
		MinDensity:    cfg.MinDensityKcalPerG,
		Tolerance:     cfg.Tolerance,
		MaxIterations: cfg.MaxIterations,
	}
	for name, ratio := range cfg.Ratios {
		r.Ratios[name] = ratio
	}
	for name, c := range cfg.CategoryCaps {
		r.Caps[name] = Cap{Min: c.Min, Max: c.Max}
	}
	for name, grams := range cfg.ItemCeilings {
		r.ItemCeilings[name] = grams
	}

	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

// WithRatios returns a copy of r using ratios instead of the configured table.
func (r Rules) WithRatios(ratios map[string]float64) Rules {
	out := r
	out.Ratios = ratios
	return out
}

// WithCaps returns a copy of r using caps instead of the configured table.
func (r Rules) WithCaps(caps map[string]Cap) Rules {
	out := r
	out.Caps = caps
	return out
}

// Validate reports malformed tables wrapped in ErrInvalidRules.
func (r Rules) Validate() error {
	if len(r.Ratios) == 0 {
		return fmt.Errorf("%w: ratio table is empty", ErrInvalidRules)
	}

	seen := make(map[string]string, len(r.Ratios))
	for name, ratio := range r.Ratios {
		key := textnorm.Normalize(name)
		if key == "" {
			return fmt.Errorf("%w: empty category name in ratio table", ErrInvalidRules)
		}
		if other, dup := seen[key]; dup {
			return fmt.Errorf("%w: categories %q and %q collide", ErrInvalidRules, other, name)
		}
		seen[key] = name
		if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio < 0 || ratio > 1 {
			return fmt.Errorf("%w: ratio for %q must be within [0,1], got %v", ErrInvalidRules, name, ratio)
		}
	}

	for name, c := range r.Caps {
		if textnorm.Normalize(name) == "" {
			return fmt.Errorf("%w: empty category name in caps", ErrInvalidRules)
		}
		if c.Min != nil && *c.Min < 0 {
			return fmt.Errorf("%w: min cap for %q is negative", ErrInvalidRules, name)
		}
		if c.Max != nil && *c.Max < 0 {
			return fmt.Errorf("%w: max cap for %q is negative", ErrInvalidRules, name)
		}
		if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
			return fmt.Errorf("%w: min cap %d above max cap %d for %q", ErrInvalidRules, *c.Min, *c.Max, name)
		}
	}

	for name, grams := range r.ItemCeilings {
		if textnorm.Normalize(name) == "" {
			return fmt.Errorf("%w: empty food name in item ceilings", ErrInvalidRules)
		}
		if grams < 0 {
			return fmt.Errorf("%w: ceiling for %q is negative", ErrInvalidRules, name)
		}
	}

	if math.IsNaN(r.MinDensity) || r.MinDensity <= 0 {
		return fmt.Errorf("%w: minimum density must be positive", ErrInvalidRules)
	}
	if math.IsNaN(r.Tolerance) || r.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must not be negative", ErrInvalidRules)
	}
	if r.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive", ErrInvalidRules)
	}

	return nil
}

// compiled is Rules keyed by normalized names.
type compiled struct {
	ratios     map[string]float64
	caps       map[string]Cap
	ceilings   map[string]int
	categories []string // normalized, ratio desc then name
	display    map[string]string

	minDensity    float64
	tolerance     float64
	maxIterations int
}

func (r Rules) compile() compiled {
	c := compiled{
		ratios:   make(map[string]float64, len(r.Ratios)),
		caps:     make(map[string]Cap, len(r.Caps)),
		ceilings: make(map[string]int, len(r.ItemCeilings)),
		display:  make(map[string]string, len(r.Ratios)),

		minDensity:    r.MinDensity,
		tolerance:     r.Tolerance,
		maxIterations: r.MaxIterations,
	}
	for name, ratio := range r.Ratios {
		key := textnorm.Normalize(name)
		c.ratios[key] = ratio
		c.display[key] = name
		c.categories = append(c.categories, key)
	}
	for name, cp := range r.Caps {
		c.caps[textnorm.Normalize(name)] = cp
	}
	for name, grams := range r.ItemCeilings {
		c.ceilings[textnorm.Normalize(name)] = grams
	}

	sort.Slice(c.categories, func(i, j int) bool {
		a, b := c.categories[i], c.categories[j]
		if c.ratios[a] != c.ratios[b] {
			return c.ratios[a] > c.ratios[b]
		}
		return a < b
	})
	return c
}

func (c compiled) ceilingFor(f Food) (int, bool) {
	g, ok := c.ceilings[textnorm.Normalize(f.Name)]
	return g, ok
}
