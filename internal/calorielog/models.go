package calorielog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arielallagbe23/mealprep/internal/composer"
	"github.com/arielallagbe23/mealprep/internal/storage"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrEntryNotFound = errors.New("calorie log entry not found")
	ErrForbidden     = errors.New("entry belongs to another user")
)

const (
	dateLayout   = "2006-01-02"
	defaultLabel = "Meal"
)

// CreateEntryRequest is the body of POST /v1/calorie-log.
type CreateEntryRequest struct {
	Date     string          `json:"date"`
	MealKcal composer.Number `json:"mealKcal"`
	DayKcal  composer.Number `json:"dayKcal"`
	Label    string          `json:"label"`
}

func (r *CreateEntryRequest) Validate() error {
	r.Date = strings.TrimSpace(r.Date)
	if err := validateDate(r.Date); err != nil {
		return err
	}
	if r.MealKcal.Int() <= 0 || r.DayKcal.Int() <= 0 {
		return fmt.Errorf("%w: mealKcal and dayKcal must be > 0", ErrValidation)
	}

	r.Label = strings.TrimSpace(r.Label)
	if r.Label == "" {
		r.Label = defaultLabel
	}
	if len(r.Label) > 100 {
		return fmt.Errorf("%w: label must be at most 100 characters", ErrValidation)
	}
	return nil
}

func validateDate(date string) error {
	if date == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	return nil
}

// EntryDTO is the wire form of a calorie log entry.
type EntryDTO struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	MealKcal  int       `json:"mealKcal"`
	DayKcal   int       `json:"dayKcal"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListResponse carries the entries of one day and the budget left.
type ListResponse struct {
	Date          string     `json:"date"`
	Items         []EntryDTO `json:"items"`
	ConsumedKcal  int        `json:"consumedKcal"`
	RemainingKcal *int       `json:"remainingKcal"`
}

func toDTO(e storage.CalorieLogEntry) EntryDTO {
	return EntryDTO{
		ID:        e.ID,
		Date:      e.Date,
		MealKcal:  e.MealKcal,
		DayKcal:   e.DayKcal,
		Label:     e.Label,
		CreatedAt: e.CreatedAt,
	}
}
