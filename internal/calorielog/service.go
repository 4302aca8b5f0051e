package calorielog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arielallagbe23/mealprep/internal/storage"
)

// Service handles the calorie log.
type Service struct {
	storage storage.CalorieLogStorage
	now     func() time.Time
}

// NewService creates a calorie log service.
func NewService(storage storage.CalorieLogStorage) *Service {
	return &Service{storage: storage, now: time.Now}
}

// List returns one day of entries. An empty date means today (UTC).
func (s *Service) List(ctx context.Context, ownerUserID, date string) (ListResponse, error) {
	if date == "" {
		date = s.now().UTC().Format(dateLayout)
	}
	if err := validateDate(date); err != nil {
		return ListResponse{}, err
	}

	entries, err := s.storage.List(ctx, ownerUserID, date)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list calorie log: %w", err)
	}

	resp := ListResponse{Date: date, Items: make([]EntryDTO, len(entries))}
	for i, e := range entries {
		resp.Items[i] = toDTO(e)
		resp.ConsumedKcal += e.MealKcal
	}
	// the newest entry carries the day's budget
	if len(entries) > 0 {
		remaining := entries[0].DayKcal - resp.ConsumedKcal
		resp.RemainingKcal = &remaining
	}
	return resp, nil
}

func (s *Service) Create(ctx context.Context, ownerUserID string, req CreateEntryRequest) (storage.CalorieLogEntry, error) {
	if err := req.Validate(); err != nil {
		return storage.CalorieLogEntry{}, err
	}

	entry, err := s.storage.Create(ctx, storage.CalorieLogEntry{
		OwnerUserID: ownerUserID,
		Date:        req.Date,
		MealKcal:    req.MealKcal.Int(),
		DayKcal:     req.DayKcal.Int(),
		Label:       req.Label,
	})
	if err != nil {
		return storage.CalorieLogEntry{}, fmt.Errorf("create calorie log entry: %w", err)
	}
	return entry, nil
}

func (s *Service) Delete(ctx context.Context, ownerUserID, id string) error {
	err := s.storage.Delete(ctx, ownerUserID, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrEntryNotFound
	case errors.Is(err, storage.ErrForbidden):
		return ErrForbidden
	case err != nil:
		return fmt.Errorf("delete calorie log entry: %w", err)
	}
	return nil
}
