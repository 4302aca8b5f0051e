package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arielallagbe23/mealprep/internal/storage"
	"github.com/google/uuid"
)

type calorieLogStorage struct {
	mu      sync.RWMutex
	entries map[string]storage.CalorieLogEntry // key: entry_id
}

func newCalorieLogStorage() *calorieLogStorage {
	return &calorieLogStorage{entries: make(map[string]storage.CalorieLogEntry)}
}

func (s *calorieLogStorage) List(ctx context.Context, ownerUserID string, date string) ([]storage.CalorieLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.CalorieLogEntry, 0)
	for _, e := range s.entries {
		if e.OwnerUserID != ownerUserID {
			continue
		}
		if date != "" && e.Date != date {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *calorieLogStorage) Create(ctx context.Context, entry storage.CalorieLogEntry) (storage.CalorieLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now().UTC()
	s.entries[entry.ID] = entry
	return entry, nil
}

func (s *calorieLogStorage) Delete(ctx context.Context, ownerUserID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return storage.ErrNotFound
	}
	if e.OwnerUserID != ownerUserID {
		return storage.ErrForbidden
	}

	delete(s.entries, id)
	return nil
}
