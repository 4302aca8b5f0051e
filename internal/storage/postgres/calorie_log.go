package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/arielallagbe23/mealprep/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type calorieLogStorage struct {
	pool *pgxpool.Pool
}

func newCalorieLogStorage(pool *pgxpool.Pool) *calorieLogStorage {
	return &calorieLogStorage{pool: pool}
}

func (s *calorieLogStorage) List(ctx context.Context, ownerUserID string, date string) ([]storage.CalorieLogEntry, error) {
	query := `
		SELECT id, owner_user_id, to_char(log_date, 'YYYY-MM-DD'), meal_kcal, day_kcal, label, created_at
		FROM calorie_log
		WHERE owner_user_id = $1
	`
	args := []any{ownerUserID}
	if date != "" {
		query += ` AND log_date = $2::date`
		args = append(args, date)
	}
	query += ` ORDER BY log_date DESC, created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list calorie log: %w", err)
	}
	defer rows.Close()

	entries := []storage.CalorieLogEntry{}
	for rows.Next() {
		var (
			e  storage.CalorieLogEntry
			id uuid.UUID
		)
		if err := rows.Scan(&id, &e.OwnerUserID, &e.Date, &e.MealKcal, &e.DayKcal, &e.Label, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan calorie log entry: %w", err)
		}
		e.ID = id.String()
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *calorieLogStorage) Create(ctx context.Context, entry storage.CalorieLogEntry) (storage.CalorieLogEntry, error) {
	query := `
		INSERT INTO calorie_log (id, owner_user_id, log_date, meal_kcal, day_kcal, label)
		VALUES ($1, $2, $3::date, $4, $5, $6)
		RETURNING created_at
	`

	id := uuid.New()
	err := s.pool.QueryRow(ctx, query, id, entry.OwnerUserID, entry.Date, entry.MealKcal, entry.DayKcal, entry.Label).Scan(&entry.CreatedAt)
	if err != nil {
		return storage.CalorieLogEntry{}, fmt.Errorf("failed to create calorie log entry: %w", err)
	}

	entry.ID = id.String()
	return entry, nil
}

func (s *calorieLogStorage) Delete(ctx context.Context, ownerUserID string, id string) error {
	entryID, ok := parseID(id)
	if !ok {
		return storage.ErrNotFound
	}

	var owner string
	err := s.pool.QueryRow(ctx, `SELECT owner_user_id FROM calorie_log WHERE id = $1`, entryID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get calorie log owner: %w", err)
	}
	if owner != ownerUserID {
		return storage.ErrForbidden
	}

	if _, err := s.pool.Exec(ctx, `DELETE FROM calorie_log WHERE id = $1`, entryID); err != nil {
		return fmt.Errorf("failed to delete calorie log entry: %w", err)
	}
	return nil
}
