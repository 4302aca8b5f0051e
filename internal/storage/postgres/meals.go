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

type mealsStorage struct {
	pool *pgxpool.Pool
}

func newMealsStorage(pool *pgxpool.Pool) *mealsStorage {
	return &mealsStorage{pool: pool}
}

func (s *mealsStorage) List(ctx context.Context, ownerUserID string) ([]storage.Meal, error) {
	query := `
		SELECT id, owner_user_id, name, meal_type, portions, created_at
		FROM meals
		WHERE owner_user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	return s.queryMeals(ctx, query, ownerUserID)
}

func (s *mealsStorage) Get(ctx context.Context, id string) (storage.Meal, bool, error) {
	meals, err := s.GetMany(ctx, []string{id})
	if err != nil {
		return storage.Meal{}, false, err
	}
	if len(meals) == 0 {
		return storage.Meal{}, false, nil
	}
	return meals[0], true, nil
}

func (s *mealsStorage) GetMany(ctx context.Context, ids []string) ([]storage.Meal, error) {
	parsed := parseIDs(ids)
	if len(parsed) == 0 {
		return []storage.Meal{}, nil
	}

	query := `
		SELECT id, owner_user_id, name, meal_type, portions, created_at
		FROM meals
		WHERE id = ANY($1)
		ORDER BY created_at DESC, id DESC
	`

	return s.queryMeals(ctx, query, parsed)
}

func (s *mealsStorage) queryMeals(ctx context.Context, query string, args ...any) ([]storage.Meal, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}

	meals := []storage.Meal{}
	ids := []uuid.UUID{}
	for rows.Next() {
		var (
			m  storage.Meal
			id uuid.UUID
		)
		if err := rows.Scan(&id, &m.OwnerUserID, &m.Name, &m.MealType, &m.Portions, &m.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		m.ID = id.String()
		m.Items = []storage.MealItem{}
		meals = append(meals, m)
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meals: %w", err)
	}

	if len(meals) == 0 {
		return meals, nil
	}

	items, err := s.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range meals {
		if list, ok := items[meals[i].ID]; ok {
			meals[i].Items = list
		}
	}

	return meals, nil
}

func (s *mealsStorage) loadItems(ctx context.Context, mealIDs []uuid.UUID) (map[string][]storage.MealItem, error) {
	query := `
		SELECT meal_id, COALESCE(food_id, ''), name, category, calories_per_100g, grams_per_portion
		FROM meal_items
		WHERE meal_id = ANY($1)
		ORDER BY meal_id, position
	`

	rows, err := s.pool.Query(ctx, query, mealIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get meal items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]storage.MealItem)
	for rows.Next() {
		var (
			mealID uuid.UUID
			item   storage.MealItem
		)
		if err := rows.Scan(&mealID, &item.FoodID, &item.Name, &item.Category, &item.CaloriesPer100g, &item.GramsPerPortion); err != nil {
			return nil, fmt.Errorf("failed to scan meal item: %w", err)
		}
		key := mealID.String()
		out[key] = append(out[key], item)
	}

	return out, rows.Err()
}

func (s *mealsStorage) Create(ctx context.Context, meal storage.Meal) (storage.Meal, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storage.Meal{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	mealQuery := `
		INSERT INTO meals (id, owner_user_id, name, meal_type, portions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	id := uuid.New()
	if err := tx.QueryRow(ctx, mealQuery, id, meal.OwnerUserID, meal.Name, meal.MealType, meal.Portions).Scan(&meal.CreatedAt); err != nil {
		return storage.Meal{}, fmt.Errorf("failed to create meal: %w", err)
	}

	itemQuery := `
		INSERT INTO meal_items (meal_id, position, food_id, name, category, calories_per_100g, grams_per_portion)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for i, item := range meal.Items {
		batch.Queue(itemQuery, id, i, item.FoodID, item.Name, item.Category, item.CaloriesPer100g, item.GramsPerPortion)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return storage.Meal{}, fmt.Errorf("failed to insert meal items: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return storage.Meal{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	meal.ID = id.String()
	items := make([]storage.MealItem, len(meal.Items))
	copy(items, meal.Items)
	meal.Items = items
	return meal, nil
}

func (s *mealsStorage) Delete(ctx context.Context, ownerUserID string, id string) error {
	mealID, ok := parseID(id)
	if !ok {
		return storage.ErrNotFound
	}

	var owner string
	err := s.pool.QueryRow(ctx, `SELECT owner_user_id FROM meals WHERE id = $1`, mealID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get meal owner: %w", err)
	}
	if owner != ownerUserID {
		return storage.ErrForbidden
	}

	// meal_items go with ON DELETE CASCADE
	result, err := s.pool.Exec(ctx, `DELETE FROM meals WHERE id = $1 AND owner_user_id = $2`, mealID, ownerUserID)
	if err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}
