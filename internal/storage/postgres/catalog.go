package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arielallagbe23/mealprep/internal/storage"
	"github.com/arielallagbe23/mealprep/internal/textnorm"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type catalogStorage struct {
	pool *pgxpool.Pool
}

func newCatalogStorage(pool *pgxpool.Pool) *catalogStorage {
	return &catalogStorage{pool: pool}
}

const foodColumns = `
	f.id, f.name, f.category_id, COALESCE(c.name, ''), f.calories_per_100g, f.created_at
`

func (s *catalogStorage) ListCategories(ctx context.Context) ([]storage.Category, error) {
	query := `
		SELECT id, name, created_at
		FROM categories
		ORDER BY name ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []storage.Category{}
	for rows.Next() {
		var (
			c  storage.Category
			id uuid.UUID
		)
		if err := rows.Scan(&id, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.ID = id.String()
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (s *catalogStorage) GetCategory(ctx context.Context, id string) (storage.Category, bool, error) {
	categoryID, ok := parseID(id)
	if !ok {
		return storage.Category{}, false, nil
	}

	query := `
		SELECT name, created_at
		FROM categories
		WHERE id = $1
	`

	c := storage.Category{ID: categoryID.String()}
	err := s.pool.QueryRow(ctx, query, categoryID).Scan(&c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Category{}, false, nil
	}
	if err != nil {
		return storage.Category{}, false, fmt.Errorf("failed to get category: %w", err)
	}

	return c, true, nil
}

func (s *catalogStorage) CreateCategory(ctx context.Context, name string) (storage.Category, error) {
	name = strings.TrimSpace(name)

	query := `
		INSERT INTO categories (id, name, name_key)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	id := uuid.New()
	c := storage.Category{ID: id.String(), Name: name}
	err := s.pool.QueryRow(ctx, query, id, name, textnorm.Normalize(name)).Scan(&c.CreatedAt)
	if isUniqueViolation(err) {
		return storage.Category{}, fmt.Errorf("category %q: %w", name, storage.ErrConflict)
	}
	if err != nil {
		return storage.Category{}, fmt.Errorf("failed to create category: %w", err)
	}

	return c, nil
}

func (s *catalogStorage) ListFoods(ctx context.Context, categoryID string) ([]storage.Food, error) {
	query := `SELECT ` + foodColumns + `
		FROM foods f
		LEFT JOIN categories c ON c.id = f.category_id
	`
	args := []any{}

	if categoryID != "" {
		id, ok := parseID(categoryID)
		if !ok {
			return []storage.Food{}, nil
		}
		query += ` WHERE f.category_id = $1`
		args = append(args, id)
	}
	query += ` ORDER BY f.name ASC, f.id ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", err)
	}
	defer rows.Close()

	return scanFoods(rows)
}

func (s *catalogStorage) GetFoods(ctx context.Context, ids []string) ([]storage.Food, error) {
	parsed := parseIDs(ids)
	if len(parsed) == 0 {
		return []storage.Food{}, nil
	}

	query := `SELECT ` + foodColumns + `
		FROM foods f
		LEFT JOIN categories c ON c.id = f.category_id
		WHERE f.id = ANY($1)
		ORDER BY f.name ASC, f.id ASC
	`

	rows, err := s.pool.Query(ctx, query, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to get foods: %w", err)
	}
	defer rows.Close()

	return scanFoods(rows)
}

func (s *catalogStorage) CreateFood(ctx context.Context, food storage.Food) (storage.Food, error) {
	category, found, err := s.GetCategory(ctx, food.CategoryID)
	if err != nil {
		return storage.Food{}, err
	}
	if !found {
		return storage.Food{}, fmt.Errorf("category %s: %w", food.CategoryID, storage.ErrNotFound)
	}

	query := `
		INSERT INTO foods (id, name, category_id, calories_per_100g)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	id := uuid.New()
	categoryID, _ := parseID(category.ID)
	if err := s.pool.QueryRow(ctx, query, id, food.Name, categoryID, food.CaloriesPer100g).Scan(&food.CreatedAt); err != nil {
		return storage.Food{}, fmt.Errorf("failed to create food: %w", err)
	}

	food.ID = id.String()
	food.CategoryID = category.ID
	food.CategoryName = category.Name
	return food, nil
}

func scanFoods(rows pgx.Rows) ([]storage.Food, error) {
	foods := []storage.Food{}
	for rows.Next() {
		var (
			f          storage.Food
			id         uuid.UUID
			categoryID *uuid.UUID
		)
		if err := rows.Scan(&id, &f.Name, &categoryID, &f.CategoryName, &f.CaloriesPer100g, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		f.ID = id.String()
		if categoryID != nil {
			f.CategoryID = categoryID.String()
		}
		foods = append(foods, f)
	}

	return foods, rows.Err()
}
