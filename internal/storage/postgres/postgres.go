package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arielallagbe23/mealprep/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage is the pgx-backed Storage implementation.
type PostgresStorage struct {
	pool       *pgxpool.Pool
	catalog    *catalogStorage
	meals      *mealsStorage
	calorieLog *calorieLogStorage
}

// New opens a pool against databaseURL and pings it. maxConns <= 0 keeps the pgx default.
func New(ctx context.Context, databaseURL string, maxConns int) (*PostgresStorage, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{
		pool:       pool,
		catalog:    newCatalogStorage(pool),
		meals:      newMealsStorage(pool),
		calorieLog: newCalorieLogStorage(pool),
	}, nil
}

func (p *PostgresStorage) Catalog() storage.CatalogStorage {
	return p.catalog
}

func (p *PostgresStorage) Meals() storage.MealsStorage {
	return p.meals
}

func (p *PostgresStorage) CalorieLog() storage.CalorieLogStorage {
	return p.calorieLog
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// parseID returns false for ids that cannot exist in a uuid column.
func parseID(id string) (uuid.UUID, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, false
	}
	return parsed, true
}

func parseIDs(ids []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if parsed, ok := parseID(id); ok {
			out = append(out, parsed)
		}
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
