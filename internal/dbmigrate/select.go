package dbmigrate

import (
	"errors"

	"github.com/arielallagbe23/mealprep/internal/config"
)

var (
	ErrDirectURLRequired = errors.New("DATABASE_URL_DIRECT is required for DDL/migrations")
	ErrNoDatabaseURL     = errors.New("no database URL configured (set DATABASE_URL_DIRECT or DATABASE_URL)")
)

const pooledDDLWarning = "using pooled connection for DDL is not recommended; set DATABASE_URL_DIRECT"

type urlCandidate struct {
	source  string
	url     string
	warning string
}

// SelectDatabaseURL picks the connection goose runs on.
// Order: DATABASE_URL_DIRECT, DATABASE_URL, then DATABASE_URL_POOLED with a
// warning, since schema changes through a transaction pooler can misbehave.
// requireDirect (startup migrations) accepts only the direct URL.
func SelectDatabaseURL(cfg *config.Config, requireDirect bool) (dbURL string, source string, warning string, err error) {
	candidates := []urlCandidate{
		{source: "DATABASE_URL_DIRECT", url: cfg.DatabaseURLDirect},
	}
	if !requireDirect {
		candidates = append(candidates,
			urlCandidate{source: "DATABASE_URL", url: cfg.DatabaseURLRaw},
			urlCandidate{source: "DATABASE_URL_POOLED", url: cfg.DatabaseURLPooled, warning: pooledDDLWarning},
		)
	}

	for _, c := range candidates {
		if c.url != "" {
			return c.url, c.source, c.warning, nil
		}
	}

	if requireDirect {
		return "", "", "", ErrDirectURLRequired
	}
	return "", "", "", ErrNoDatabaseURL
}
