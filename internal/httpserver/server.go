package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/arielallagbe23/mealprep/internal/auth"
	"github.com/arielallagbe23/mealprep/internal/blob"
	"github.com/arielallagbe23/mealprep/internal/cache"
	"github.com/arielallagbe23/mealprep/internal/calorielog"
	"github.com/arielallagbe23/mealprep/internal/catalog"
	"github.com/arielallagbe23/mealprep/internal/composer"
	"github.com/arielallagbe23/mealprep/internal/composerapi"
	"github.com/arielallagbe23/mealprep/internal/config"
	"github.com/arielallagbe23/mealprep/internal/meals"
	"github.com/arielallagbe23/mealprep/internal/shopping"
	"github.com/arielallagbe23/mealprep/internal/storage"
	"github.com/arielallagbe23/mealprep/internal/storage/memory"
	"github.com/arielallagbe23/mealprep/internal/storage/postgres"
	"github.com/arielallagbe23/mealprep/internal/userctx"
)

const (
	StorageModeMemory   = "memory"
	StorageModePostgres = "postgres"
)

// Server wires storage, cache and blob store into the HTTP routes.
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        storage.Storage
	storageMode    string
	cache          cache.Cache
	closeCache     func() error
	blobStore      blob.Store
	blobMode       string
	rules          composer.Rules
	authMiddleware *auth.Middleware
}

// New builds the server. It fails on unusable composer rules or a forced
// S3 blob mode that cannot start; database and Redis failures fall back
// to in-process implementations.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	rules, err := composer.NewRules(cfg.Composer)
	if err != nil {
		return nil, fmt.Errorf("composer rules: %w", err)
	}

	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
		rules:  rules,
	}

	s.initStorage(ctx)
	s.initCache(ctx)

	store, mode, err := blob.NewBlobStore(ctx, cfg.Blob, log.Default())
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("blob store: %w", err)
	}
	s.blobStore, s.blobMode = store, mode

	s.routes()
	return s, nil
}

func (s *Server) initStorage(ctx context.Context) {
	if s.config.DatabaseURL == "" {
		log.Println("INFO db: DATABASE_URL not set, using in-memory storage")
		s.storage, s.storageMode = memory.New(), StorageModeMemory
		return
	}

	pg, err := postgres.New(ctx, s.config.DatabaseURL, s.config.DBMaxConns)
	if err != nil {
		log.Printf("WARN db: postgres unavailable (%v), falling back to in-memory storage", err)
		s.storage, s.storageMode = memory.New(), StorageModeMemory
		return
	}

	log.Printf("INFO db: connected to postgres (max_conns=%d)", s.config.DBMaxConns)
	s.storage, s.storageMode = pg, StorageModePostgres
}

func (s *Server) initCache(ctx context.Context) {
	if s.config.CatalogCacheTTLSecond <= 0 {
		log.Println("INFO cache: catalog cache disabled")
		return
	}

	if s.config.RedisURL == "" {
		log.Println("INFO cache: REDIS_URL not set, using in-process catalog cache")
		s.cache = cache.NewMemory()
		return
	}

	rc, err := cache.NewRedis(ctx, s.config.RedisURL)
	if err != nil {
		log.Printf("WARN cache: redis unavailable (%v), using in-process catalog cache", err)
		s.cache = cache.NewMemory()
		return
	}
	s.cache, s.closeCache = rc, rc.Close
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Auth
	authService := auth.NewService(s.config)
	authHandlers := auth.NewHandlers(s.config, authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)
	s.mux.HandleFunc("POST /v1/auth/dev", authHandlers.HandleDevAuth)
	s.mux.HandleFunc("GET /v1/users/me", authHandlers.HandleMe)

	// Catalog
	ttl := time.Duration(s.config.CatalogCacheTTLSecond) * time.Second
	catalogService := catalog.NewService(s.storage.Catalog(), s.cache, ttl)
	catalogHandler := catalog.NewHandler(catalogService)
	s.mux.HandleFunc("GET /v1/categories", catalogHandler.HandleListCategories)
	s.mux.HandleFunc("POST /v1/categories", catalogHandler.HandleCreateCategory)
	s.mux.HandleFunc("GET /v1/foods", catalogHandler.HandleListFoods)
	s.mux.HandleFunc("POST /v1/foods", catalogHandler.HandleCreateFood)

	// Composer
	breakfast := float64(s.config.Composer.DefaultBreakfastKcal)
	composerHandler := composerapi.NewHandler(composerapi.NewService(catalogService, s.rules, breakfast))
	s.mux.HandleFunc("POST /v1/composer/target", composerHandler.HandleTarget)
	s.mux.HandleFunc("POST /v1/composer/allocate", composerHandler.HandleAllocate)
	s.mux.HandleFunc("POST /v1/composer/add", composerHandler.HandleAdd)
	s.mux.HandleFunc("POST /v1/composer/remove", composerHandler.HandleRemove)
	s.mux.HandleFunc("POST /v1/composer/adjust", composerHandler.HandleAdjust)

	// Meals
	mealsService := meals.NewService(s.storage.Meals(), s.storage.Catalog(), s.config.MealsMaxItems, s.config.MealsMaxPortions)
	mealsHandler := meals.NewHandler(mealsService)
	s.mux.HandleFunc("GET /v1/meals", mealsHandler.HandleList)
	s.mux.HandleFunc("POST /v1/meals", mealsHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/meals/{id}", mealsHandler.HandleGet)
	s.mux.HandleFunc("DELETE /v1/meals/{id}", mealsHandler.HandleDelete)

	// Shopping list
	shoppingHandler := shopping.NewHandler(shopping.NewService(s.storage.Meals(), s.blobStore, s.config.Blob.S3))
	s.mux.HandleFunc("POST /v1/shopping-list", shoppingHandler.HandleBuild)
	s.mux.HandleFunc("POST /v1/shopping-list/export", shoppingHandler.HandleExport)
	s.mux.HandleFunc("POST /v1/shopping-list/pdf", shoppingHandler.HandleExport)

	// Calorie log
	calorieHandler := calorielog.NewHandler(calorielog.NewService(s.storage.CalorieLog()))
	s.mux.HandleFunc("GET /v1/calorie-log", calorieHandler.HandleList)
	s.mux.HandleFunc("POST /v1/calorie-log", calorieHandler.HandleCreate)
	s.mux.HandleFunc("DELETE /v1/calorie-log/{id}", calorieHandler.HandleDelete)
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Blob    string `json:"blob"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Storage: s.storageMode,
		Blob:    s.blobMode,
	})
}

// Handler returns the full middleware chain:
// CORS → rate limit → auth → default user → router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = userctx.Fallback(s.defaultUserID(), handler)
	handler = s.authMiddleware.Wrap(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// defaultUserID is only used while requests may arrive without a token.
func (s *Server) defaultUserID() string {
	if s.config.AuthRequired {
		return ""
	}
	return s.config.DefaultUserID
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	log.Printf("INFO http: listening on http://localhost%s (storage=%s)", addr, s.storageMode)
	log.Printf("INFO http: health check http://localhost%s/healthz", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// Close releases the storage pool and the Redis client.
func (s *Server) Close() error {
	var firstErr error
	if s.closeCache != nil {
		firstErr = s.closeCache()
	}
	if s.storage != nil {
		if err := s.storage.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ErrorResponse is the error envelope shared by every route.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}
