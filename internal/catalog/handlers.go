package catalog

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// Handler handles HTTP requests for categories and foods.
type Handler struct {
	service *Service
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleListCategories handles GET /v1/categories
func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		log.Printf("catalog: list categories: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list categories")
		return
	}

	items := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		items[i] = toCategoryDTO(c)
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Items: items})
}

// HandleCreateCategory handles POST /v1/categories
func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	c, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryDTO(c))
}

// HandleListFoods handles GET /v1/foods?categoryId=&expandCategory=
func (h *Handler) HandleListFoods(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	categoryID := strings.TrimSpace(q.Get("categoryId"))
	expand, _ := strconv.ParseBool(q.Get("expandCategory"))

	foods, err := h.service.ListFoods(r.Context(), categoryID)
	if err != nil {
		log.Printf("catalog: list foods: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list foods")
		return
	}

	items := make([]FoodDTO, len(foods))
	for i, f := range foods {
		items[i] = toFoodDTO(f, expand)
	}
	writeJSON(w, http.StatusOK, FoodsResponse{Items: items})
}

// HandleCreateFood handles POST /v1/foods
func (h *Handler) HandleCreateFood(w http.ResponseWriter, r *http.Request) {
	var req CreateFoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	f, err := h.service.CreateFood(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFoodDTO(f, true))
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Category not found")
	case errors.Is(err, ErrDuplicateCategory):
		writeError(w, http.StatusConflict, "duplicate_name", "Category already exists")
	default:
		log.Printf("catalog: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to save catalog entry")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
