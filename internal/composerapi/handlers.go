package composerapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/arielallagbe23/mealprep/internal/composer"
)

// Handler handles HTTP requests for the meal composer.
type Handler struct {
	service *Service
}

// NewHandler creates a new composer handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleTarget handles POST /v1/composer/target
func (h *Handler) HandleTarget(w http.ResponseWriter, r *http.Request) {
	var req TargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, h.service.Target(req.TargetInput))
}

// HandleAllocate handles POST /v1/composer/allocate
func (h *Handler) HandleAllocate(w http.ResponseWriter, r *http.Request) {
	var req AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	resp, err := h.service.Allocate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleAdd handles POST /v1/composer/add
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	h.handleFood(w, r, h.service.Add)
}

// HandleRemove handles POST /v1/composer/remove
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	h.handleFood(w, r, h.service.Remove)
}

// HandleAdjust handles POST /v1/composer/adjust
func (h *Handler) HandleAdjust(w http.ResponseWriter, r *http.Request) {
	h.handleFood(w, r, h.service.Adjust)
}

func (h *Handler) handleFood(w http.ResponseWriter, r *http.Request, op func(context.Context, FoodRequest) (SelectionResponse, error)) {
	var req FoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	resp, err := op(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, composer.ErrInvalidRules):
		writeError(w, http.StatusBadRequest, "invalid_rules", err.Error())
	case errors.Is(err, ErrFoodNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Food not found")
	default:
		log.Printf("composer: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compose meal")
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
