package auth

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/arielallagbe23/mealprep/internal/config"
	"github.com/arielallagbe23/mealprep/internal/userctx"
)

type Handlers struct {
	config  *config.Config
	service *Service
}

func NewHandlers(cfg *config.Config, service *Service) *Handlers {
	return &Handlers{config: cfg, service: service}
}

// HandleDevAuth handles POST /v1/auth/dev
func (h *Handlers) HandleDevAuth(w http.ResponseWriter, r *http.Request) {
	var req DevAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	resp, err := h.service.SignInDev(req.UserID)
	switch {
	case errors.Is(err, ErrDevAuthOff):
		writeErrorResponse(w, http.StatusNotFound, "not_found", "Dev auth is disabled")
		return
	case errors.Is(err, ErrInvalidUserID):
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "userId must be 1-64 characters of [A-Za-z0-9._@-]")
		return
	case err != nil:
		writeErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to issue token")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// HandleMe handles GET /v1/users/me
func (h *Handlers) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "User not resolved")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(MeResponse{
		UserID:        userID,
		Authenticated: isAuthenticated(r),
		AuthMode:      h.config.AuthMode,
	})
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
