package shopping

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/arielallagbe23/mealprep/internal/userctx"
)

// Handler handles HTTP requests for shopping lists.
type Handler struct {
	service *Service
}

// NewHandler creates a new shopping handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleBuild handles POST /v1/shopping-list
func (h *Handler) HandleBuild(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "User not resolved")
		return
	}

	var req ListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	resp, err := h.service.BuildList(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleExport handles POST /v1/shopping-list/export and POST /v1/shopping-list/pdf
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "User not resolved")
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if f := r.URL.Query().Get("format"); f != "" {
		req.Format = f
	}

	export, err := h.service.Export(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if export.URL != "" {
		writeJSON(w, http.StatusCreated, ExportResponse{
			Format:         export.Format,
			URL:            export.URL,
			ObjectKey:      export.ObjectKey,
			SizeBytes:      export.SizeBytes,
			SkippedMealIDs: export.Skipped,
		})
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(export.Data)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to build shopping list")
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
