package shopping

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arielallagbe23/mealprep/internal/config"
	"github.com/arielallagbe23/mealprep/internal/storage"
	"github.com/arielallagbe23/mealprep/internal/userctx"
)

type mockMealsRepo struct {
	meals map[string]storage.Meal
}

func (m *mockMealsRepo) GetMany(ctx context.Context, ids []string) ([]storage.Meal, error) {
	var out []storage.Meal
	for _, id := range ids {
		if meal, ok := m.meals[id]; ok {
			out = append(out, meal)
		}
	}
	return out, nil
}

type mockBlobStore struct {
	objects     map[string][]byte
	contentType string
	deleted     []string
}

func (m *mockBlobStore) PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error) {
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = data
	m.contentType = contentType
	return int64(len(data)), nil
}

func (m *mockBlobStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://s3.local/" + key + "?ttl=" + ttl.String(), nil
}

func (m *mockBlobStore) DeleteObject(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

func newTestRepo() *mockMealsRepo {
	return &mockMealsRepo{meals: map[string]storage.Meal{
		"m1": {ID: "m1", OwnerUserID: "user1", Name: "Lunch — Rice + Salmon", Portions: 2, Items: []storage.MealItem{
			{FoodID: "rice", Name: "Basmati rice", Category: "Starches", CaloriesPer100g: 350, GramsPerPortion: 100},
			{FoodID: "salmon", Name: "Salmon", Category: "Proteins", CaloriesPer100g: 200, GramsPerPortion: 150},
		}},
		"m2": {ID: "m2", OwnerUserID: "user1", Name: "Dinner — Rice + Chicken", Portions: 1, Items: []storage.MealItem{
			{FoodID: "rice", Name: "Basmati rice", Category: "Starches", CaloriesPer100g: 350, GramsPerPortion: 150},
		}},
		"foreign": {ID: "foreign", OwnerUserID: "user2", Name: "Not mine", Portions: 1, Items: []storage.MealItem{
			{FoodID: "oil", Name: "Olive oil", Category: "Sides", CaloriesPer100g: 900, GramsPerPortion: 10},
		}},
	}}
}

func doRequest(h http.HandlerFunc, path string, body string, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	if userID != "" {
		req = req.WithContext(userctx.WithUserID(req.Context(), userID))
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestHandleBuild_Success(t *testing.T) {
	handler := NewHandler(NewService(newTestRepo(), nil, config.S3Config{}))

	body := `{"mealIds": ["m1", "m2", "missing", "foreign", "m1"], "portionsByMeal": {"m1": 2, "m2": "1"}}`
	w := doRequest(handler.HandleBuild, "/v1/shopping-list", body, "user1")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resp.Items))
	}
	// Proteins sorts before Starches
	if resp.Items[0].Name != "Salmon" || resp.Items[0].Grams != 300 {
		t.Errorf("unexpected first item: %+v", resp.Items[0])
	}
	if resp.Items[1].Name != "Basmati rice" || resp.Items[1].Grams != 350 {
		t.Errorf("unexpected second item: %+v", resp.Items[1])
	}
	if len(resp.SkippedMealIDs) != 2 || resp.SkippedMealIDs[0] != "missing" || resp.SkippedMealIDs[1] != "foreign" {
		t.Errorf("unexpected skipped ids: %v", resp.SkippedMealIDs)
	}
	if len(resp.Meals) != 2 || resp.Meals[0].Multiplier != 2 {
		t.Errorf("unexpected meals: %+v", resp.Meals)
	}
	if resp.TotalGrams != 650 {
		t.Errorf("expected total 650, got %d", resp.TotalGrams)
	}
}

func TestHandleBuild_EmptyMealIDs(t *testing.T) {
	handler := NewHandler(NewService(newTestRepo(), nil, config.S3Config{}))

	w := doRequest(handler.HandleBuild, "/v1/shopping-list", `{"mealIds": []}`, "user1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid_request") {
		t.Errorf("expected invalid_request code, got %s", w.Body.String())
	}
}

func TestHandleBuild_Unauthorized(t *testing.T) {
	handler := NewHandler(NewService(newTestRepo(), nil, config.S3Config{}))

	w := doRequest(handler.HandleBuild, "/v1/shopping-list", `{"mealIds": ["m1"]}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestHandleExport_StreamsPDFWithoutStore(t *testing.T) {
	handler := NewHandler(NewService(newTestRepo(), nil, config.S3Config{}))

	w := doRequest(handler.HandleExport, "/v1/shopping-list/pdf", `{"mealIds": ["m1", "m2"]}`, "user1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %s", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected a PDF document")
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), ".pdf") {
		t.Errorf("unexpected content disposition: %s", w.Header().Get("Content-Disposition"))
	}
}

func TestHandleExport_CSV(t *testing.T) {
	handler := NewHandler(NewService(newTestRepo(), nil, config.S3Config{}))

	w := doRequest(handler.HandleExport, "/v1/shopping-list/export?format=csv", `{"mealIds": ["m2"]}`, "user1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "category,name,grams,calories_per_100g,food_id" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "Starches,Basmati rice,150,350,rice" {
		t.Errorf("unexpected row: %s", lines[1])
	}
}

func TestHandleExport_UploadsWhenStoreConfigured(t *testing.T) {
	store := &mockBlobStore{}
	handler := NewHandler(NewService(newTestRepo(), store, config.S3Config{PresignTTLSeconds: 60}))

	w := doRequest(handler.HandleExport, "/v1/shopping-list/export", `{"mealIds": ["m1"], "format": "pdf"}`, "user1")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp ExportResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := store.objects[resp.ObjectKey]; !ok {
		t.Fatalf("expected object %q to be uploaded", resp.ObjectKey)
	}
	if store.contentType != "application/pdf" {
		t.Errorf("unexpected content type: %s", store.contentType)
	}
	if !strings.HasPrefix(resp.URL, "https://s3.local/exports/user1/") || !strings.HasSuffix(resp.URL, "ttl=1m0s") {
		t.Errorf("unexpected url: %s", resp.URL)
	}
}

func TestHandleExport_PublicURL(t *testing.T) {
	store := &mockBlobStore{}
	cfg := config.S3Config{PublicBaseURL: "https://cdn.example.com/exports-bucket", PreferPublicURL: true}
	handler := NewHandler(NewService(newTestRepo(), store, cfg))

	w := doRequest(handler.HandleExport, "/v1/shopping-list/export", `{"mealIds": ["m1"], "format": "csv"}`, "user1")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	var resp ExportResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !strings.HasPrefix(resp.URL, "https://cdn.example.com/exports-bucket/exports/user1/") {
		t.Errorf("unexpected url: %s", resp.URL)
	}
}

func TestHandleExport_InvalidFormat(t *testing.T) {
	handler := NewHandler(NewService(newTestRepo(), nil, config.S3Config{}))

	w := doRequest(handler.HandleExport, "/v1/shopping-list/export", `{"mealIds": ["m1"], "format": "docx"}`, "user1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}
