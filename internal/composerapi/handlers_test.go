package composerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arielallagbe23/mealprep/internal/composer"
	"github.com/arielallagbe23/mealprep/internal/config"
)

type mockFoodSource struct {
	foods []composer.Food
	err   error
}

func (m *mockFoodSource) ComposerFoods(ctx context.Context) ([]composer.Food, error) {
	return m.foods, m.err
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	rules, err := composer.NewRules(config.DefaultComposerConfig())
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	source := &mockFoodSource{foods: []composer.Food{
		{ID: "rice", Name: "Basmati rice", Category: "Starches", CaloriesPer100g: 350},
		{ID: "chicken", Name: "Raw chicken breast", Category: "Proteins", CaloriesPer100g: 120},
		{ID: "broccoli", Name: "Broccoli", Category: "Vegetables", CaloriesPer100g: 35},
		{ID: "oil", Name: "Olive oil", Category: "Sides", CaloriesPer100g: 900},
	}}
	return NewHandler(NewService(source, rules, 500))
}

func post(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeSelection(t *testing.T, rec *httptest.ResponseRecorder) SelectionResponse {
	t.Helper()
	var resp SelectionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestHandleTarget(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		body   string
		target int
	}{
		{"lunch", `{"dailyKcal": 2200, "breakfastKcal": 500, "mealType": "lunch"}`, 1020},
		{"dinner", `{"dailyKcal": 2200, "breakfastKcal": 500, "mealType": "dinner"}`, 680},
		{"default breakfast", `{"dailyKcal": "2200", "mealType": "déjeuner"}`, 1020},
		{"breakfast above daily", `{"dailyKcal": 400, "breakfastKcal": 500, "mealType": "lunch"}`, 0},
		{"garbage", `{"dailyKcal": "abc", "breakfastKcal": true}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h.HandleTarget, "/v1/composer/target", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			var resp TargetResponse
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp.Target != tt.target {
				t.Fatalf("expected target %d, got %d", tt.target, resp.Target)
			}
		})
	}
}

func TestHandleAllocate_SeedsEmptySelection(t *testing.T) {
	h := newTestHandler(t)

	rec := post(t, h.HandleAllocate, "/v1/composer/allocate",
		`{"dailyKcal": 2200, "breakfastKcal": 500, "mealType": "lunch", "selection": {}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeSelection(t, rec)
	want := composer.Selection{"rice": 95, "chicken": 300, "broccoli": 200, "oil": 15}
	if len(resp.Selection) != len(want) {
		t.Fatalf("expected %v, got %v", want, resp.Selection)
	}
	for id, g := range want {
		if resp.Selection[id] != g {
			t.Fatalf("%s: expected %d g, got %d g", id, g, resp.Selection[id])
		}
	}
	if resp.Target != 1020 {
		t.Fatalf("expected target 1020, got %d", resp.Target)
	}
	// the 300 g chicken ceiling leaves the meal under target
	if resp.TotalKcal > resp.MaxKcal {
		t.Fatalf("total %d above tolerance ceiling %d", resp.TotalKcal, resp.MaxKcal)
	}
	if resp.WithinTolerance {
		t.Fatalf("expected undershoot to be reported, total %d min %d", resp.TotalKcal, resp.MinKcal)
	}
	if len(resp.Categories) == 0 {
		t.Fatal("expected per-category summary")
	}
}

func TestHandleAllocate_ZeroTargetIsNoop(t *testing.T) {
	h := newTestHandler(t)

	rec := post(t, h.HandleAllocate, "/v1/composer/allocate", `{"target": 0, "selection": {"rice": "42"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeSelection(t, rec)
	if resp.Selection["rice"] != 40 || len(resp.Selection) != 1 {
		t.Fatalf("expected selection unchanged (snapped), got %v", resp.Selection)
	}
}

func TestHandleAllocate_InvalidRatios(t *testing.T) {
	h := newTestHandler(t)

	rec := post(t, h.HandleAllocate, "/v1/composer/allocate",
		`{"target": 800, "categoryRatios": {"Starches": 1.5}, "selection": {}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("invalid_rules")) {
		t.Fatalf("expected invalid_rules code, got %s", rec.Body.String())
	}
}

func TestHandleAddRemoveAdjust(t *testing.T) {
	h := newTestHandler(t)

	rec := post(t, h.HandleAdd, "/v1/composer/add", `{"selection": {}, "foodId": "rice"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d", rec.Code)
	}
	if got := decodeSelection(t, rec).Selection["rice"]; got != 100 {
		t.Fatalf("add: expected 100 g, got %d", got)
	}

	rec = post(t, h.HandleAdd, "/v1/composer/add", `{"selection": {}, "foodId": "ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("add unknown: expected 404, got %d", rec.Code)
	}

	rec = post(t, h.HandleAdjust, "/v1/composer/adjust", `{"selection": {"chicken": 295}, "foodId": "chicken", "delta": 10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("adjust: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeSelection(t, rec)
	if resp.Grams == nil || *resp.Grams != 300 {
		t.Fatalf("adjust: expected ceiling 300, got %v", resp.Grams)
	}

	rec = post(t, h.HandleAdjust, "/v1/composer/adjust", `{"selection": {"rice": 5}, "foodId": "rice", "delta": -5}`)
	resp = decodeSelection(t, rec)
	if _, ok := resp.Selection["rice"]; ok {
		t.Fatalf("adjust to zero must deselect, got %v", resp.Selection)
	}

	rec = post(t, h.HandleAdjust, "/v1/composer/adjust", `{"selection": {}, "foodId": "rice", "delta": 3}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("adjust by 3: expected 400, got %d", rec.Code)
	}

	rec = post(t, h.HandleRemove, "/v1/composer/remove", `{"selection": {"rice": 100, "oil": 15}, "foodId": "rice"}`)
	resp = decodeSelection(t, rec)
	if len(resp.Selection) != 1 || resp.Selection["oil"] != 15 {
		t.Fatalf("remove: unexpected selection %v", resp.Selection)
	}

	rec = post(t, h.HandleRemove, "/v1/composer/remove", `{"selection": {}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("remove without foodId: expected 400, got %d", rec.Code)
	}
}

func TestAllocate_CatalogError(t *testing.T) {
	rules, _ := composer.NewRules(config.DefaultComposerConfig())
	svc := NewService(&mockFoodSource{err: errors.New("db down")}, rules, 500)

	rec := post(t, NewHandler(svc).HandleAllocate, "/v1/composer/allocate", `{"target": 800}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
