package meals

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arielallagbe23/mealprep/internal/composer"
	"github.com/arielallagbe23/mealprep/internal/storage"
	"github.com/arielallagbe23/mealprep/internal/storage/memory"
	"github.com/arielallagbe23/mealprep/internal/userctx"
)

type mockFoods struct {
	foods map[string]storage.Food
}

func (m *mockFoods) GetFoods(ctx context.Context, ids []string) ([]storage.Food, error) {
	var out []storage.Food
	for _, id := range ids {
		if f, ok := m.foods[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func newTestHandler() *Handler {
	foods := &mockFoods{foods: map[string]storage.Food{
		"rice":    {ID: "rice", Name: "Basmati rice", CategoryName: "Starches", CaloriesPer100g: 350},
		"chicken": {ID: "chicken", Name: "Raw chicken breast", CategoryName: "Proteins", CaloriesPer100g: 120},
		"oil":     {ID: "oil", Name: "Olive oil", CategoryName: "Sides", CaloriesPer100g: 900},
		"water":   {ID: "water", Name: "Sparkling water", CaloriesPer100g: 0},
	}}
	return NewHandler(NewService(memory.NewEmpty().Meals(), foods, 50, 50))
}

func do(h http.HandlerFunc, method, path, userID, body string, pathID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if userID != "" {
		req = req.WithContext(userctx.WithUserID(req.Context(), userID))
	}
	if pathID != "" {
		req.SetPathValue("id", pathID)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandleCreate_SnapshotAndAutoName(t *testing.T) {
	h := newTestHandler()

	rec := do(h.HandleCreate, http.MethodPost, "/v1/meals", "user1",
		`{"mealType": "lunch", "portions": 3, "selection": {"rice": 95, "chicken": "300", "oil": 0, "water": 12}}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var meal MealDTO
	if err := json.NewDecoder(rec.Body).Decode(&meal); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meal.Name != "Lunch — Basmati rice + Raw chicken breast" {
		t.Fatalf("unexpected auto name %q", meal.Name)
	}
	if meal.Portions != 3 || meal.MealType != "lunch" {
		t.Fatalf("unexpected meal: %+v", meal)
	}
	if len(meal.Items) != 3 {
		t.Fatalf("expected 3 items (0 g dropped), got %d", len(meal.Items))
	}
	// sorted by category: Other, Proteins, Starches
	if meal.Items[0].Category != "Other" || meal.Items[0].GramsPerPortion != 10 {
		t.Fatalf("expected water in Other snapped to 10 g, got %+v", meal.Items[0])
	}
	if meal.KcalPerPortion != 693 {
		t.Fatalf("expected 693 kcal per portion, got %d", meal.KcalPerPortion)
	}
}

func TestHandleCreate_Validation(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{"empty selection", `{"mealType": "dinner", "selection": {}}`},
		{"only zero grams", `{"selection": {"rice": 0}}`},
		{"unknown food", `{"selection": {"ghost": 100}}`},
		{"negative portions", `{"portions": -2, "selection": {"rice": 100}}`},
		{"too many portions", `{"portions": 51, "selection": {"rice": 100}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h.HandleCreate, http.MethodPost, "/v1/meals", "user1", tt.body, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestMealsOwnerScoping(t *testing.T) {
	h := newTestHandler()

	rec := do(h.HandleCreate, http.MethodPost, "/v1/meals", "user1",
		`{"name": "  Meal prep A ", "mealType": "dinner", "selection": {"rice": 100}}`, "")
	var meal MealDTO
	json.NewDecoder(rec.Body).Decode(&meal)
	if meal.Name != "Meal prep A" || meal.Portions != 1 {
		t.Fatalf("unexpected meal: %+v", meal)
	}

	rec = do(h.HandleList, http.MethodGet, "/v1/meals", "user2", "", "")
	var list ListMealsResponse
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list.Items) != 0 {
		t.Fatalf("user2 must not see user1 meals, got %d", len(list.Items))
	}

	rec = do(h.HandleGet, http.MethodGet, "/v1/meals/"+meal.ID, "user2", "", meal.ID)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign meal, got %d", rec.Code)
	}

	rec = do(h.HandleDelete, http.MethodDelete, "/v1/meals/"+meal.ID, "user2", "", meal.ID)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = do(h.HandleDelete, http.MethodDelete, "/v1/meals/"+meal.ID, "user1", "", meal.ID)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = do(h.HandleDelete, http.MethodDelete, "/v1/meals/"+meal.ID, "user1", "", meal.ID)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestHandleList_RequiresUser(t *testing.T) {
	h := newTestHandler()

	rec := do(h.HandleList, http.MethodGet, "/v1/meals", "", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAutoName_Fallbacks(t *testing.T) {
	tests := []struct {
		name  string
		mt    composer.MealType
		items []storage.MealItem
		want  string
	}{
		{"no items", composer.Dinner, nil, "Dinner — starch + protein"},
		{
			"french categories",
			composer.Lunch,
			[]storage.MealItem{{Name: "Riz", Category: "Féculents"}, {Name: "Poulet", Category: "Protéines"}},
			"Lunch — Riz + Poulet",
		},
		{
			"protein source fallback",
			composer.Dinner,
			[]storage.MealItem{{Name: "Broccoli", Category: "Vegetables"}, {Name: "Cod", Category: "Fish"}},
			"Dinner — Broccoli + Cod",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AutoName(tt.mt, tt.items); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestToDTO_NullFoodID(t *testing.T) {
	dto := toDTO(storage.Meal{Items: []storage.MealItem{{Name: "Bread", GramsPerPortion: 50}}})
	raw, _ := json.Marshal(dto)
	if !strings.Contains(string(raw), `"foodId":null`) {
		t.Fatalf("expected null foodId, got %s", raw)
	}
}
