package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"backend/middlewares"
	"backend/models"
	"backend/services"
)

// memMealRepo is an in-memory MealRepository for handler-level tests.
type memMealRepo struct {
	meals map[string]*models.Meal
}

func newMemMealRepo() *memMealRepo {
	return &memMealRepo{meals: map[string]*models.Meal{}}
}

func (r *memMealRepo) Create(ctx context.Context, meal *models.Meal) error {
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}
	stored := *meal
	r.meals[meal.ID] = &stored
	return nil
}

func (r *memMealRepo) ListByUser(ctx context.Context, userID string) ([]models.Meal, error) {
	var out []models.Meal
	for _, m := range r.meals {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMealRepo) FindByID(ctx context.Context, id string) (*models.Meal, error) {
	if m, ok := r.meals[id]; ok {
		stored := *m
		return &stored, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memMealRepo) Save(ctx context.Context, meal *models.Meal) error {
	stored := *meal
	r.meals[meal.ID] = &stored
	return nil
}

func (r *memMealRepo) Delete(ctx context.Context, meal *models.Meal) error {
	delete(r.meals, meal.ID)
	return nil
}

// asUser stands in for the auth middleware in tests.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.ContextUserID, userID)
		c.Next()
	}
}

func newMealRouter(repo *memMealRepo, userID string) *gin.Engine {
	ct := NewMealController(services.NewMealService(repo))
	r := gin.New()
	meals := r.Group("/api/meals", asUser(userID))
	{
		meals.GET("", ct.List)
		meals.POST("", ct.Create)
		meals.GET("/:id", ct.Get)
		meals.PUT("/:id", ct.Update)
		meals.DELETE("/:id", ct.Delete)
	}
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestMealCreateThenFetchRoundTrip(t *testing.T) {
	repo := newMemMealRepo()
	r := newMealRouter(repo, "user-a")

	w := doJSON(r, http.MethodPost, "/api/meals", `{
		"foodName": "Banana",
		"servingSize": 150,
		"servingUnit": "G",
		"servings": 2,
		"nutrition": {"calories": 89, "protein": 1.1},
		"date": "2026-08-30",
		"isPlanned": true
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Meal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "g", created.ServingUnit)

	w = doJSON(r, http.MethodGet, "/api/meals/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var fetched models.Meal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Banana", fetched.FoodName)
	assert.Equal(t, 2.0, fetched.Servings)
	assert.Equal(t, "2026-08-30", fetched.Date)
	assert.True(t, fetched.IsPlanned)
	require.NotNil(t, fetched.Nutrition.Calories)
	assert.Equal(t, 89.0, *fetched.Nutrition.Calories)
}

func TestMealCreateWithoutMacrosRejected(t *testing.T) {
	r := newMealRouter(newMemMealRepo(), "user-a")

	w := doJSON(r, http.MethodPost, "/api/meals", `{"foodName": "Mystery", "nutrition": {}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMealOwnershipAtAPIBoundary(t *testing.T) {
	repo := newMemMealRepo()
	owner := newMealRouter(repo, "user-a")
	intruder := newMealRouter(repo, "user-b")

	w := doJSON(owner, http.MethodPost, "/api/meals", `{"foodName": "Oats", "nutrition": {"calories": 150}}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Meal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// not in the other tenant's list
	w = doJSON(intruder, http.MethodGet, "/api/meals", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), created.ID)

	// get/update/delete are 403, not 404
	assert.Equal(t, http.StatusForbidden, doJSON(intruder, http.MethodGet, "/api/meals/"+created.ID, "").Code)
	assert.Equal(t, http.StatusForbidden, doJSON(intruder, http.MethodPut, "/api/meals/"+created.ID, `{"servings": 3}`).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(intruder, http.MethodDelete, "/api/meals/"+created.ID, "").Code)

	// the owner can still delete; a repeat delete is 404
	assert.Equal(t, http.StatusNoContent, doJSON(owner, http.MethodDelete, "/api/meals/"+created.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(owner, http.MethodDelete, "/api/meals/"+created.ID, "").Code)
}

func TestMealUpdateUnknownID(t *testing.T) {
	r := newMealRouter(newMemMealRepo(), "user-a")

	w := doJSON(r, http.MethodPut, "/api/meals/"+uuid.NewString(), `{"servings": 2}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
