package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/apperrors"
)

func f64(v float64) *float64 { return &v }

func bananaDetail() *fdcFoodDetail {
	detail := &fdcFoodDetail{
		Description: "Banana, raw",
		FdcID:       1105314,
		DataType:    "SR Legacy",
	}
	detail.FoodNutrients = []fdcFoodNutrient{
		{NutrientName: "Energy", UnitName: "kcal", Value: f64(89)},
		{NutrientName: "Protein", UnitName: "g", Value: f64(1.1)},
		{NutrientName: "Carbohydrate, by difference", UnitName: "g", Value: f64(22.8)},
		{NutrientName: "Total lipid (fat)", UnitName: "g", Value: f64(0.3)},
	}
	return detail
}

func TestExtractMacrosDefaultServing(t *testing.T) {
	record := extractMacros(bananaDetail(), nil, "")

	assert.Equal(t, "Banana, raw", record.Description)
	assert.Equal(t, int64(1105314), record.FdcID)
	assert.Equal(t, 100.0, record.ServingSize)
	assert.Equal(t, "g", record.ServingSizeUnit)
	require.NotNil(t, record.Calories)
	assert.Equal(t, 89.0, *record.Calories)
	require.NotNil(t, record.Protein)
	assert.Equal(t, 1.1, *record.Protein)
}

func TestExtractMacrosScalesToRequestedServing(t *testing.T) {
	record := extractMacros(bananaDetail(), f64(150), "g")

	assert.Equal(t, 150.0, record.ServingSize)
	assert.Equal(t, "g", record.ServingSizeUnit)
	require.NotNil(t, record.Calories)
	assert.InDelta(t, 89*1.5, *record.Calories, 1e-9)
	assert.InDelta(t, 1.1*1.5, *record.Protein, 1e-9)
	assert.InDelta(t, 22.8*1.5, *record.Carbs, 1e-9)
	assert.InDelta(t, 0.3*1.5, *record.Fat, 1e-9)
}

func TestExtractMacrosUnitConversion(t *testing.T) {
	// 1 oz of a 100 g API serving: scale = 28.3495/100.
	record := extractMacros(bananaDetail(), f64(1), "oz")

	assert.Equal(t, 1.0, record.ServingSize)
	assert.Equal(t, "oz", record.ServingSizeUnit)
	require.NotNil(t, record.Calories)
	assert.InDelta(t, 89*28.3495/100, *record.Calories, 1e-9)
}

func TestExtractMacrosUnknownUnitTreatedAsGrams(t *testing.T) {
	record := extractMacros(bananaDetail(), f64(200), "cups")

	assert.Equal(t, "cups", record.ServingSizeUnit)
	require.NotNil(t, record.Calories)
	assert.InDelta(t, 89*2, *record.Calories, 1e-9)
}

func TestExtractMacrosInvalidServingFallsBackToRaw(t *testing.T) {
	for _, size := range []float64{0, -5, math.Inf(1), math.NaN()} {
		record := extractMacros(bananaDetail(), &size, "g")
		require.NotNil(t, record.Calories)
		assert.Equal(t, 89.0, *record.Calories, "size=%v must not scale", size)
		assert.Equal(t, 100.0, record.ServingSize, "invalid serving keeps API display size")
	}
}

func TestExtractMacrosNonDefaultAPIServing(t *testing.T) {
	detail := bananaDetail()
	detail.ServingSize = 50
	detail.ServingSizeUnit = "g"

	record := extractMacros(detail, f64(100), "g")
	require.NotNil(t, record.Calories)
	assert.InDelta(t, 89*2, *record.Calories, 1e-9)
}

func TestExtractMacrosEnergyNameFallback(t *testing.T) {
	detail := bananaDetail()
	detail.FoodNutrients[0] = fdcFoodNutrient{
		NutrientName: "Energy (Atwater General Factors)",
		UnitName:     "KCAL",
		Value:        f64(91),
	}

	record := extractMacros(detail, nil, "")
	require.NotNil(t, record.Calories)
	assert.Equal(t, 91.0, *record.Calories)
}

func TestExtractMacrosNestedNutrientShape(t *testing.T) {
	detail := &fdcFoodDetail{Description: "Cheddar cheese", FdcID: 328637}
	nested := func(name, unit string, amount float64) fdcFoodNutrient {
		n := fdcFoodNutrient{Amount: f64(amount)}
		n.Nutrient = &struct {
			Name     string   `json:"name"`
			UnitName string   `json:"unitName"`
			Amount   *float64 `json:"amount"`
		}{Name: name, UnitName: unit}
		return n
	}
	detail.FoodNutrients = []fdcFoodNutrient{
		nested("Energy", "kcal", 402),
		nested("Protein", "g", 23),
	}

	record := extractMacros(detail, nil, "")
	require.NotNil(t, record.Calories)
	assert.Equal(t, 402.0, *record.Calories)
	require.NotNil(t, record.Protein)
	assert.Equal(t, 23.0, *record.Protein)
	assert.Nil(t, record.Carbs, "missing nutrient must surface as nil, not zero")
	assert.Nil(t, record.Fat)
}

func TestExtractMacrosMissingMacroStaysNilWhenScaled(t *testing.T) {
	detail := bananaDetail()
	detail.FoodNutrients = detail.FoodNutrients[:1] // energy only

	record := extractMacros(detail, f64(150), "g")
	require.NotNil(t, record.Calories)
	assert.Nil(t, record.Protein)
	assert.Nil(t, record.Carbs)
	assert.Nil(t, record.Fat)
}

func newTestFDCService(t *testing.T, handler http.Handler) (*FDCService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &FDCService{apiKey: "test-key", baseURL: srv.URL, client: srv.Client()}, srv
}

func TestSearchFoodTwoCallFlow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/foods/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "banana", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		fmt.Fprint(w, `{"foods":[{"fdcId":1105314}]}`)
	})
	mux.HandleFunc("/food/1105314", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"description": "Banana, raw",
			"fdcId": 1105314,
			"dataType": "SR Legacy",
			"foodNutrients": [
				{"nutrientName": "Energy", "unitName": "kcal", "value": 89},
				{"nutrientName": "Protein", "unitName": "g", "value": 1.1}
			]
		}`)
	})
	svc, _ := newTestFDCService(t, mux)

	record, err := svc.SearchFood(context.Background(), "banana", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Banana, raw", record.Description)
	assert.Equal(t, 100.0, record.ServingSize)
	require.NotNil(t, record.Calories)
	assert.Equal(t, 89.0, *record.Calories)
}

func TestSearchFoodNoMatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/foods/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"foods":[]}`)
	})
	svc, _ := newTestFDCService(t, mux)

	_, err := svc.SearchFood(context.Background(), "zzzz", nil, "")
	assert.ErrorIs(t, err, apperrors.ErrFoodNotFound)
}

func TestSearchFoodProviderAuthRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/foods/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	svc, _ := newTestFDCService(t, mux)

	_, err := svc.SearchFood(context.Background(), "banana", nil, "")
	assert.ErrorIs(t, err, apperrors.ErrUpstreamAuth)
}

func TestFetchByFdcIDDetailMiss(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/food/42", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	svc, _ := newTestFDCService(t, mux)

	_, err := svc.FetchByFdcID(context.Background(), 42, nil, "")
	assert.ErrorIs(t, err, apperrors.ErrFoodNotFound)
}

func TestFetchByFdcIDUpstreamErrorCarriesStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/food/42", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	svc, _ := newTestFDCService(t, mux)

	_, err := svc.FetchByFdcID(context.Background(), 42, nil, "")
	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "503")
}

func TestLookupWithoutAPIKey(t *testing.T) {
	svc := NewFDCService("")

	_, err := svc.SearchFood(context.Background(), "banana", nil, "")
	assert.ErrorIs(t, err, apperrors.ErrMissingAPIKey)

	_, err = svc.FetchByFdcID(context.Background(), 42, nil, "")
	assert.ErrorIs(t, err, apperrors.ErrMissingAPIKey)
}
