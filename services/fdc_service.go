package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"backend/apperrors"
)

const fdcBaseURL = "https://api.nal.usda.gov/fdc/v1"

// unitToGrams converts supported serving units to grams. Unrecognized
// units fall back to a factor of 1 (treated as grams) — an explicit
// approximation carried over from the original behavior, not a bug.
var unitToGrams = map[string]float64{
	"g":  1,
	"oz": 28.3495,
	"lb": 453.592,
	"kg": 1000,
}

// FoodRecord is the normalized lookup result. Macro values are scaled to
// the display serving; a nil macro means the provider did not report it.
type FoodRecord struct {
	Description     string   `json:"description"`
	FdcID           int64    `json:"fdcId"`
	DataType        string   `json:"dataType"`
	ServingSize     float64  `json:"servingSize"`
	ServingSizeUnit string   `json:"servingSizeUnit"`
	Calories        *float64 `json:"calories"`
	Protein         *float64 `json:"protein"`
	Carbs           *float64 `json:"carbs"`
	Fat             *float64 `json:"fat"`
}

// FDCService queries the USDA FoodData Central API.
type FDCService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewFDCService(apiKey string) *FDCService {
	return &FDCService{
		apiKey:  apiKey,
		baseURL: fdcBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewFDCServiceForTest builds a service pointed at a stub provider.
func NewFDCServiceForTest(apiKey, baseURL string, client *http.Client) *FDCService {
	return &FDCService{apiKey: apiKey, baseURL: baseURL, client: client}
}

type fdcSearchResponse struct {
	Foods []struct {
		FdcID int64 `json:"fdcId"`
	} `json:"foods"`
}

// fdcFoodNutrient covers both response shapes the API returns: flat
// (nutrientName/unitName/value on search-style records) and nested
// (nutrient.name/nutrient.unitName/amount on detail records).
type fdcFoodNutrient struct {
	Nutrient *struct {
		Name     string   `json:"name"`
		UnitName string   `json:"unitName"`
		Amount   *float64 `json:"amount"`
	} `json:"nutrient"`
	NutrientName string   `json:"nutrientName"`
	UnitName     string   `json:"unitName"`
	Amount       *float64 `json:"amount"`
	Value        *float64 `json:"value"`
}

func (n *fdcFoodNutrient) name() string {
	if n.Nutrient != nil && n.Nutrient.Name != "" {
		return n.Nutrient.Name
	}
	return n.NutrientName
}

func (n *fdcFoodNutrient) unit() string {
	if n.Nutrient != nil && n.Nutrient.UnitName != "" {
		return n.Nutrient.UnitName
	}
	return n.UnitName
}

func (n *fdcFoodNutrient) amount() *float64 {
	if n.Amount != nil {
		return n.Amount
	}
	if n.Value != nil {
		return n.Value
	}
	if n.Nutrient != nil {
		return n.Nutrient.Amount
	}
	return nil
}

type fdcFoodDetail struct {
	Description     string            `json:"description"`
	FdcID           int64             `json:"fdcId"`
	DataType        string            `json:"dataType"`
	ServingSize     float64           `json:"servingSize"`
	ServingSizeUnit string            `json:"servingSizeUnit"`
	FoodNutrients   []fdcFoodNutrient `json:"foodNutrients"`
}

// SearchFood resolves a free-text query to the top-ranked match, then
// fetches its detail record. There is no disambiguation: first result only.
func (s *FDCService) SearchFood(ctx context.Context, query string, servingSize *float64, unit string) (*FoodRecord, error) {
	if query == "" {
		return nil, apperrors.NewValidation("query is required")
	}
	if s.apiKey == "" {
		return nil, apperrors.ErrMissingAPIKey
	}

	searchURL := fmt.Sprintf("%s/foods/search?api_key=%s&query=%s&pageSize=1",
		s.baseURL, url.QueryEscape(s.apiKey), url.QueryEscape(query))

	var search fdcSearchResponse
	if err := s.getJSON(ctx, searchURL, &search); err != nil {
		return nil, err
	}
	if len(search.Foods) == 0 {
		return nil, apperrors.ErrFoodNotFound
	}

	return s.FetchByFdcID(ctx, search.Foods[0].FdcID, servingSize, unit)
}

// FetchByFdcID fetches the detail record for a known FDC id and extracts
// the macro breakdown, rescaled to the requested serving when one is given.
func (s *FDCService) FetchByFdcID(ctx context.Context, fdcID int64, servingSize *float64, unit string) (*FoodRecord, error) {
	if fdcID == 0 {
		return nil, apperrors.NewValidation("fdcId is required")
	}
	if s.apiKey == "" {
		return nil, apperrors.ErrMissingAPIKey
	}

	detailURL := fmt.Sprintf("%s/food/%d?api_key=%s", s.baseURL, fdcID, url.QueryEscape(s.apiKey))

	var detail fdcFoodDetail
	if err := s.getJSON(ctx, detailURL, &detail); err != nil {
		return nil, err
	}

	return extractMacros(&detail, servingSize, unit), nil
}

func (s *FDCService) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call FDC API: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.ErrUpstreamAuth
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.ErrFoodNotFound
	default:
		return apperrors.NewUpstream(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse FDC response: %w", err)
	}
	return nil
}

// extractMacros pulls the four tracked nutrients out of a detail record
// and rescales them from the API-reported serving to the requested one.
// Both servings are converted to a common gram basis; an invalid requested
// serving is ignored (scale stays 1) rather than corrupting output.
func extractMacros(food *fdcFoodDetail, servingSize *float64, unit string) *FoodRecord {
	find := func(name, unitName string) *fdcFoodNutrient {
		for i := range food.FoodNutrients {
			n := &food.FoodNutrients[i]
			if n.name() != name {
				continue
			}
			if unitName == "" || strings.EqualFold(n.unit(), unitName) {
				return n
			}
		}
		return nil
	}

	// Energy may be reported as "Energy" or an Atwater energy entry;
	// any kcal entry whose name contains "Energy" is accepted as fallback.
	energy := find("Energy", "kcal")
	if energy == nil {
		for i := range food.FoodNutrients {
			n := &food.FoodNutrients[i]
			if strings.Contains(n.name(), "Energy") && strings.EqualFold(n.unit(), "kcal") {
				energy = n
				break
			}
		}
	}
	protein := find("Protein", "")
	carbs := find("Carbohydrate, by difference", "")
	fat := find("Total lipid (fat)", "")

	apiServingSize := food.ServingSize
	if apiServingSize == 0 {
		apiServingSize = 100
	}
	apiUnitLabel := food.ServingSizeUnit
	if apiUnitLabel == "" {
		apiUnitLabel = "g"
	}
	apiGrams := toGrams(apiServingSize, apiUnitLabel)
	if !isPositiveFinite(apiGrams) {
		apiGrams = apiServingSize
	}

	displayServingSize := apiServingSize
	displayUnit := apiUnitLabel
	scale := 1.0

	if servingSize != nil && isPositiveFinite(*servingSize) {
		requestedUnit := unit
		if requestedUnit == "" {
			requestedUnit = "g"
		}
		userGrams := toGrams(*servingSize, requestedUnit)
		if !isPositiveFinite(userGrams) {
			userGrams = *servingSize
		}
		if next := userGrams / apiGrams; isPositiveFinite(next) {
			scale = next
		}
		displayServingSize = *servingSize
		displayUnit = requestedUnit
	}

	scaled := func(n *fdcFoodNutrient) *float64 {
		if n == nil {
			return nil
		}
		amount := n.amount()
		if amount == nil {
			return nil
		}
		v := *amount * scale
		return &v
	}

	return &FoodRecord{
		Description:     food.Description,
		FdcID:           food.FdcID,
		DataType:        food.DataType,
		ServingSize:     displayServingSize,
		ServingSizeUnit: displayUnit,
		Calories:        scaled(energy),
		Protein:         scaled(protein),
		Carbs:           scaled(carbs),
		Fat:             scaled(fat),
	}
}

func toGrams(size float64, unit string) float64 {
	factor, ok := unitToGrams[strings.ToLower(unit)]
	if !ok {
		factor = 1
	}
	return size * factor
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
