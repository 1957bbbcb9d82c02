package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"backend/apperrors"
	"backend/models"
	"backend/repository"
)

const dateLayout = "2006-01-02"

// MealService owns the CRUD contract for logged and planned meals. Every
// read and mutation is scoped to the calling user; a valid id owned by
// someone else is Forbidden, not NotFound.
type MealService struct {
	meals repository.MealRepository
}

func NewMealService(meals repository.MealRepository) *MealService {
	return &MealService{meals: meals}
}

// CreateMealInput carries the caller-supplied fields for a new meal.
type CreateMealInput struct {
	FoodID      *string           `json:"foodId"`
	FoodName    string            `json:"foodName"`
	ServingSize *float64          `json:"servingSize"`
	ServingUnit string            `json:"servingUnit"`
	Servings    *float64          `json:"servings"`
	Nutrition   *models.Nutrition `json:"nutrition"`
	Date        string            `json:"date"`
	IsPlanned   bool              `json:"isPlanned"`
}

// UpdateMealInput carries a partial update; nil fields are left untouched.
// Nutrition, when present, replaces the stored snapshot wholesale.
type UpdateMealInput struct {
	FoodID      *string           `json:"foodId"`
	FoodName    *string           `json:"foodName"`
	ServingSize *float64          `json:"servingSize"`
	ServingUnit *string           `json:"servingUnit"`
	Servings    *float64          `json:"servings"`
	Nutrition   *models.Nutrition `json:"nutrition"`
	Date        *string           `json:"date"`
	IsPlanned   *bool             `json:"isPlanned"`
}

// Create validates and persists a new meal. Defaults: servingUnit "g",
// servings 1, date = current local day, isPlanned false.
func (s *MealService) Create(ctx context.Context, userID string, in CreateMealInput) (*models.Meal, error) {
	if strings.TrimSpace(in.FoodName) == "" {
		return nil, apperrors.NewValidation("foodName is required")
	}
	if !in.Nutrition.HasMacro() {
		return nil, apperrors.NewValidation("nutrition must include at least one macro (calories, protein, carbs or fats)")
	}

	servings := 1.0
	if in.Servings != nil {
		if !isFinite(*in.Servings) || *in.Servings < 0 {
			return nil, apperrors.NewValidation("servings must be a non-negative number")
		}
		servings = *in.Servings
	}
	if in.ServingSize != nil && !isFinite(*in.ServingSize) {
		return nil, apperrors.NewValidation("servingSize must be a number")
	}

	unit := in.ServingUnit
	if unit == "" {
		unit = "g"
	}

	date := in.Date
	if date == "" {
		date = time.Now().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, apperrors.NewValidation("date must be formatted YYYY-MM-DD")
	}

	meal := &models.Meal{
		UserID:      userID,
		FoodID:      in.FoodID,
		FoodName:    in.FoodName,
		ServingSize: in.ServingSize,
		ServingUnit: strings.ToLower(unit),
		Servings:    servings,
		Nutrition:   in.Nutrition,
		Date:        date,
		IsPlanned:   in.IsPlanned,
	}
	if err := s.meals.Create(ctx, meal); err != nil {
		return nil, err
	}
	return meal, nil
}

// List returns the caller's meals, newest date first.
func (s *MealService) List(ctx context.Context, userID string) ([]models.Meal, error) {
	return s.meals.ListByUser(ctx, userID)
}

// Get fetches one meal with the ownership check applied.
func (s *MealService) Get(ctx context.Context, userID, mealID string) (*models.Meal, error) {
	return s.findOwned(ctx, userID, mealID)
}

// Update applies a partial update to an owned meal.
func (s *MealService) Update(ctx context.Context, userID, mealID string, in UpdateMealInput) (*models.Meal, error) {
	meal, err := s.findOwned(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}

	if in.Servings != nil && (!isFinite(*in.Servings) || *in.Servings < 0) {
		return nil, apperrors.NewValidation("servings must be a non-negative number")
	}
	if in.ServingSize != nil && !isFinite(*in.ServingSize) {
		return nil, apperrors.NewValidation("servingSize must be a number")
	}
	if in.Date != nil {
		if _, err := time.Parse(dateLayout, *in.Date); err != nil {
			return nil, apperrors.NewValidation("date must be formatted YYYY-MM-DD")
		}
	}

	if in.FoodID != nil {
		meal.FoodID = in.FoodID
	}
	if in.FoodName != nil {
		if strings.TrimSpace(*in.FoodName) == "" {
			return nil, apperrors.NewValidation("foodName must not be empty")
		}
		meal.FoodName = *in.FoodName
	}
	if in.ServingSize != nil {
		meal.ServingSize = in.ServingSize
	}
	if in.ServingUnit != nil {
		meal.ServingUnit = strings.ToLower(*in.ServingUnit)
	}
	if in.Servings != nil {
		meal.Servings = *in.Servings
	}
	if in.Nutrition != nil {
		if !in.Nutrition.HasMacro() {
			return nil, apperrors.NewValidation("nutrition must include at least one macro (calories, protein, carbs or fats)")
		}
		meal.Nutrition = in.Nutrition
	}
	if in.Date != nil {
		meal.Date = *in.Date
	}
	if in.IsPlanned != nil {
		meal.IsPlanned = *in.IsPlanned
	}

	if err := s.meals.Save(ctx, meal); err != nil {
		return nil, err
	}
	return meal, nil
}

// Delete hard-deletes an owned meal. A second delete of the same id
// reports NotFound.
func (s *MealService) Delete(ctx context.Context, userID, mealID string) error {
	meal, err := s.findOwned(ctx, userID, mealID)
	if err != nil {
		return err
	}
	return s.meals.Delete(ctx, meal)
}

func (s *MealService) findOwned(ctx context.Context, userID, mealID string) (*models.Meal, error) {
	meal, err := s.meals.FindByID(ctx, mealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMealNotFound
		}
		return nil, err
	}
	if meal.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return meal, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
