package repository

import (
	"context"

	"gorm.io/gorm"

	"backend/models"
)

// MealRepository defines persistence operations for meals.
type MealRepository interface {
	Create(ctx context.Context, meal *models.Meal) error
	ListByUser(ctx context.Context, userID string) ([]models.Meal, error)
	FindByID(ctx context.Context, id string) (*models.Meal, error)
	Save(ctx context.Context, meal *models.Meal) error
	Delete(ctx context.Context, meal *models.Meal) error
}

type mealRepository struct {
	db *gorm.DB
}

// NewMealRepository builds a GORM-backed repository.
func NewMealRepository(db *gorm.DB) MealRepository {
	return &mealRepository{db: db}
}

func (r *mealRepository) Create(ctx context.Context, meal *models.Meal) error {
	return r.db.WithContext(ctx).Create(meal).Error
}

func (r *mealRepository) ListByUser(ctx context.Context, userID string) ([]models.Meal, error) {
	var meals []models.Meal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&meals).Error
	return meals, err
}

func (r *mealRepository) FindByID(ctx context.Context, id string) (*models.Meal, error) {
	var meal models.Meal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meal).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

func (r *mealRepository) Save(ctx context.Context, meal *models.Meal) error {
	return r.db.WithContext(ctx).Save(meal).Error
}

// Delete is a hard delete; there is no tombstoning.
func (r *mealRepository) Delete(ctx context.Context, meal *models.Meal) error {
	return r.db.WithContext(ctx).Delete(meal).Error
}
