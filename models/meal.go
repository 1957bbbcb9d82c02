package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Nutrition is the macro snapshot captured when a meal is logged. Values
// are per one serving; a nil field means the source record did not report
// that macro, which is distinct from zero. The snapshot is never refreshed
// from the provider after creation, so historical logs stay stable even if
// the source food record changes.
type Nutrition struct {
	Calories *float64 `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fats     *float64 `json:"fats,omitempty"`
}

// HasMacro reports whether at least one macro field is present.
func (n *Nutrition) HasMacro() bool {
	if n == nil {
		return false
	}
	return n.Calories != nil || n.Protein != nil || n.Carbs != nil || n.Fats != nil
}

// Meal is a logged or planned food entry owned by a single user.
// Ownership is permanent.
type Meal struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string     `gorm:"type:uuid;index;not null" json:"userId"`
	FoodID      *string    `json:"foodId"`
	FoodName    string     `gorm:"not null" json:"foodName"`
	ServingSize *float64   `json:"servingSize"`
	ServingUnit string     `gorm:"not null;default:g" json:"servingUnit"`
	Servings    float64    `gorm:"not null;default:1" json:"servings"`
	Nutrition   *Nutrition `gorm:"serializer:json" json:"nutrition"`
	Date        string     `gorm:"size:10;not null;index" json:"date"` // calendar day, YYYY-MM-DD
	IsPlanned   bool       `gorm:"not null;default:false" json:"isPlanned"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Totals returns the displayed macro totals, nutrition × servings.
// Missing macros stay nil.
func (m *Meal) Totals() Nutrition {
	scale := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		total := *v * m.Servings
		return &total
	}
	if m.Nutrition == nil {
		return Nutrition{}
	}
	return Nutrition{
		Calories: scale(m.Nutrition.Calories),
		Protein:  scale(m.Nutrition.Protein),
		Carbs:    scale(m.Nutrition.Carbs),
		Fats:     scale(m.Nutrition.Fats),
	}
}
