package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyGoals holds a user's daily macro targets.
type DailyGoals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// DefaultDailyGoals are assigned at registration.
func DefaultDailyGoals() DailyGoals {
	return DailyGoals{Calories: 2000, Protein: 150, Carbs: 200, Fats: 65}
}

type User struct {
	ID           string      `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string      `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string      `gorm:"not null" json:"-"`
	DailyGoals   *DailyGoals `gorm:"serializer:json" json:"dailyGoals"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
