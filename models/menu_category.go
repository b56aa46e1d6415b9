package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MenuCategory struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	MenuID    string    `gorm:"type:varchar(36);not null;index" json:"menu_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	Dishes    []Dish    `gorm:"foreignKey:CategoryID" json:"dishes,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (mc *MenuCategory) BeforeCreate(tx *gorm.DB) error {
	if mc.ID == "" {
		mc.ID = uuid.NewString()
	}
	return nil
}
