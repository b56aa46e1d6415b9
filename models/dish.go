package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Dish struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CategoryID  string    `gorm:"type:varchar(36);not null;index" json:"category_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    *string   `gorm:"type:varchar(512)" json:"image_url,omitempty"`
	IsAvailable bool      `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (d *Dish) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
