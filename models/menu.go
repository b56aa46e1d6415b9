package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Menu struct {
	ID                string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	RestaurantID      string         `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	Restaurant        *Restaurant    `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Name              string         `gorm:"type:varchar(255);not null" json:"name"`
	IsActive          bool           `gorm:"not null;default:false" json:"is_active"`
	WaiterCallEnabled bool           `gorm:"not null;default:false" json:"waiter_call_enabled"`
	Categories        []MenuCategory `gorm:"foreignKey:MenuID" json:"categories,omitempty"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
}

func (m *Menu) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
