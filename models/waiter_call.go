package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status waiter call
const (
	CallStatusPending   = "pending"
	CallStatusAttended  = "attended"
	CallStatusCancelled = "cancelled"
)

// WaiterCall represents one "call waiter" request from a table
type WaiterCall struct {
	ID           string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	RestaurantID string     `gorm:"type:varchar(36);not null;index:idx_waiter_calls_pending,priority:1" json:"restaurant_id"`
	TableNumber  int        `gorm:"not null" json:"table_number"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_waiter_calls_pending,priority:2" json:"status"`
	Notes        *string    `gorm:"type:text" json:"notes"`
	AttendedBy   *string    `gorm:"type:varchar(255)" json:"attended_by"`
	AttendedAt   *time.Time `json:"attended_at"`
	CreatedAt    time.Time  `gorm:"not null;index:idx_waiter_calls_pending,priority:3" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (w *WaiterCall) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// IsTerminal -> attended dan cancelled tidak bisa berubah lagi
func (w *WaiterCall) IsTerminal() bool {
	return w.Status == CallStatusAttended || w.Status == CallStatusCancelled
}
