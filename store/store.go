package store

import (
	"context"
	"time"

	"github.com/Yo-Self/menu-mestre-facil-sub001/models"
)

// CallStore is the request/response boundary to the waiter_calls table.
type CallStore interface {
	// ListPendingCalls returns pending calls of one restaurant, newest first.
	ListPendingCalls(ctx context.Context, restaurantID string) ([]models.WaiterCall, error)
	CreateCall(ctx context.Context, restaurantID string, tableNumber int, notes *string) (*models.WaiterCall, error)
	GetCall(ctx context.Context, callID string) (*models.WaiterCall, error)
	UpdateCall(ctx context.Context, callID string, update CallUpdate) (*models.WaiterCall, error)
}

// MenuFlagStore answers waiter_call_enabled lookups for menus.
type MenuFlagStore interface {
	// GetMenuFlag: restaurantID kosong berarti menu tidak dibatasi ke satu restoran
	GetMenuFlag(ctx context.Context, restaurantID, menuID string) (bool, error)
	GetRestaurantMenuFlag(ctx context.Context, restaurantID string, preferActive bool) (bool, error)
}

// CallUpdate berisi field yang akan diubah. Field nil tidak disentuh.
// FromStatus, jika diisi, membuat update hanya berlaku bila status saat ini sama.
type CallUpdate struct {
	Status     *string
	Notes      *string
	AttendedBy *string
	AttendedAt *time.Time
	FromStatus string
}
