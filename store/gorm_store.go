package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Yo-Self/menu-mestre-facil-sub001/models"
	"gorm.io/gorm"
)

// GormStore implements CallStore and MenuFlagStore on top of gorm.
type GormStore struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db, Now: time.Now}
}

func (s *GormStore) ListPendingCalls(ctx context.Context, restaurantID string) ([]models.WaiterCall, error) {
	var calls []models.WaiterCall
	err := s.DB.WithContext(ctx).
		Where("restaurant_id = ? AND status = ?", restaurantID, models.CallStatusPending).
		Order("created_at DESC").
		Order("id DESC").
		Find(&calls).Error
	if err != nil {
		return nil, wrap("list pending calls", err)
	}
	return calls, nil
}

func (s *GormStore) CreateCall(ctx context.Context, restaurantID string, tableNumber int, notes *string) (*models.WaiterCall, error) {
	call := models.WaiterCall{
		RestaurantID: restaurantID,
		TableNumber:  tableNumber,
		Status:       models.CallStatusPending,
		Notes:        notes,
		CreatedAt:    s.Now(),
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.Select("id").First(&restaurant, "id = ?", restaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("restaurant %q: %w", restaurantID, ErrNotFound)
			}
			return err
		}
		return tx.Create(&call).Error
	})
	if err != nil {
		return nil, wrap("create call", err)
	}
	return &call, nil
}

func (s *GormStore) GetCall(ctx context.Context, callID string) (*models.WaiterCall, error) {
	var call models.WaiterCall
	if err := s.DB.WithContext(ctx).First(&call, "id = ?", callID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = fmt.Errorf("waiter call %q: %w", callID, ErrNotFound)
		}
		return nil, wrap("get call", err)
	}
	return &call, nil
}

func (s *GormStore) UpdateCall(ctx context.Context, callID string, update CallUpdate) (*models.WaiterCall, error) {
	fields := map[string]interface{}{}
	if update.Status != nil {
		fields["status"] = *update.Status
	}
	if update.Notes != nil {
		fields["notes"] = *update.Notes
	}
	if update.AttendedBy != nil {
		fields["attended_by"] = *update.AttendedBy
	}
	if update.AttendedAt != nil {
		fields["attended_at"] = *update.AttendedAt
	}
	if len(fields) == 0 {
		return s.GetCall(ctx, callID)
	}

	query := s.DB.WithContext(ctx).Model(&models.WaiterCall{}).Where("id = ?", callID)
	if update.FromStatus != "" {
		query = query.Where("status = ?", update.FromStatus)
	}
	res := query.Updates(fields)
	if res.Error != nil {
		return nil, wrap("update call", res.Error)
	}

	call, err := s.GetCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 && update.FromStatus != "" && call.Status != update.FromStatus {
		return nil, wrap("update call", fmt.Errorf("waiter call %q is %s: %w", callID, call.Status, ErrStatusConflict))
	}
	return call, nil
}

// GetMenuFlag membaca waiter_call_enabled satu menu. Menu milik restoran lain
// diperlakukan sebagai tidak ditemukan.
func (s *GormStore) GetMenuFlag(ctx context.Context, restaurantID, menuID string) (bool, error) {
	query := s.DB.WithContext(ctx).Select("id", "waiter_call_enabled").Where("id = ?", menuID)
	if restaurantID != "" {
		query = query.Where("restaurant_id = ?", restaurantID)
	}

	var menu models.Menu
	if err := query.First(&menu).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = fmt.Errorf("menu %q of restaurant %q: %w", menuID, restaurantID, ErrNotFound)
		}
		return false, wrap("get menu flag", err)
	}
	return menu.WaiterCallEnabled, nil
}

// GetRestaurantMenuFlag memakai menu aktif terbaru; jika tidak ada yang aktif, menu terbaru.
func (s *GormStore) GetRestaurantMenuFlag(ctx context.Context, restaurantID string, preferActive bool) (bool, error) {
	query := s.DB.WithContext(ctx).
		Select("id", "is_active", "waiter_call_enabled", "created_at").
		Where("restaurant_id = ?", restaurantID)
	if preferActive {
		query = query.Order("is_active DESC")
	}

	var menu models.Menu
	if err := query.Order("created_at DESC").Order("id DESC").First(&menu).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = fmt.Errorf("no menu for restaurant %q: %w", restaurantID, ErrNotFound)
		}
		return false, wrap("get restaurant menu flag", err)
	}
	return menu.WaiterCallEnabled, nil
}
