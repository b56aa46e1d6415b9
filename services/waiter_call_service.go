package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Yo-Self/menu-mestre-facil-sub001/models"
	"github.com/Yo-Self/menu-mestre-facil-sub001/queue"
	"github.com/Yo-Self/menu-mestre-facil-sub001/store"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

// Refresher memaksa polling engine membaca ulang daftar pending
type Refresher interface {
	Refresh(ctx context.Context, restaurantID string) error
}

// WaiterCallService handles create/attend/cancel. Every successful mutation is
// followed by a full refresh of the restaurant's pending list.
type WaiterCallService struct {
	Store     store.CallStore
	Refresher Refresher
	Events    queue.Publisher
	Now       func() time.Time
}

func NewWaiterCallService(s store.CallStore, refresher Refresher, events queue.Publisher) *WaiterCallService {
	if events == nil {
		events = queue.NoopPublisher{}
	}
	return &WaiterCallService{Store: s, Refresher: refresher, Events: events, Now: time.Now}
}

// Create does not consult the gate; callers check WaiterCallGate first.
func (s *WaiterCallService) Create(ctx context.Context, restaurantID string, tableNumber int, notes *string) (*models.WaiterCall, error) {
	if strings.TrimSpace(restaurantID) == "" {
		return nil, ErrRestaurantRequired
	}
	if tableNumber <= 0 {
		return nil, ErrInvalidTableNumber
	}

	call, err := s.Store.CreateCall(ctx, restaurantID, tableNumber, normalizeNotes(notes))
	if err != nil {
		return nil, fmt.Errorf("create waiter call: %w", err)
	}
	utils.InfoLogger.Printf("Waiter call %s created: restaurant=%s table=%d", call.ID, restaurantID, tableNumber)

	s.refresh(ctx, restaurantID)
	s.publish(ctx, queue.EventWaiterCallCreated, *call)
	return call, nil
}

// UpdateStatus moves a pending call to attended or cancelled.
// notes, jika diisi, menimpa notes lama.
func (s *WaiterCallService) UpdateStatus(ctx context.Context, callID, newStatus string, attendedBy, notes *string) (*models.WaiterCall, error) {
	if newStatus != models.CallStatusAttended && newStatus != models.CallStatusCancelled {
		return nil, ErrInvalidStatus
	}

	current, err := s.Store.GetCall(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("update waiter call: %w", err)
	}
	if current.IsTerminal() {
		return nil, &InvalidTransitionError{CallID: callID, From: current.Status, To: newStatus}
	}

	update := store.CallUpdate{
		Status:     &newStatus,
		Notes:      normalizeNotes(notes),
		FromStatus: models.CallStatusPending,
	}
	if newStatus == models.CallStatusAttended {
		at := s.now()
		if at.Before(current.CreatedAt) {
			at = current.CreatedAt
		}
		update.AttendedAt = &at
		if attendedBy != nil && *attendedBy != "" {
			update.AttendedBy = attendedBy
		}
	}

	updated, err := s.Store.UpdateCall(ctx, callID, update)
	if err != nil {
		if errors.Is(err, store.ErrStatusConflict) {
			// staff lain sudah lebih dulu memproses call ini
			from := "unknown"
			if latest, gerr := s.Store.GetCall(ctx, callID); gerr == nil {
				from = latest.Status
			}
			return nil, &InvalidTransitionError{CallID: callID, From: from, To: newStatus}
		}
		return nil, fmt.Errorf("update waiter call: %w", err)
	}
	utils.InfoLogger.Printf("Waiter call %s is now %s", callID, newStatus)

	s.refresh(ctx, updated.RestaurantID)
	eventType := queue.EventWaiterCallCancelled
	if newStatus == models.CallStatusAttended {
		eventType = queue.EventWaiterCallAttended
	}
	s.publish(ctx, eventType, *updated)
	return updated, nil
}

func (s *WaiterCallService) Attend(ctx context.Context, callID string, attendedBy *string) (*models.WaiterCall, error) {
	return s.UpdateStatus(ctx, callID, models.CallStatusAttended, attendedBy, nil)
}

func (s *WaiterCallService) Cancel(ctx context.Context, callID string) (*models.WaiterCall, error) {
	return s.UpdateStatus(ctx, callID, models.CallStatusCancelled, nil, nil)
}

func (s *WaiterCallService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// refresh failure is already recorded on the poller snapshot; the mutation itself succeeded.
func (s *WaiterCallService) refresh(ctx context.Context, restaurantID string) {
	if s.Refresher == nil {
		return
	}
	if err := s.Refresher.Refresh(ctx, restaurantID); err != nil {
		utils.ErrorLogger.Printf("Refresh pending calls for restaurant %s failed: %v", restaurantID, err)
	}
}

func (s *WaiterCallService) publish(ctx context.Context, eventType string, call models.WaiterCall) {
	if err := s.Events.PublishWaiterCallEvent(ctx, queue.NewWaiterCallEvent(eventType, call, s.now())); err != nil {
		utils.ErrorLogger.Printf("Publish %s for call %s failed: %v", eventType, call.ID, err)
	}
}

func normalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
