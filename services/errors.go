package services

import (
	"errors"
	"fmt"
)

var (
	ErrRestaurantRequired = errors.New("restaurant_id is required")
	ErrInvalidTableNumber = errors.New("table_number must be a positive integer")
	ErrInvalidStatus      = errors.New("status must be attended or cancelled")
	ErrInvalidTransition  = errors.New("invalid waiter call transition")
	ErrPollerStopped      = errors.New("call poller is not active")
	ErrNoAudioOutput      = errors.New("no audio output available")
)

// InvalidTransitionError dikembalikan jika call sudah attended/cancelled
type InvalidTransitionError struct {
	CallID string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("waiter call %s cannot move from %s to %s", e.CallID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
