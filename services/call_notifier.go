package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Yo-Self/menu-mestre-facil-sub001/kds"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

const alertTimeout = 3 * time.Second

// CallNotice is the transient message shown to staff when new calls arrive.
type CallNotice struct {
	RestaurantID string    `json:"restaurant_id"`
	CallID       string    `json:"call_id"`
	TableNumber  int       `json:"table_number"`
	PendingCount int       `json:"pending_count"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

type NoticePublisher interface {
	PublishNotice(ctx context.Context, notice CallNotice)
}

// HubNoticePublisher -> kirim toast ke dashboard restoran lewat websocket
type HubNoticePublisher struct {
	Hub *kds.Hub
}

func (h *HubNoticePublisher) PublishNotice(_ context.Context, notice CallNotice) {
	h.Hub.BroadcastNotice(notice.RestaurantID, notice)
}

// CallNotifier fires once per net increase of the pending count.
type CallNotifier struct {
	player  AlertPlayer
	notices NoticePublisher

	mu            sync.Mutex
	previousCount int
}

func NewCallNotifier(player AlertPlayer, notices NoticePublisher) *CallNotifier {
	if player == nil {
		player = NoopAlertPlayer{}
	}
	return &CallNotifier{player: player, notices: notices}
}

// Observe dipanggil untuk setiap snapshot baru. Returns true when the alert fired.
func (n *CallNotifier) Observe(snap CallSnapshot) bool {
	n.mu.Lock()
	fire := snap.PendingCount > n.previousCount
	n.previousCount = snap.PendingCount
	n.mu.Unlock()

	if !fire || len(snap.Calls) == 0 {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
	defer cancel()

	if err := safePlay(ctx, n.player); err != nil {
		utils.InfoLogger.Printf("[notifier] alert sound unavailable for restaurant %s: %v", snap.RestaurantID, err)
	}

	newest := snap.Calls[0]
	notice := CallNotice{
		RestaurantID: snap.RestaurantID,
		CallID:       newest.ID,
		TableNumber:  newest.TableNumber,
		PendingCount: snap.PendingCount,
		Message:      fmt.Sprintf("Table %d is calling a waiter", newest.TableNumber),
		CreatedAt:    time.Now(),
	}
	if n.notices != nil {
		n.notices.PublishNotice(ctx, notice)
	}
	utils.InfoLogger.Printf("[notifier] %s (restaurant %s, %d pending)", notice.Message, snap.RestaurantID, snap.PendingCount)
	return true
}

func (n *CallNotifier) PreviousCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.previousCount
}
