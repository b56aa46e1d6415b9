package kds

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

// Event types
const (
	EventWaiterCallsUpdate = "waiter_calls_update"
	EventWaiterCallNotice  = "waiter_call_notice"
	EventWaiterCallSound   = "waiter_call_sound"
	EventMenuUpdate        = "menu_update"
)

const writeWait = 5 * time.Second

var ErrNotRegistered = errors.New("connection is not registered to this restaurant")

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung koneksi dashboard staff, dikelompokkan per restoran.
// Pesan untuk restoran A tidak pernah dikirim ke koneksi restoran B.
type Hub struct {
	rooms map[string]map[*websocket.Conn]string // restaurantID -> conn -> staffID
	mutex sync.Mutex
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*websocket.Conn]string)}
}

// Register -> menambahkan connection ke room restoran
func (h *Hub) Register(restaurantID string, conn *websocket.Conn, staffID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, ok := h.rooms[restaurantID]
	if !ok {
		room = make(map[*websocket.Conn]string)
		h.rooms[restaurantID] = room
	}
	room[conn] = staffID
	utils.InfoLogger.Printf("[kds] staff %s joined restaurant %s (%d connections)", staffID, restaurantID, len(room))
}

// Unregister -> melepaskan connection dan menutupnya
func (h *Hub) Unregister(restaurantID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(restaurantID, conn)
}

func (h *Hub) removeLocked(restaurantID string, conn *websocket.Conn) {
	room, ok := h.rooms[restaurantID]
	if !ok {
		return
	}
	if _, exists := room[conn]; !exists {
		return
	}
	delete(room, conn)
	conn.Close()
	if len(room) == 0 {
		delete(h.rooms, restaurantID)
	}
}

func (h *Hub) ClientCount(restaurantID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.rooms[restaurantID])
}

// BroadcastToRestaurant mengirim pesan ke semua dashboard satu restoran.
// Returns the number of connections that received it.
func (h *Hub) BroadcastToRestaurant(restaurantID string, msg Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("[kds] error marshaling %s: %v", msg.Event, err)
		return 0
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	delivered := 0
	for conn, staffID := range h.rooms[restaurantID] {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("[kds] send %s to staff %s failed: %v", msg.Event, staffID, err)
			h.removeLocked(restaurantID, conn)
			continue
		}
		delivered++
	}
	return delivered
}

// SendTo mengirim pesan ke satu koneksi saja, mis. snapshot awal untuk dashboard yang baru join
func (h *Hub) SendTo(restaurantID string, conn *websocket.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.rooms[restaurantID][conn]; !ok {
		return ErrNotRegistered
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.removeLocked(restaurantID, conn)
		return err
	}
	return nil
}

// BroadcastWaiterCalls -> snapshot terbaru daftar panggilan pending
func (h *Hub) BroadcastWaiterCalls(restaurantID string, snapshot interface{}) int {
	return h.BroadcastToRestaurant(restaurantID, Message{Event: EventWaiterCallsUpdate, Data: snapshot})
}

// BroadcastNotice -> toast "meja X memanggil pelayan"
func (h *Hub) BroadcastNotice(restaurantID string, notice interface{}) int {
	return h.BroadcastToRestaurant(restaurantID, Message{Event: EventWaiterCallNotice, Data: notice})
}

// BroadcastSound -> minta dashboard memutar suara notifikasi
func (h *Hub) BroadcastSound(restaurantID string) int {
	return h.BroadcastToRestaurant(restaurantID, Message{
		Event: EventWaiterCallSound,
		Data:  map[string]string{"restaurant_id": restaurantID},
	})
}

// BroadcastMenuUpdate -> setting menu berubah (mis. waiter call dimatikan)
func (h *Hub) BroadcastMenuUpdate(restaurantID string, menu interface{}) int {
	return h.BroadcastToRestaurant(restaurantID, Message{Event: EventMenuUpdate, Data: menu})
}
