package kds

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

func startHubServer(t *testing.T, hub *Hub) *httptest.Server {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		restaurantID := r.URL.Query().Get("restaurant")
		hub.Register(restaurantID, conn, "staff")
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(restaurantID, conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, restaurantID string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?restaurant=" + restaurantID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, restaurantID string, n int) {
	require.Eventually(t, func() bool { return hub.ClientCount(restaurantID) == n }, time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastIsScopedToRestaurant(t *testing.T) {
	utils.InitLogger()
	hub := NewHub()
	srv := startHubServer(t, hub)

	connA := dial(t, srv, "resto-a")
	connB := dial(t, srv, "resto-b")
	waitForClients(t, hub, "resto-a", 1)
	waitForClients(t, hub, "resto-b", 1)

	delivered := hub.BroadcastNotice("resto-a", map[string]interface{}{"table_number": 7})
	assert.Equal(t, 1, delivered)

	connA.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := connA.ReadMessage()
	require.NoError(t, err)
	var msg struct {
		Event string                 `json:"event"`
		Data  map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, EventWaiterCallNotice, msg.Event)
	assert.Equal(t, float64(7), msg.Data["table_number"])

	// restoran B tidak boleh menerima apa pun
	connB.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = connB.ReadMessage()
	assert.Error(t, err)
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	utils.InitLogger()
	hub := NewHub()
	assert.Equal(t, 0, hub.BroadcastSound("nobody"))
	assert.Equal(t, 0, hub.ClientCount("nobody"))
}

func TestHub_SendToUnregisteredConn(t *testing.T) {
	utils.InitLogger()
	hub := NewHub()
	err := hub.SendTo("resto-a", nil, Message{Event: EventWaiterCallsUpdate})
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestHub_UnregisterEmptiesRoom(t *testing.T) {
	utils.InitLogger()
	hub := NewHub()
	srv := startHubServer(t, hub)

	conn := dial(t, srv, "resto-a")
	waitForClients(t, hub, "resto-a", 1)

	conn.Close()
	waitForClients(t, hub, "resto-a", 0)
	assert.Equal(t, 0, hub.BroadcastMenuUpdate("resto-a", map[string]string{"id": "m1"}))
}
