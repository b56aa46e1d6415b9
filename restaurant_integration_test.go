package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Yo-Self/menu-mestre-facil-sub001/database"
	"github.com/Yo-Self/menu-mestre-facil-sub001/kds"
	"github.com/Yo-Self/menu-mestre-facil-sub001/middlewares"
	"github.com/Yo-Self/menu-mestre-facil-sub001/models"
	"github.com/Yo-Self/menu-mestre-facil-sub001/queue"
	"github.com/Yo-Self/menu-mestre-facil-sub001/router"
	"github.com/Yo-Self/menu-mestre-facil-sub001/services"
	"github.com/Yo-Self/menu-mestre-facil-sub001/store"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var secret = []byte("integration-secret")

// TestEndToEndIntegration menguji flow utama:
// 1. Dashboard staff membuka websocket -> restoran dipantau
// 2. Pelanggan memanggil pelayan dari meja 7
// 3. Dashboard menerima snapshot, toast dan perintah suara
// 4. Staff menandai attended -> snapshot kosong lagi
func TestEndToEndIntegration(t *testing.T) {
	db := setupTestDB(t)
	hub := kds.NewHub()
	srv := httptest.NewServer(setupApp(db, hub))
	defer srv.Close()

	staffToken, err := utils.GenerateToken(secret, "staff-42", "staff", []string{"R"}, time.Hour)
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/restaurants/R?token=" + url.QueryEscape(staffToken)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// snapshot awal: belum ada panggilan
	first := readEvent(t, conn, kds.EventWaiterCallsUpdate)
	assert.Equal(t, float64(0), first["pending_count"])

	// pelanggan memanggil pelayan
	resp := postJSON(t, srv.URL+"/restaurants/R/waiter-calls", "", map[string]interface{}{
		"table_number": 7,
		"notes":        "extra napkins",
		"menu_id":      "R-menu",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Data models.WaiterCall `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	// snapshot lama (pending 0) boleh masih ada di buffer, lewati
	seen := map[string]map[string]interface{}{}
	for len(seen) < 3 {
		var msg kds.Message
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		require.NoError(t, conn.ReadJSON(&msg))
		data, _ := msg.Data.(map[string]interface{})
		if msg.Event == kds.EventWaiterCallsUpdate && data["pending_count"] == float64(0) {
			continue
		}
		seen[msg.Event] = data
	}
	assert.Equal(t, float64(1), seen[kds.EventWaiterCallsUpdate]["pending_count"])
	assert.Equal(t, float64(7), seen[kds.EventWaiterCallNotice]["table_number"])
	assert.Equal(t, "R", seen[kds.EventWaiterCallSound]["restaurant_id"])

	// staff menandai attended
	req, _ := http.NewRequest(http.MethodPatch, srv.URL+"/admin/waiter-calls/"+created.Data.ID, bytes.NewBufferString(`{"status":"attended"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+staffToken)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	last := readEvent(t, conn, kds.EventWaiterCallsUpdate)
	assert.Equal(t, float64(0), last["pending_count"])

	var stored models.WaiterCall
	require.NoError(t, db.First(&stored, "id = ?", created.Data.ID).Error)
	assert.Equal(t, models.CallStatusAttended, stored.Status)
	assert.Equal(t, "staff-42", *stored.AttendedBy)
}

func TestCallCreationIsRateLimited(t *testing.T) {
	db := setupTestDB(t)
	srv := httptest.NewServer(setupApp(db, kds.NewHub()))
	defer srv.Close()

	body := map[string]interface{}{"table_number": 3, "menu_id": "R-menu"}
	codes := []int{}
	for i := 0; i < 3; i++ {
		resp := postJSON(t, srv.URL+"/restaurants/R/waiter-calls", "", body)
		codes = append(codes, resp.StatusCode)
		resp.Body.Close()
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	// kuota per IP + restoran, nomor meja lain tetap kena limit
	resp := postJSON(t, srv.URL+"/restaurants/R/waiter-calls", "", map[string]interface{}{"table_number": 4, "menu_id": "R-menu"})
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	var count int64
	db.Model(&models.WaiterCall{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	require.NoError(t, db.Create(&models.Restaurant{ID: "R", Name: "Warung"}).Error)
	require.NoError(t, db.Create(&models.Menu{ID: "R-menu", RestaurantID: "R", Name: "Dinner", IsActive: true, WaiterCallEnabled: true}).Error)
	return db
}

func setupApp(db *gorm.DB, hub *kds.Hub) *gin.Engine {
	s := store.NewGormStore(db)
	monitor := services.NewCallMonitor(s, time.Hour)
	monitor.NewAlertPlayer = func(restaurantID string) services.AlertPlayer {
		return &services.HubAlertPlayer{Hub: hub, RestaurantID: restaurantID}
	}
	monitor.Notices = &services.HubNoticePublisher{Hub: hub}
	monitor.OnSnapshot = func(snap services.CallSnapshot) {
		hub.BroadcastWaiterCalls(snap.RestaurantID, snap)
	}

	return router.SetupRouter(router.Deps{
		DB:          db,
		JWTSecret:   secret,
		CORSOrigin:  "*",
		Service:     services.NewWaiterCallService(s, monitor, queue.NoopPublisher{}),
		Gate:        services.NewWaiterCallGate(s, store.NewMemoryGateCache(time.Minute)),
		Monitor:     monitor,
		Hub:         hub,
		CallLimiter: middlewares.NewCallRateLimiter(0.001, 2),
	})
}

func postJSON(t *testing.T, u, tok string, body interface{}) *http.Response {
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, u, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// readEvent membaca pesan sampai event yang diminta muncul
func readEvent(t *testing.T, conn *websocket.Conn, event string) map[string]interface{} {
	for {
		var msg kds.Message
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Event == event {
			data, _ := msg.Data.(map[string]interface{})
			return data
		}
	}
}
