package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Yo-Self/menu-mestre-facil-sub001/database"
	"github.com/Yo-Self/menu-mestre-facil-sub001/kds"
	"github.com/Yo-Self/menu-mestre-facil-sub001/models"
	"github.com/Yo-Self/menu-mestre-facil-sub001/router"
	"github.com/Yo-Self/menu-mestre-facil-sub001/services"
	"github.com/Yo-Self/menu-mestre-facil-sub001/store"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

var testSecret = []byte("test-secret")

type testApp struct {
	db      *gorm.DB
	router  *gin.Engine
	monitor *services.CallMonitor
}

// setupTestApp -> SQLite in-memory + router lengkap, satu DB per test
func setupTestApp(t *testing.T) *testApp {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	s := store.NewGormStore(db)
	monitor := services.NewCallMonitor(s, time.Hour)
	t.Cleanup(monitor.Shutdown)

	cache := store.NewMemoryGateCache(time.Minute)
	t.Cleanup(cache.Close)

	r := router.SetupRouter(router.Deps{
		DB:         db,
		JWTSecret:  testSecret,
		CORSOrigin: "*",
		Service:    services.NewWaiterCallService(s, monitor, nil),
		Gate:       services.NewWaiterCallGate(s, cache),
		Monitor:    monitor,
		Hub:        kds.NewHub(),
	})
	return &testApp{db: db, router: r, monitor: monitor}
}

// seedRestaurant membuat restoran dengan satu menu aktif
func (a *testApp) seedRestaurant(t *testing.T, id string, waiterCallEnabled bool) models.Menu {
	require.NoError(t, a.db.Create(&models.Restaurant{ID: id, Name: "Resto " + id}).Error)
	menu := models.Menu{ID: id + "-menu", RestaurantID: id, Name: "Dinner", IsActive: true, WaiterCallEnabled: waiterCallEnabled}
	require.NoError(t, a.db.Create(&menu).Error)
	return menu
}

func token(t *testing.T, staffID, role string, restaurantIDs ...string) string {
	tok, err := utils.GenerateToken(testSecret, staffID, role, restaurantIDs, time.Hour)
	require.NoError(t, err)
	return tok
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *testApp) do(t *testing.T, method, path, tok string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Code != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}
