package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Yo-Self/menu-mestre-facil-sub001/kds"
	"github.com/Yo-Self/menu-mestre-facil-sub001/middlewares"
	"github.com/Yo-Self/menu-mestre-facil-sub001/services"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

// KDSController melayani websocket dashboard staff per restoran
type KDSController struct {
	Hub      *kds.Hub
	Monitor  *services.CallMonitor
	Upgrader websocket.Upgrader
}

func NewKDSController(hub *kds.Hub, monitor *services.CallMonitor, allowedOrigin string) *KDSController {
	return &KDSController{
		Hub:     hub,
		Monitor: monitor,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
	}
}

// Handler -> endpoint WebSocket. Selama koneksi terbuka restoran ini dipantau.
func (kc *KDSController) Handler(c *gin.Context) {
	restaurantID := c.Param("restaurant_id")
	claims := middlewares.ClaimsFrom(c)
	if claims == nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if !claims.CanAccessRestaurant(restaurantID) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := kc.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	kc.Hub.Register(restaurantID, ws, claims.Subject)
	poller, release := kc.Monitor.Watch(restaurantID)
	defer release()

	// snapshot awal supaya dashboard langsung terisi
	initial := kds.Message{Event: kds.EventWaiterCallsUpdate, Data: poller.Snapshot()}
	if err := kc.Hub.SendTo(restaurantID, ws, initial); err != nil {
		utils.ErrorLogger.Printf("[kds] initial snapshot for staff %s failed: %v", claims.Subject, err)
	}

	// Baca pesan sampai client disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	kc.Hub.Unregister(restaurantID, ws)
}
