package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Yo-Self/menu-mestre-facil-sub001/middlewares"
	"github.com/Yo-Self/menu-mestre-facil-sub001/models"
	"github.com/Yo-Self/menu-mestre-facil-sub001/services"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

type WaiterCallController struct {
	Service *services.WaiterCallService
	Gate    *services.WaiterCallGate
	Monitor *services.CallMonitor
}

func NewWaiterCallController(svc *services.WaiterCallService, gate *services.WaiterCallGate, monitor *services.CallMonitor) *WaiterCallController {
	return &WaiterCallController{Service: svc, Gate: gate, Monitor: monitor}
}

// CreateWaiterCall -> dipanggil dari menu digital (tanpa login)
func (wc *WaiterCallController) CreateWaiterCall(c *gin.Context) {
	restaurantID := c.Param("restaurant_id")

	var body struct {
		TableNumber int     `json:"table_number" binding:"required"`
		Notes       *string `json:"notes"`
		MenuID      string  `json:"menu_id"`
	}
	// body sudah dibaca oleh rate limiter
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	gate := wc.Gate.Check(c.Request.Context(), services.GateQuery{MenuID: body.MenuID, RestaurantID: restaurantID})
	if !gate.Open() {
		utils.InfoLogger.Printf("Waiter call rejected for restaurant %s table %d: gate closed", restaurantID, body.TableNumber)
		utils.RespondError(c, http.StatusForbidden, errGateClosed)
		return
	}

	call, err := wc.Service.Create(c.Request.Context(), restaurantID, body.TableNumber, body.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Waiter call created", call)
}

// GetWaiterCallGate -> apakah tombol "panggil pelayan" ditampilkan
func (wc *WaiterCallController) GetWaiterCallGate(c *gin.Context) {
	q := services.GateQuery{MenuID: c.Query("menu_id"), RestaurantID: c.Param("restaurant_id")}

	var res services.GateResult
	if c.Query("refresh") == "true" {
		res = wc.Gate.Refetch(c.Request.Context(), q)
	} else {
		res = wc.Gate.Check(c.Request.Context(), q)
	}
	utils.RespondJSON(c, http.StatusOK, "Waiter call setting", res)
}

// GetPendingCalls
func (wc *WaiterCallController) GetPendingCalls(c *gin.Context) {
	snap, err := wc.Monitor.Pending(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		utils.ErrorLogger.Printf("List pending calls for restaurant %s failed: %v", c.Param("restaurant_id"), err)
		utils.RespondJSON(c, http.StatusServiceUnavailable, "Pending calls unavailable", snap)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending waiter calls", snap)
}

// RefreshCalls memaksa poller membaca ulang, lalu mengembalikan snapshot terbaru
func (wc *WaiterCallController) RefreshCalls(c *gin.Context) {
	restaurantID := c.Param("restaurant_id")
	if err := wc.Monitor.Refresh(c.Request.Context(), restaurantID); err != nil {
		utils.ErrorLogger.Printf("Refresh pending calls for restaurant %s failed: %v", restaurantID, err)
	}
	wc.GetPendingCalls(c)
}

// UpdateCallStatus -> attended / cancelled
func (wc *WaiterCallController) UpdateCallStatus(c *gin.Context) {
	callID := c.Param("call_id")

	var body struct {
		Status string  `json:"status" binding:"required"`
		Notes  *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	call, err := wc.Service.Store.GetCall(c.Request.Context(), callID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !authorizeRestaurant(c, call.RestaurantID) {
		return
	}

	var attendedBy *string
	if body.Status == models.CallStatusAttended {
		if staffID := c.GetString(middlewares.CtxStaffID); staffID != "" {
			attendedBy = &staffID
		}
	}

	updated, err := wc.Service.UpdateStatus(c.Request.Context(), callID, body.Status, attendedBy, body.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waiter call updated", updated)
}
