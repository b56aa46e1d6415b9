package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Yo-Self/menu-mestre-facil-sub001/controllers"
	"github.com/Yo-Self/menu-mestre-facil-sub001/kds"
	"github.com/Yo-Self/menu-mestre-facil-sub001/middlewares"
	"github.com/Yo-Self/menu-mestre-facil-sub001/services"
)

// Deps berisi semua komponen yang dibutuhkan router
type Deps struct {
	DB          *gorm.DB
	JWTSecret   []byte
	CORSOrigin  string
	Service     *services.WaiterCallService
	Gate        *services.WaiterCallGate
	Monitor     *services.CallMonitor
	Hub         *kds.Hub
	CallLimiter *middlewares.CallRateLimiter
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	callCtrl := controllers.NewWaiterCallController(d.Service, d.Gate, d.Monitor)
	restaurantCtrl := controllers.NewRestaurantController(d.DB, d.Gate)
	menuCtrl := controllers.NewMenuController(d.DB, d.Gate, d.Hub)
	categoryCtrl := controllers.NewMenuCategoryController(d.DB)
	kdsCtrl := controllers.NewKDSController(d.Hub, d.Monitor, d.CORSOrigin)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// -- CUSTOMER (Tanpa Auth) --
	public := r.Group("/restaurants/:restaurant_id")
	{
		public.GET("/menu", restaurantCtrl.GetPublicMenu)
		public.GET("/waiter-call/enabled", callCtrl.GetWaiterCallGate)

		createCall := []gin.HandlerFunc{callCtrl.CreateWaiterCall}
		if d.CallLimiter != nil {
			createCall = append([]gin.HandlerFunc{d.CallLimiter.RateLimit()}, createCall...)
		}
		public.POST("/waiter-calls", createCall...)
	}

	// Endpoint WebSocket dashboard staff
	r.GET("/ws/restaurants/:restaurant_id", middlewares.WebSocketAuthMiddleware(d.JWTSecret), kdsCtrl.Handler)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware(d.JWTSecret))

	auth.POST("/restaurants", middlewares.RoleCheck("admin"), restaurantCtrl.CreateRestaurant)

	restaurant := auth.Group("/restaurants/:restaurant_id")
	restaurant.Use(middlewares.RestaurantAccess("restaurant_id"))
	{
		restaurant.GET("", restaurantCtrl.GetRestaurantByID)

		// WAITER CALLS
		restaurant.GET("/waiter-calls", callCtrl.GetPendingCalls)
		restaurant.POST("/waiter-calls/refresh", callCtrl.RefreshCalls)

		// MENU (manager)
		restaurant.GET("/menus", menuCtrl.GetMenus)
		restaurant.POST("/menus", middlewares.RoleCheck("manager"), menuCtrl.CreateMenu)
	}

	// akses restoran dicek di controller setelah lookup
	auth.PATCH("/waiter-calls/:call_id", callCtrl.UpdateCallStatus)
	auth.PATCH("/menus/:menu_id/waiter-call", middlewares.RoleCheck("manager"), menuCtrl.ToggleWaiterCall)
	auth.POST("/menus/:menu_id/categories", middlewares.RoleCheck("manager"), categoryCtrl.CreateCategory)
	auth.POST("/categories/:category_id/dishes", middlewares.RoleCheck("manager"), categoryCtrl.CreateDish)

	return r
}
