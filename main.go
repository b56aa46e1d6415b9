package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Yo-Self/menu-mestre-facil-sub001/config"
	"github.com/Yo-Self/menu-mestre-facil-sub001/database"
	"github.com/Yo-Self/menu-mestre-facil-sub001/kds"
	"github.com/Yo-Self/menu-mestre-facil-sub001/middlewares"
	"github.com/Yo-Self/menu-mestre-facil-sub001/queue"
	"github.com/Yo-Self/menu-mestre-facil-sub001/router"
	"github.com/Yo-Self/menu-mestre-facil-sub001/services"
	"github.com/Yo-Self/menu-mestre-facil-sub001/store"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLoggerWithLevel(cfg.LogLevel)

	// Set gin mode
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	gormStore := store.NewGormStore(db)

	// Gate cache: Redis jika tersedia, selain itu in-memory
	var gateCache store.GateCache
	if rdb := config.NewRedisClient(cfg); rdb != nil {
		defer rdb.Close()
		gateCache = store.NewRedisGateCache(rdb, cfg.GateCacheTTL)
		utils.InfoLogger.Printf("Gate cache: redis %s", cfg.RedisAddr)
	} else {
		memCache := store.NewMemoryGateCache(cfg.GateCacheTTL)
		defer memCache.Close()
		gateCache = memCache
		utils.InfoLogger.Println("Gate cache: in-memory")
	}

	var events queue.Publisher = queue.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		amqpPublisher := queue.NewAMQPPublisher(cfg.RabbitMQURL)
		defer amqpPublisher.Close()
		events = amqpPublisher
	}

	hub := kds.NewHub()

	// satu poller per restoran yang sedang dibuka dashboard-nya
	monitor := services.NewCallMonitor(gormStore, cfg.PollInterval)
	monitor.NewAlertPlayer = func(restaurantID string) services.AlertPlayer {
		return &services.FallbackAlertPlayer{
			Primary:  &services.HubAlertPlayer{Hub: hub, RestaurantID: restaurantID},
			Fallback: services.NewDeviceTonePlayer(cfg.AlertAudioDevice),
		}
	}
	monitor.Notices = &services.HubNoticePublisher{Hub: hub}
	monitor.OnSnapshot = func(snap services.CallSnapshot) {
		hub.BroadcastWaiterCalls(snap.RestaurantID, snap)
	}
	defer monitor.Shutdown()

	callLimiter := middlewares.NewCallRateLimiter(cfg.CallRateLimit, cfg.CallRateBurst)
	defer callLimiter.Close()

	r := router.SetupRouter(router.Deps{
		DB:          db,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigin:  cfg.CORSOrigin,
		Service:     services.NewWaiterCallService(gormStore, monitor, events),
		Gate:        services.NewWaiterCallGate(gormStore, gateCache),
		Monitor:     monitor,
		Hub:         hub,
		CallLimiter: callLimiter,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Printf("Server forced to shutdown: %v", err)
	}
}
