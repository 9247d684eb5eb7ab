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
	"github.com/joho/godotenv"
	"github.com/yeremiapane/restaurant-orders/cache"
	"github.com/yeremiapane/restaurant-orders/config"
	"github.com/yeremiapane/restaurant-orders/database"
	"github.com/yeremiapane/restaurant-orders/events"
	"github.com/yeremiapane/restaurant-orders/kds"
	"github.com/yeremiapane/restaurant-orders/messaging"
	"github.com/yeremiapane/restaurant-orders/middlewares"
	"github.com/yeremiapane/restaurant-orders/router"
	"github.com/yeremiapane/restaurant-orders/services"
	"github.com/yeremiapane/restaurant-orders/utils"
)

func main() {
	utils.InitLogger()

	// Load .env di awal sebelum apapun
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	if err := utils.SetLogLevel(cfg.Log.Level); err != nil {
		utils.ErrorLogger.Printf("Unknown log level %q, keeping info", cfg.Log.Level)
	}
	if cfg.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	// Cache tagihan (opsional)
	var billCache cache.Cache
	if cfg.Redis.Addr != "" {
		billCache = cache.NewRedisCache(cfg.Redis.Addr, "restaurant-orders")
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(ctx, billCache); err != nil {
			utils.ErrorLogger.Printf("Redis unavailable at %s, bill cache disabled: %v", cfg.Redis.Addr, err)
			billCache = nil
		}
		cancel()
	}
	bills := services.NewBillService(db, billCache, cfg.Redis.BillTTL)

	hub := kds.NewHub()
	notifiers := events.Multi{hub, bills}

	// Event ke RabbitMQ (opsional)
	if cfg.RabbitMQ.URL != "" {
		publisher, err := messaging.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			utils.ErrorLogger.Printf("RabbitMQ unavailable, events stay local: %v", err)
		} else {
			defer publisher.Close()
			notifiers = append(notifiers, publisher)
			utils.InfoLogger.Printf("Publishing events to exchange %s", cfg.RabbitMQ.Exchange)
		}
	}

	ledger := services.NewInventoryLedger(db)
	r := router.SetupRouter(router.Deps{
		DB:          db,
		Ledger:      ledger,
		Orders:      services.NewOrderService(db, notifiers),
		Details:     services.NewOrderDetailService(db, ledger, notifiers),
		Bills:       bills,
		Hub:         hub,
		Notifier:    notifiers,
		CORSOrigin:  cfg.Server.CORSOrigin,
		RateLimiter: middlewares.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Server.Port)
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
