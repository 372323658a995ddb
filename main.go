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

	"github.com/yeremiapane/billiard-pos/config"
	"github.com/yeremiapane/billiard-pos/database"
	"github.com/yeremiapane/billiard-pos/hub"
	"github.com/yeremiapane/billiard-pos/router"
	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

func main() {
	// Load .env + environment
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLogger(cfg.LogLevel)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	utils.InitDB(db)

	if err := database.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatal(err)
	}

	// Hub websocket untuk dashboard
	h := hub.New()
	go h.Run()
	defer h.Stop()

	svc := services.NewServices(db, h)

	// Pantau sesi yang waktunya habis (hanya notifikasi)
	monitor := svc.NewSessionMonitor(cfg.MonitorInterval)
	monitor.Start()
	defer monitor.Stop()
	if cfg.SeedData {
		if err := database.Seed(context.Background(), db, svc); err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed default data: %v", err)
		}
	}

	r := router.SetupRouter(svc, h, router.Options{
		CORSOrigin: cfg.CORSOrigin,
		RateLimit:  cfg.RateLimit,
		RateBurst:  cfg.RateBurst,
		VenueName:  cfg.VenueName,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s (%s)", cfg.Port, cfg.DBDriver)
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
