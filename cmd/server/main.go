package main

import (
	"context"
	"errors"
	"go-ticket-reservation/config"
	"go-ticket-reservation/internal/cache"
	"go-ticket-reservation/internal/database"
	"go-ticket-reservation/internal/handler"
	"go-ticket-reservation/internal/payment"
	"go-ticket-reservation/internal/repository"
	"go-ticket-reservation/internal/service"
	"go-ticket-reservation/internal/worker"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Local development convenience; in deployment the environment is real.
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inventoryRepo := repository.NewInventoryRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	webhookRepo := repository.NewWebhookRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	availabilityCache := cache.NewAvailabilityCache(rdb)
	provider := payment.NewHTTPProvider(&cfg.Payment)

	reservationService := service.NewReservationService(
		pool, inventoryRepo, reservationRepo, ticketRepo,
		availabilityCache, cfg.Sweeper.BatchSize)
	inventoryService := service.NewInventoryService(inventoryRepo, availabilityCache)
	checkoutService := service.NewCheckoutService(reservationRepo, provider)
	settlementService := service.NewSettlementService(
		pool, webhookRepo, paymentRepo, reservationRepo, reservationService)
	reconciliationService := service.NewReconciliationService(
		inventoryRepo, reservationRepo, ticketRepo, paymentRepo)

	sweeper := worker.NewExpirationSweeper(
		reservationService, cfg.Sweeper.Interval, cfg.Sweeper.BatchSize)
	sweeper.Start(ctx)

	reconciler := worker.NewReconciliationWorker(
		reconciliationService, cfg.Reconciler.Interval, cfg.Reconciler.Lookback)
	reconciler.Start(ctx)

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	handler.NewReservationHandler(reservationService, checkoutService).RegisterRoutes(router)
	handler.NewInventoryHandler(inventoryService).RegisterRoutes(router)
	handler.NewWebhookHandler(settlementService, cfg.Payment.WebhookSecret).RegisterRoutes(router)
	handler.NewAdminHandler(reconciliationService, reservationService).RegisterRoutes(router)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()

	// Let in-flight checkout transactions finish before pulling the plug.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
