package main

import (
	"log"
	"strings"
	"time"

	"payment-service/config"
	"payment-service/controllers"
	"payment-service/database"
	"payment-service/kafka"
	"payment-service/middleware"
	"payment-service/repository"
	"payment-service/routes"
	"payment-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[PaymentService] ❌ Failed to load config:", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("[PaymentService] ❌ Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Connect DB and migrate payments + idempotency_keys
	db, err := database.Connect(cfg, logger)
	if err != nil {
		log.Fatal("[PaymentService] ❌ Failed to connect to DB:", err)
	}
	defer database.Close(db)

	paymentRepo := repository.NewGormPaymentRepo(db)
	idempotencyRepo := repository.NewGormIdempotencyRepo(db)

	billingClient := services.NewBillingClient(
		cfg.BillingBaseURL,
		time.Duration(cfg.BillingTimeoutSeconds)*time.Second,
		logger,
	)

	paymentProducer := kafka.NewPaymentEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
	defer paymentProducer.Close()

	chargeService := services.NewChargeService(paymentRepo, idempotencyRepo, billingClient, paymentProducer, logger)

	// HTTP server
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	pc := controllers.NewPaymentController(chargeService, logger)
	routes.RegisterPaymentRoutes(r, pc)

	log.Println("[PaymentService] ✅ Running on port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("[PaymentService] ❌ Server failed:", err)
	}
}
