package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/greenobird/service-booking/internal/adapter"
	"github.com/greenobird/service-booking/internal/application"
	"github.com/greenobird/service-booking/internal/config"
	"github.com/greenobird/service-booking/internal/events"
	"github.com/greenobird/service-booking/internal/handler"
	"github.com/greenobird/service-booking/internal/platform/health"
	"github.com/greenobird/service-booking/internal/platform/logger"
	"github.com/greenobird/service-booking/internal/platform/middleware"
	"github.com/greenobird/service-booking/internal/repository"
)

const serviceName = "service-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.StorageDriver),
		zap.String("gateway", cfg.PaymentGateway),
		zap.Bool("reject_overlaps", cfg.RejectOverlaps),
	)

	// Open booking ledger and promo table
	stores, err := repository.OpenStores(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to open booking store", zap.Error(err))
	}

	// Initialize payment gateway (mock for development)
	var gateway adapter.PaymentGateway
	if cfg.PaymentGateway == config.GatewayMock {
		gateway = adapter.NewMockRazorpayAdapter(zapLogger)
	} else {
		gateway = adapter.NewRazorpayAdapter(
			cfg.RazorpayConfig.BaseURL,
			cfg.RazorpayConfig.KeyID,
			cfg.RazorpayConfig.KeySecret,
			cfg.RazorpayConfig.Timeout,
			zapLogger,
		)
	}

	// Initialize notifiers
	var notifiers []adapter.Notifier
	if cfg.SMTPConfig.Enabled() {
		notifiers = append(notifiers, adapter.NewSMTPNotifier(
			cfg.SMTPConfig.Host,
			cfg.SMTPConfig.Port,
			cfg.SMTPConfig.Email,
			cfg.SMTPConfig.Password,
			cfg.BusinessName,
			zapLogger,
		))
	} else {
		zapLogger.Warn("SMTP credentials not set, confirmation emails disabled")
	}

	var publisher *events.BookingEventPublisher
	if len(cfg.KafkaConfig.Brokers) > 0 {
		publisher = events.NewBookingEventPublisher(cfg.KafkaConfig.Brokers, cfg.KafkaConfig.Topic, zapLogger)
		notifiers = append(notifiers, publisher)
	}

	// Initialize application services
	bookingService := application.NewBookingService(
		stores.Bookings,
		gateway,
		notifiers,
		adapter.NewPDFInvoiceRenderer(cfg.BusinessName),
		application.BookingOptions{
			Currency:       "INR",
			RejectOverlaps: cfg.RejectOverlaps,
			GatewayTimeout: cfg.RazorpayConfig.Timeout,
			NotifyTimeout:  cfg.NotifyTimeout,
		},
		zapLogger,
	)
	promoService := application.NewPromoService(stores.Promos, zapLogger)
	availabilityService := application.NewAvailabilityService(stores.Bookings, zapLogger)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(serviceName, map[string]health.Checker{
		"booking_store": stores.Bookings,
	})
	healthHandler.RegisterRoutes(router)

	// Register API routes
	handler.NewBookingHandler(bookingService).RegisterRoutes(router)
	handler.NewAdminHandler(bookingService).RegisterRoutes(router)
	handler.NewPromoHandler(promoService).RegisterRoutes(router)
	handler.NewAvailabilityHandler(availabilityService).RegisterRoutes(router)

	if !handler.RegisterStatic(router, cfg.PublicDir) {
		zapLogger.Warn("public directory not found, booking page disabled", zap.String("dir", cfg.PublicDir))
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down " + serviceName + "...")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			zapLogger.Error("failed to close kafka writer", zap.Error(err))
		}
	}
	if err := stores.Close(); err != nil {
		zapLogger.Error("failed to close booking store", zap.Error(err))
	}

	zapLogger.Info(serviceName + " stopped")
}
