package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gokturkdogan/olive-oil-sub000/internal/config"
	"github.com/gokturkdogan/olive-oil-sub000/internal/coupon"
	"github.com/gokturkdogan/olive-oil-sub000/internal/database"
	"github.com/gokturkdogan/olive-oil-sub000/internal/gateway"
	"github.com/gokturkdogan/olive-oil-sub000/internal/handler"
	"github.com/gokturkdogan/olive-oil-sub000/internal/notify"
	"github.com/gokturkdogan/olive-oil-sub000/internal/pricing"
	"github.com/gokturkdogan/olive-oil-sub000/internal/repository"
	"github.com/gokturkdogan/olive-oil-sub000/internal/router"
	"github.com/gokturkdogan/olive-oil-sub000/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting order engine API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	// External collaborators: payment gateway and best-effort notifier
	gw := gateway.New(cfg.Gateway.BaseURL, cfg.Gateway.Timeout, logger)
	notifier := notify.NewLogNotifier(logger)

	// Coupon ledger (read-only validation; usage committed on payment)
	ledger := coupon.NewLedger(couponRepo, logger)

	pricingCfg := pricing.Config{
		FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
		BaseShippingFee:       cfg.Pricing.BaseShippingFee,
		Policy:                pricing.DiscountPolicy(cfg.Pricing.DiscountPolicy),
	}

	// Initialize services
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	checkoutService := service.NewCheckoutService(
		cartRepo, productRepo, orderRepo, userRepo,
		ledger, gw, pricingCfg, cfg.Gateway.CallbackURL, logger,
	)
	paymentService := service.NewPaymentService(
		orderRepo, productRepo, couponRepo, cartRepo, notifier, logger,
	)
	orderService := service.NewOrderService(
		orderRepo, productRepo, userRepo, gw, notifier, logger,
	)

	// Initialize HTTP handlers
	cartHandler := handler.NewCartHandler(cartService, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	adminHandler := handler.NewAdminHandler(orderService, logger)

	// Initialize router
	mux := router.New(
		cartHandler, checkoutHandler, paymentHandler, orderHandler, adminHandler,
		cfg.Auth.AdminAPIKey, logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
