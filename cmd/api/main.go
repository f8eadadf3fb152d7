package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/skyhaventravel/skyhaven-backend/api/routes"
	"github.com/skyhaventravel/skyhaven-backend/internal/bankaccounts"
	"github.com/skyhaventravel/skyhaven-backend/internal/banktransfer"
	bookingsvc "github.com/skyhaventravel/skyhaven-backend/internal/bookings"
	paymentsvc "github.com/skyhaventravel/skyhaven-backend/internal/payments"
	"github.com/skyhaventravel/skyhaven-backend/pkg/config"
	"github.com/skyhaventravel/skyhaven-backend/pkg/db"
	"github.com/skyhaventravel/skyhaven-backend/pkg/gateways"
	"github.com/skyhaventravel/skyhaven-backend/pkg/logger"
	"github.com/skyhaventravel/skyhaven-backend/pkg/metrics"
	"github.com/skyhaventravel/skyhaven-backend/pkg/migrate"
	"github.com/skyhaventravel/skyhaven-backend/pkg/outbox"
	"github.com/skyhaventravel/skyhaven-backend/pkg/redis"
	"github.com/skyhaventravel/skyhaven-backend/pkg/storage/gcs"
	pkgstripe "github.com/skyhaventravel/skyhaven-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var gcsClient *gcs.Client
	if cfg.GCS.BucketName != "" {
		gcsClient, err = gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "gcs bucket not configured, proof uploads disabled")
	}

	registry := buildGatewayRegistry(cfg, logg)

	gdb := dbClient.DB()
	bookingRepo := bookingsvc.NewRepository(gdb)
	paymentRepo := paymentsvc.NewRepository(gdb)
	outboxSvc := outbox.NewService(outbox.NewRepository(gdb), logg)
	paymentMetrics := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)

	bookingService, err := bookingsvc.NewService(bookingsvc.ServiceParams{Repo: bookingRepo, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	paymentService, err := paymentsvc.NewService(paymentsvc.ServiceParams{
		DB:       dbClient,
		Repo:     paymentRepo,
		Bookings: bookingRepo,
		Gateways: registry,
		Outbox:   outboxSvc,
		Metrics:  paymentMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	var uploader banktransfer.Uploader
	if gcsClient != nil {
		uploader = gcsClient
	}
	bankTransferService, err := banktransfer.NewService(banktransfer.ServiceParams{
		DB:       dbClient,
		Payments: paymentRepo,
		Bookings: bookingRepo,
		Uploader: uploader,
		Outbox:   outboxSvc,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bank transfer service", err)
		os.Exit(1)
	}

	bankAccountService, err := bankaccounts.NewService(bankaccounts.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create bank account service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	var gcsPinger gcs.Pinger
	if gcsClient != nil {
		gcsPinger = gcsClient
	}
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, gcsPinger, registry,
			bookingService, paymentService, bankTransferService, bankAccountService),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-shutdownCtx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "error draining api server", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down")
}

func buildGatewayRegistry(cfg *config.Config, logg *logger.Logger) *gateways.Registry {
	var gws []gateways.Gateway

	if cfg.Stripe.APIKey != "" {
		stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap stripe", err)
			os.Exit(1)
		}
		gws = append(gws, gateways.NewStripeGateway(stripeClient, cfg.Stripe))
	}
	if cfg.Paystack.SecretKey != "" {
		gws = append(gws, gateways.NewPaystackGateway(cfg.Paystack))
	}
	if cfg.Flutterwave.SecretKey != "" {
		gws = append(gws, gateways.NewFlutterwaveGateway(cfg.Flutterwave))
	}
	if cfg.PayPal.ClientID != "" && cfg.PayPal.Secret != "" {
		gws = append(gws, gateways.NewPayPalGateway(cfg.PayPal))
	}

	return gateways.NewRegistry(gws...)
}
