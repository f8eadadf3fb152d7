package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skyhaventravel/skyhaven-backend/api/controllers"
	"github.com/skyhaventravel/skyhaven-backend/api/middleware"
	"github.com/skyhaventravel/skyhaven-backend/internal/bankaccounts"
	"github.com/skyhaventravel/skyhaven-backend/internal/banktransfer"
	bookingsvc "github.com/skyhaventravel/skyhaven-backend/internal/bookings"
	paymentsvc "github.com/skyhaventravel/skyhaven-backend/internal/payments"
	"github.com/skyhaventravel/skyhaven-backend/pkg/config"
	"github.com/skyhaventravel/skyhaven-backend/pkg/db"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	"github.com/skyhaventravel/skyhaven-backend/pkg/gateways"
	"github.com/skyhaventravel/skyhaven-backend/pkg/logger"
	"github.com/skyhaventravel/skyhaven-backend/pkg/redis"
	"github.com/skyhaventravel/skyhaven-backend/pkg/storage/gcs"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	registry *gateways.Registry,
	bookingService *bookingsvc.Service,
	paymentService *paymentsvc.Service,
	bankTransferService *banktransfer.Service,
	bankAccountService *bankaccounts.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// a nil *redis.Client must not reach the interface-typed middleware
	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		idemStore = redisClient
	}

	deps := map[string]controllers.HealthPinger{}
	if dbP != nil {
		deps["database"] = dbP
	}
	if redisClient != nil {
		deps["redis"] = redisClient
	}
	if gcsClient != nil {
		deps["storage"] = gcsClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, redisClient, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", controllers.CreateBooking(bookingService, logg))
			r.Post("/quote", controllers.BookingQuote(bookingService, logg))
			r.Get("/{bookingId}", controllers.BookingDetail(bookingService, logg))
			r.Post("/{bookingId}/complete-payment", controllers.CompleteBookingPayment(bankTransferService, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/initialize", controllers.InitializePayment(paymentService, logg))
			r.Get("/methods", controllers.PaymentMethods(registry, logg))
			r.Post("/{paymentId}/proof", controllers.UploadPaymentProof(bankTransferService, logg))
			r.Post("/{paymentId}/confirm", controllers.ConfirmPayment(paymentService, logg))
		})

		r.Get("/bank-accounts", controllers.BankAccounts(bankAccountService, logg))

		r.Route("/admin/payments", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireRole(enums.ActorRoleAdmin, logg))

			r.With(middleware.RequirePermission(enums.PermissionPaymentsView, logg)).
				Get("/", controllers.AdminListPayments(paymentService, logg))
			r.With(middleware.RequirePermission(enums.PermissionPaymentsView, logg)).
				Get("/stats", controllers.AdminPaymentStats(paymentService, logg))
			r.With(middleware.RequirePermission(enums.PermissionPaymentsExport, logg)).
				Get("/export", controllers.AdminExportPayments(paymentService, logg))
			r.With(middleware.RequirePermission(enums.PermissionPaymentsView, logg)).
				Get("/{paymentId}", controllers.AdminPaymentDetail(paymentService, logg))
			r.With(middleware.RequirePermission(enums.PermissionPaymentsVerify, logg)).
				Post("/{paymentId}/verify", controllers.AdminVerifyPayment(paymentService, logg))
			r.With(middleware.RequirePermission(enums.PermissionPaymentsRefund, logg)).
				Post("/{paymentId}/refund", controllers.AdminRefundPayment(paymentService, logg))
			r.With(middleware.RequirePermission(enums.PermissionPaymentsOverride, logg)).
				Put("/{paymentId}/status", controllers.AdminUpdatePaymentStatus(paymentService, logg))
		})
	})

	return r
}
