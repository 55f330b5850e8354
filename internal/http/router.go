package http

import (
	"github.com/adhilsalahh/package-booking/internal/idempotency"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/adhilsalahh/package-booking/internal/rateLimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Handlers    *Handlers
	Auth        *Authenticator
	Logger      observability.Logger
	RateLimiter *rateLimit.RateLimiter
	Idempotency *idempotency.Idempotency
}

func SetupRouter(d RouterDeps) *chi.Mux {
	h := d.Handlers
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(TracingMiddleware)
	r.Use(JWTMiddleware(d.Auth))
	r.Use(LoggerMiddleware(d.Logger))
	r.Use(MetricsMiddleware)

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/v1/packages", h.ListPackages)
	r.Get("/v1/packages/{id}", h.GetPackage)
	r.Get("/v1/settings", h.GetSettings)

	limited := func(p rateLimit.Policy) chi.Middlewares {
		mws := chi.Middlewares{}
		if d.RateLimiter != nil {
			mws = append(mws, RateLimitMiddleware(d.RateLimiter, p))
		}
		if d.Idempotency != nil {
			mws = append(mws, IdempotencyMiddleware(d.Idempotency))
		}
		return mws
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)

		r.Get("/v1/profile", h.GetProfile)
		r.Put("/v1/profile", h.UpdateProfile)

		r.With(limited(rateLimit.BookingPolicy)...).Post("/v1/bookings", h.CreateBooking)
		r.Get("/v1/bookings", h.ListMyBookings)
		r.Get("/v1/bookings/{id}", h.GetBooking)
		r.Post("/v1/bookings/{id}/cancel", h.CancelBooking)
		r.Get("/v1/bookings/{id}/payment-instructions", h.PaymentInstructions)
		r.Get("/v1/bookings/{id}/payment-qr", h.PaymentQRCode)
		r.With(limited(rateLimit.PaymentPolicy)...).Post("/v1/bookings/{id}/payments", h.SubmitPayment)
		r.Get("/v1/evidence/*", h.GetEvidence)
	})

	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(RequireAdmin)

		r.Get("/dashboard", h.Dashboard)
		r.Get("/bookings", h.AdminListBookings)
		r.Post("/bookings/{id}/confirm", h.AdminConfirmBooking)
		r.Post("/bookings/{id}/cancel", h.AdminCancelBooking)
		r.Post("/payments/{id}/verify", h.AdminVerifyPayment)
		r.Get("/packages", h.AdminListPackages)
		r.Post("/packages", h.AdminCreatePackage)
		r.Put("/packages/{id}", h.AdminUpdatePackage)
		r.Delete("/packages/{id}", h.AdminDeletePackage)
		r.Get("/settings", h.AdminGetSettings)
		r.Put("/settings", h.AdminUpdateSettings)
	})

	return r
}
