package http

import (
	"bytes"
	"net"
	"net/http"
	"strconv"

	"github.com/adhilsalahh/package-booking/internal/idempotency"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/adhilsalahh/package-booking/internal/rateLimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

var fallbackLogger = observability.NewLogger()

func RequestIDMiddleware(next http.Handler) http.Handler {
	return middleware.RequestID(next)
}

func LoggerMiddleware(logger observability.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := logger.WithField("request_id", middleware.GetReqID(r.Context())).
				WithField("method", r.Method).
				WithField("path", r.URL.Path)
			if actor := ActorFromContext(r.Context()); actor.ID != uuid.Nil {
				entry = entry.WithField("actor_id", actor.ID)
			}
			next.ServeHTTP(w, r.WithContext(observability.IntoContext(r.Context(), entry)))
		})
	}
}

// MetricsMiddleware counts requests by route pattern, so ids in paths
// do not blow up label cardinality.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.RequestsTotal.WithLabelValues(route, strconv.Itoa(status), r.Method).Inc()
	})
}

func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := otel.Tracer("http").Start(ctx, r.Method+" "+r.URL.Path)
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.url", r.URL.String()),
			attribute.String("http.request_id", middleware.GetReqID(r.Context())),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimitMiddleware budgets requests per caller, or per client IP for
// anonymous requests.
func RateLimitMiddleware(rl *rateLimit.RateLimiter, policy rateLimit.Policy) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := "ip:" + clientIP(r)
			if actor := ActorFromContext(r.Context()); actor.ID != uuid.Nil {
				subject = "user:" + actor.ID.String()
			}
			if !rl.Allow(r.Context(), policy, subject) {
				writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

const maxIdempotencyKeyLen = 128

// IdempotencyMiddleware replays the stored response when a creation
// request is retried with the same Idempotency-Key. The header is
// optional.
func IdempotencyMiddleware(idemp *idempotency.Idempotency) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := r.Header.Get("Idempotency-Key")
			if r.Method != http.MethodPost || clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(clientKey) > maxIdempotencyKeyLen {
				badRequest(w, "Idempotency-Key", "too long")
				return
			}
			ctx := r.Context()
			key := idempotency.Key(ActorFromContext(ctx).ID.String(), r.Method, r.URL.Path, clientKey)

			existing, err := idemp.Get(ctx, key)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if existing != nil {
				w.Header().Set("Content-Type", existing.ContentType)
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(existing.Status)
				_, _ = w.Write(existing.Body)
				return
			}

			release, err := idemp.Begin(ctx, key)
			if err != nil {
				writeError(w, r, err)
				return
			}
			defer release()

			var buf bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&buf)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			err = idemp.Set(ctx, key, idempotency.Response{
				Status:      status,
				ContentType: ww.Header().Get("Content-Type"),
				Body:        buf.Bytes(),
			})
			if err != nil {
				observability.FromContext(ctx, fallbackLogger).WithError(err).Warn("failed to store idempotent response")
			}
		})
	}
}
