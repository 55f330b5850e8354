package rateLimit

import (
	"context"
	"time"

	"github.com/adhilsalahh/package-booking/internal/observability"
)

// Policy is a fixed-window request budget.
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
}

var (
	BookingPolicy = Policy{Name: "bookings", Limit: 10, Window: time.Minute}
	PaymentPolicy = Policy{Name: "payments", Limit: 5, Window: time.Minute}
)

// Counter increments key, starting a window of the given length on first use.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RateLimiter struct {
	counter Counter
	logger  observability.Logger
}

func NewRateLimiter(counter Counter, logger observability.Logger) *RateLimiter {
	return &RateLimiter{counter: counter, logger: logger}
}

// Allow counts one request of subject against p. Redis failures let the
// request through.
func (rl *RateLimiter) Allow(ctx context.Context, p Policy, subject string) bool {
	n, err := rl.counter.Incr(ctx, "rl:"+p.Name+":"+subject, p.Window)
	if err != nil {
		rl.logger.WithError(err).WithField("policy", p.Name).Warn("rate limiter unavailable")
		return true
	}
	if n > int64(p.Limit) {
		observability.RateLimitExceeded.WithLabelValues(p.Name).Inc()
		return false
	}
	return true
}
