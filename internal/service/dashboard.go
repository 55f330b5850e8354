package service

import (
	"context"
	"sort"
	"sync"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Dashboard aggregates admin counters. Each category is fetched on its
// own; a category that fails is reported as zero and named in
// Unavailable instead of failing the whole call.
func (e *Engine) Dashboard(ctx context.Context, actor domain.Actor) (_ *domain.Dashboard, err error) {
	ctx, span := e.startSpan(ctx, "Dashboard", actor)
	defer func() { endSpan(span, err) }()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		out domain.Dashboard
	)
	fail := func(category string, err error) {
		e.log(ctx).WithError(err).WithField("category", category).Warn("dashboard category unavailable")
		mu.Lock()
		out.Unavailable = append(out.Unavailable, category)
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		counts, err := e.bookings.CountBookingsByStatus(ctx)
		if err != nil {
			fail("bookings", err)
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		for _, n := range counts {
			out.TotalBookings += n
		}
		out.PendingBookings = counts[domain.BookingPending]
		out.ConfirmedBookings = counts[domain.BookingConfirmed]
		return nil
	})
	g.Go(func() error {
		n, err := e.profiles.CountProfiles(ctx)
		if err != nil {
			fail("users", err)
			return nil
		}
		mu.Lock()
		out.TotalUsers = n
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		n, err := e.catalog.CountPackages(ctx)
		if err != nil {
			fail("packages", err)
			return nil
		}
		mu.Lock()
		out.TotalPackages = n
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		sum, err := e.bookings.SumVerifiedPayments(ctx)
		if err != nil {
			fail("revenue", err)
			return nil
		}
		mu.Lock()
		out.VerifiedRevenue = sum
		mu.Unlock()
		return nil
	})
	_ = g.Wait()

	sort.Strings(out.Unavailable)
	return &out, nil
}
