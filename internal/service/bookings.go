package service

import (
	"context"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// CreateBooking validates the request against the package, prices it and
// stores the booking with its full manifest. Nothing is written when the
// request is invalid.
func (e *Engine) CreateBooking(ctx context.Context, actor domain.Actor, req domain.BookingRequest) (_ *domain.BookingDetail, err error) {
	ctx, span := e.startSpan(ctx, "CreateBooking", actor)
	defer func() { endSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if req.PackageID == uuid.Nil {
		return nil, domain.Invalid("package_id", "required")
	}

	pkg, err := e.catalog.GetPackage(ctx, req.PackageID)
	if err != nil {
		return nil, storageErr("get package", err)
	}
	if !pkg.IsActive {
		return nil, domain.Invalid("package_id", "package is not open for booking")
	}
	if err := domain.ValidateBookingRequest(pkg, req); err != nil {
		return nil, err
	}

	settings := e.effectiveSettings(ctx)
	pricing, err := domain.ComputePricing(pkg.PricePerHead, settings.AdvanceAmountPerHead, req.NumberOfMembers)
	if err != nil {
		return nil, err
	}

	b, members := domain.NewBooking(actor.ID, pkg, req, pricing, e.now())
	if err := e.bookings.CreateBooking(ctx, b, members); err != nil {
		return nil, storageErr("create booking", err)
	}

	observability.BookingsCreated.Inc()
	e.log(ctx).WithField("booking_id", b.ID).WithField("package_id", pkg.ID).Info("booking created")

	return &domain.BookingDetail{
		Booking:  b,
		Package:  pkg.Summary(),
		Members:  members,
		Payments: []domain.Payment{},
	}, nil
}

// ConfirmBooking is an admin decision and does not look at payments.
// Confirming a confirmed booking returns it unchanged.
func (e *Engine) ConfirmBooking(ctx context.Context, actor domain.Actor, id uuid.UUID) (_ *domain.Booking, err error) {
	ctx, span := e.startSpan(ctx, "ConfirmBooking", actor)
	defer func() { endSpan(span, err) }()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return e.transitionBooking(ctx, actor, id, domain.BookingConfirmed)
}

// CancelBooking moves a pending booking to cancelled. Owners may cancel
// their own bookings and admins any booking.
func (e *Engine) CancelBooking(ctx context.Context, actor domain.Actor, id uuid.UUID) (_ *domain.Booking, err error) {
	ctx, span := e.startSpan(ctx, "CancelBooking", actor)
	defer func() { endSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	b, err := e.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, storageErr("get booking", err)
	}
	if !b.CanCancel(actor) {
		return nil, domain.NotFound("booking", id.String())
	}
	return e.transitionBooking(ctx, actor, id, domain.BookingCancelled)
}

func (e *Engine) transitionBooking(ctx context.Context, actor domain.Actor, id uuid.UUID, to domain.BookingStatus) (*domain.Booking, error) {
	// One retry covers a concurrent change between read and write.
	for attempt := 0; attempt < 2; attempt++ {
		b, err := e.bookings.GetBooking(ctx, id)
		if err != nil {
			return nil, storageErr("get booking", err)
		}
		changed, err := b.Transition(to)
		if err != nil {
			return nil, err
		}
		if !changed {
			return b, nil
		}

		now := e.now()
		err = e.bookings.TransitionBooking(ctx, id, b.Status, to, now)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, storageErr("update booking status", err)
		}

		from := b.Status
		b.Status = to
		b.UpdatedAt = now
		observability.BookingTransitions.WithLabelValues(string(to)).Inc()
		e.log(ctx).WithField("booking_id", id).WithField("from", from).WithField("to", to).Info("booking status changed")
		return b, nil
	}
	return nil, domain.Storage("update booking status", domain.ErrConflict)
}

// GetBooking returns the booking with its package summary, manifest and
// payments. Bookings of other users look missing to non-admins.
func (e *Engine) GetBooking(ctx context.Context, actor domain.Actor, id uuid.UUID) (_ *domain.BookingDetail, err error) {
	ctx, span := e.startSpan(ctx, "GetBooking", actor)
	defer func() { endSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	b, err := e.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, storageErr("get booking", err)
	}
	if !actor.IsAdmin() && b.UserID != actor.ID {
		return nil, domain.NotFound("booking", id.String())
	}
	details, err := e.hydrate(ctx, []domain.Booking{*b}, actor.IsAdmin())
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListMyBookings returns the actor's bookings, newest first.
func (e *Engine) ListMyBookings(ctx context.Context, actor domain.Actor) (_ []domain.BookingDetail, err error) {
	ctx, span := e.startSpan(ctx, "ListMyBookings", actor)
	defer func() { endSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	bookings, err := e.bookings.ListBookings(ctx, domain.BookingFilter{UserID: &actor.ID})
	if err != nil {
		return nil, storageErr("list bookings", err)
	}
	return e.hydrate(ctx, bookings, false)
}

// ListBookings is the admin listing. An empty status or "all" lists every
// booking.
func (e *Engine) ListBookings(ctx context.Context, actor domain.Actor, status string) (_ []domain.BookingDetail, err error) {
	ctx, span := e.startSpan(ctx, "ListBookings", actor)
	defer func() { endSpan(span, err) }()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	filter := domain.BookingFilter{}
	switch st := domain.BookingStatus(status); st {
	case "", "all":
	case domain.BookingPending, domain.BookingConfirmed, domain.BookingCancelled:
		filter.Status = st
	default:
		return nil, domain.Invalid("status", "must be all, pending, confirmed or cancelled")
	}
	bookings, err := e.bookings.ListBookings(ctx, filter)
	if err != nil {
		return nil, storageErr("list bookings", err)
	}
	return e.hydrate(ctx, bookings, true)
}

func (e *Engine) hydrate(ctx context.Context, bookings []domain.Booking, withOwners bool) ([]domain.BookingDetail, error) {
	details := make([]domain.BookingDetail, len(bookings))
	if len(bookings) == 0 {
		return details, nil
	}

	ids := make([]uuid.UUID, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	members, err := e.bookings.ListMembers(ctx, ids)
	if err != nil {
		return nil, storageErr("list members", err)
	}
	payments, err := e.bookings.ListPayments(ctx, ids)
	if err != nil {
		return nil, storageErr("list payments", err)
	}

	var owners map[uuid.UUID]domain.Profile
	if withOwners {
		userIDs := make([]uuid.UUID, 0, len(bookings))
		seen := map[uuid.UUID]bool{}
		for _, b := range bookings {
			if !seen[b.UserID] {
				seen[b.UserID] = true
				userIDs = append(userIDs, b.UserID)
			}
		}
		owners, err = e.profiles.GetProfiles(ctx, userIDs)
		if err != nil {
			return nil, storageErr("list profiles", err)
		}
	}

	packages := map[uuid.UUID]*domain.PackageSummary{}
	for i, b := range bookings {
		summary, ok := packages[b.PackageID]
		if !ok {
			pkg, err := e.catalog.GetPackage(ctx, b.PackageID)
			switch {
			case err == nil:
				summary = pkg.Summary()
			case domain.IsNotFound(err):
				// Deleted packages leave their bookings without a summary.
			default:
				return nil, storageErr("get package", err)
			}
			packages[b.PackageID] = summary
		}

		d := domain.BookingDetail{
			Booking:  b,
			Package:  summary,
			Members:  members[b.ID],
			Payments: payments[b.ID],
		}
		if d.Members == nil {
			d.Members = []domain.Member{}
		}
		if d.Payments == nil {
			d.Payments = []domain.Payment{}
		}
		if owner, ok := owners[b.UserID]; ok {
			d.Owner = &owner
		}
		details[i] = d
	}
	return details, nil
}
