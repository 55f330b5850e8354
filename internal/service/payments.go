package service

import (
	"context"
	"io"
	"strings"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/evidence"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/adhilsalahh/package-booking/internal/upi"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type PaymentSubmission struct {
	PaymentType string
	UTRID       string
	Filename    string
	Screenshot  []byte
}

// SubmitPayment records a pending payment backed by an uploaded proof
// image. The amount is the booking's advance or its full total; payments
// already made are not deducted.
func (e *Engine) SubmitPayment(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, in PaymentSubmission) (_ *domain.Payment, err error) {
	ctx, span := e.startSpan(ctx, "SubmitPayment", actor)
	defer func() { endSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}

	verr := domain.NewValidationError()
	paymentType, perr := domain.ParsePaymentType(in.PaymentType)
	verr.Merge(perr)
	if strings.TrimSpace(in.UTRID) == "" {
		verr.Add("utr_id", "required")
	}
	var ext string
	if len(in.Screenshot) == 0 {
		verr.Add("screenshot", "required")
	} else if ext, err = evidence.Extension(in.Filename); err != nil {
		verr.Add("screenshot", "unsupported image type")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	b, err := e.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, storageErr("get booking", err)
	}
	if b.UserID != actor.ID {
		return nil, domain.NotFound("booking", bookingID.String())
	}
	if b.Status == domain.BookingCancelled {
		return nil, &domain.StateError{Entity: "booking", From: string(b.Status), To: "paid", Msg: "payments cannot be submitted for a cancelled booking"}
	}

	data, err := evidence.Normalize(in.Screenshot, ext)
	if err != nil {
		if domain.IsValidation(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, "normalize screenshot")
	}

	obj, err := e.evidence.Store(ctx, b.ID, data, ext)
	if err != nil {
		return nil, storageErr("store screenshot", err)
	}

	p := domain.NewPayment(*b, paymentType, in.UTRID, obj.URL, e.now())
	if err := e.bookings.CreatePayment(ctx, p); err != nil {
		if derr := e.evidence.Delete(ctx, obj.Path); derr != nil {
			e.log(ctx).WithError(derr).WithField("path", obj.Path).Error("failed to remove screenshot of rejected payment")
		}
		return nil, storageErr("create payment", err)
	}

	observability.PaymentsSubmitted.WithLabelValues(string(paymentType)).Inc()
	e.log(ctx).WithField("payment_id", p.ID).WithField("booking_id", b.ID).Info("payment submitted")
	return &p, nil
}

// VerifyPayment records an admin decision on a pending payment. It never
// changes the owning booking.
func (e *Engine) VerifyPayment(ctx context.Context, actor domain.Actor, paymentID uuid.UUID, decision string) (_ *domain.Payment, err error) {
	ctx, span := e.startSpan(ctx, "VerifyPayment", actor)
	defer func() { endSpan(span, err) }()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	to, err := domain.ParseDecision(decision)
	if err != nil {
		return nil, err
	}

	p, err := e.bookings.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, storageErr("get payment", err)
	}
	if err := p.Decide(to, actor.ID, e.now()); err != nil {
		return nil, err
	}

	err = e.bookings.DecidePayment(ctx, *p)
	if errors.Is(err, domain.ErrConflict) {
		current, gerr := e.bookings.GetPayment(ctx, paymentID)
		if gerr != nil {
			return nil, storageErr("get payment", gerr)
		}
		return nil, &domain.StateError{Entity: "payment", From: string(current.Status), To: string(to)}
	}
	if err != nil {
		return nil, storageErr("update payment status", err)
	}

	observability.PaymentDecisions.WithLabelValues(string(to)).Inc()
	e.log(ctx).WithField("payment_id", p.ID).WithField("status", to).Info("payment decided")
	return p, nil
}

// PaymentInstructions tells the owner where and how much to pay.
func (e *Engine) PaymentInstructions(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, paymentType string) (_ *upi.Instructions, err error) {
	ctx, span := e.startSpan(ctx, "PaymentInstructions", actor)
	defer func() { endSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if paymentType == "" {
		paymentType = string(domain.PaymentAdvance)
	}
	t, err := domain.ParsePaymentType(paymentType)
	if err != nil {
		return nil, err
	}
	b, err := e.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, storageErr("get booking", err)
	}
	if !actor.IsAdmin() && b.UserID != actor.ID {
		return nil, domain.NotFound("booking", bookingID.String())
	}

	s := e.effectiveSettings(ctx)
	amount := domain.PaymentAmount(*b, t)
	return &upi.Instructions{
		BookingID:   b.ID.String(),
		UPIID:       s.UPINumber,
		Payee:       e.payee,
		Amount:      amount,
		PaymentType: t,
		URL:         upi.PaymentURL(s.UPINumber, e.payee, amount),
		QRCodeImage: s.UPIQRCode,
	}, nil
}

// PaymentQRCode renders the instructions' UPI link as a PNG.
func (e *Engine) PaymentQRCode(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, paymentType string, size int) ([]byte, error) {
	in, err := e.PaymentInstructions(ctx, actor, bookingID, paymentType)
	if err != nil {
		return nil, err
	}
	return upi.QRCode(in.URL, size)
}

// OpenEvidence streams a stored proof image to the booking owner or an
// admin.
func (e *Engine) OpenEvidence(ctx context.Context, actor domain.Actor, path string) (io.ReadCloser, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	bookingID, err := evidence.BookingID(path)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		b, err := e.bookings.GetBooking(ctx, bookingID)
		if err != nil {
			return nil, storageErr("get booking", err)
		}
		if b.UserID != actor.ID {
			return nil, domain.NotFound("evidence", path)
		}
	}
	rc, err := e.evidence.Open(ctx, path)
	if err != nil {
		return nil, storageErr("open screenshot", err)
	}
	return rc, nil
}
