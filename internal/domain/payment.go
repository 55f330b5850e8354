package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func ParsePaymentType(s string) (PaymentType, error) {
	switch t := PaymentType(strings.ToLower(strings.TrimSpace(s))); t {
	case PaymentAdvance, PaymentFull:
		return t, nil
	case "":
		return "", Invalid("payment_type", "required")
	default:
		return "", Invalid("payment_type", "must be advance or full")
	}
}

// PaymentAmount is the amount owed for a payment of the given type. A full
// payment is always the booking total; earlier payments are not deducted.
func PaymentAmount(b Booking, t PaymentType) float64 {
	if t == PaymentFull {
		return b.TotalPrice
	}
	return b.AdvancePayment
}

func NewPayment(b Booking, t PaymentType, utr, screenshotURL string, now time.Time) Payment {
	return Payment{
		ID:            uuid.New(),
		BookingID:     b.ID,
		Amount:        PaymentAmount(b, t),
		PaymentType:   t,
		UTRID:         strings.TrimSpace(utr),
		ScreenshotURL: screenshotURL,
		Status:        PaymentPending,
		CreatedAt:     now,
	}
}

func ParseDecision(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case PaymentVerified, PaymentRejected:
		return st, nil
	default:
		return "", Invalid("status", "must be verified or rejected")
	}
}

// Decide moves a pending payment to verified or rejected. Both are
// terminal, so any second decision fails.
func (p *Payment) Decide(to PaymentStatus, admin uuid.UUID, now time.Time) error {
	if to != PaymentVerified && to != PaymentRejected {
		return Invalid("status", "must be verified or rejected")
	}
	if p.Status != PaymentPending {
		return &StateError{Entity: "payment", From: string(p.Status), To: string(to)}
	}
	p.Status = to
	p.VerifiedBy = &admin
	p.VerifiedAt = &now
	return nil
}
