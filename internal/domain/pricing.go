package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinMembers = 1
	MaxMembers = 20
	MaxAge     = 120

	DefaultAdvancePerHead = 500
	DefaultUPINumber      = "9876543210@ybl"
)

type Pricing struct {
	Total     float64 `json:"total_price"`
	Advance   float64 `json:"advance_payment"`
	Remaining float64 `json:"remaining_payment"`
}

// ComputePricing derives the monetary fields of a booking. Remaining is
// clamped at zero when the advance exceeds the total.
func ComputePricing(pricePerHead, advancePerHead float64, members int) (Pricing, error) {
	verr := NewValidationError()
	if pricePerHead < 0 {
		verr.Add("price_per_head", "must not be negative")
	}
	if advancePerHead < 0 {
		verr.Add("advance_amount_per_head", "must not be negative")
	}
	if members < MinMembers || members > MaxMembers {
		verr.Add("number_of_members", fmt.Sprintf("must be between %d and %d", MinMembers, MaxMembers))
	}
	if err := verr.OrNil(); err != nil {
		return Pricing{}, err
	}

	total := float64(members) * pricePerHead
	advance := float64(members) * advancePerHead
	remaining := total - advance
	if remaining < 0 {
		remaining = 0
	}
	return Pricing{Total: total, Advance: advance, Remaining: remaining}, nil
}

type MemberInput struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Phone string `json:"phone,omitempty"`
}

type BookingRequest struct {
	PackageID       uuid.UUID     `json:"package_id"`
	BookingDate     string        `json:"booking_date"`
	NumberOfMembers int           `json:"number_of_members"`
	Members         []MemberInput `json:"members"`
}

// ValidateBookingRequest checks the request against the package it books.
// Every problem is reported, not only the first.
func ValidateBookingRequest(pkg *Package, req BookingRequest) error {
	verr := NewValidationError()

	switch {
	case strings.TrimSpace(req.BookingDate) == "":
		verr.Add("booking_date", "required")
	case !pkg.HasDate(req.BookingDate):
		verr.Add("booking_date", "not an available date for this package")
	}

	count := req.NumberOfMembers
	if count < MinMembers || count > MaxMembers {
		verr.Add("number_of_members", fmt.Sprintf("must be between %d and %d", MinMembers, MaxMembers))
		return verr
	}
	if len(req.Members) > count {
		verr.Add("members", fmt.Sprintf("expected %d entries, got %d", count, len(req.Members)))
	}

	for i := 0; i < count; i++ {
		var m MemberInput
		if i < len(req.Members) {
			m = req.Members[i]
		}
		if strings.TrimSpace(m.Name) == "" {
			verr.Add(fmt.Sprintf("members[%d].name", i), "required")
		}
		switch {
		case m.Age <= 0:
			verr.Add(fmt.Sprintf("members[%d].age", i), "must be a positive integer")
		case m.Age > MaxAge:
			verr.Add(fmt.Sprintf("members[%d].age", i), fmt.Sprintf("must be at most %d", MaxAge))
		}
	}
	return verr.OrNil()
}

// NewBooking builds a pending booking and its manifest. The request must
// already be valid.
func NewBooking(userID uuid.UUID, pkg *Package, req BookingRequest, p Pricing, now time.Time) (Booking, []Member) {
	b := Booking{
		ID:               uuid.New(),
		UserID:           userID,
		PackageID:        pkg.ID,
		BookingDate:      req.BookingDate,
		NumberOfMembers:  req.NumberOfMembers,
		TotalPrice:       p.Total,
		AdvancePayment:   p.Advance,
		RemainingPayment: p.Remaining,
		Status:           BookingPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	members := make([]Member, req.NumberOfMembers)
	for i := range members {
		in := req.Members[i]
		members[i] = Member{
			ID:        uuid.New(),
			BookingID: b.ID,
			Name:      strings.TrimSpace(in.Name),
			Age:       in.Age,
			Phone:     strings.TrimSpace(in.Phone),
			CreatedAt: now,
		}
	}
	return b, members
}
