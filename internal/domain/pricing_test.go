package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPackage() *Package {
	return &Package{
		ID:           uuid.New(),
		Title:        "Munnar Hills",
		PricePerHead: 5000,
		IsActive:     true,
		AvailableDates: []AvailableDate{
			{Date: "2026-12-01", SlotsAvailable: 10},
			{Date: "2026-12-15", SlotsAvailable: 4},
		},
	}
}

func TestComputePricing_Formula(t *testing.T) {
	tests := []struct {
		name      string
		price     float64
		advance   float64
		members   int
		total     float64
		adv       float64
		remaining float64
	}{
		{"scenario A", 5000, 500, 3, 15000, 1500, 13500},
		{"single member", 2500, 500, 1, 2500, 500, 2000},
		{"free package", 0, 0, 4, 0, 0, 0},
		{"advance equals total", 500, 500, 2, 1000, 1000, 0},
		{"advance exceeds total clamps remaining", 300, 500, 2, 600, 1000, 0},
		{"upper bound", 1000, 100, 20, 20000, 2000, 18000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ComputePricing(tt.price, tt.advance, tt.members)
			require.NoError(t, err)
			assert.Equal(t, tt.total, p.Total)
			assert.Equal(t, tt.adv, p.Advance)
			assert.Equal(t, tt.remaining, p.Remaining)
		})
	}
}

func TestComputePricing_PropertyOverGrid(t *testing.T) {
	for _, price := range []float64{0, 1, 499, 500, 5000, 12345.5} {
		for _, adv := range []float64{0, 250, 500, 10000} {
			for n := MinMembers; n <= MaxMembers; n++ {
				p, err := ComputePricing(price, adv, n)
				require.NoError(t, err)
				assert.Equal(t, float64(n)*price, p.Total)
				assert.Equal(t, float64(n)*adv, p.Advance)
				assert.GreaterOrEqual(t, p.Remaining, 0.0)
				if p.Total >= p.Advance {
					assert.Equal(t, p.Total-p.Advance, p.Remaining)
				} else {
					assert.Zero(t, p.Remaining)
				}
			}
		}
	}
}

func TestComputePricing_RejectsOutOfRange(t *testing.T) {
	for _, n := range []int{-1, 0, 21, 100} {
		_, err := ComputePricing(5000, 500, n)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "number_of_members")
	}

	_, err := ComputePricing(-1, -1, 2)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "price_per_head")
	assert.Contains(t, verr.Fields, "advance_amount_per_head")
}

func TestValidateBookingRequest(t *testing.T) {
	pkg := testPackage()

	valid := BookingRequest{
		PackageID:       pkg.ID,
		BookingDate:     "2026-12-01",
		NumberOfMembers: 2,
		Members: []MemberInput{
			{Name: "Asha", Age: 31, Phone: "9000000001"},
			{Name: "Ravi", Age: 34},
		},
	}
	require.NoError(t, ValidateBookingRequest(pkg, valid))

	t.Run("missing second member", func(t *testing.T) {
		req := valid
		req.Members = valid.Members[:1]
		err := ValidateBookingRequest(pkg, req)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "required", verr.Fields["members[1].name"])
		assert.Contains(t, verr.Fields, "members[1].age")
		assert.NotContains(t, verr.Fields, "members[0].name")
	})

	t.Run("blank name and zero age", func(t *testing.T) {
		req := valid
		req.Members = []MemberInput{{Name: "  ", Age: 0}, {Name: "Ravi", Age: 121}}
		err := ValidateBookingRequest(pkg, req)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 3)
	})

	t.Run("date required", func(t *testing.T) {
		req := valid
		req.BookingDate = ""
		err := ValidateBookingRequest(pkg, req)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "required", verr.Fields["booking_date"])
	})

	t.Run("date not offered", func(t *testing.T) {
		req := valid
		req.BookingDate = "2027-01-01"
		err := ValidateBookingRequest(pkg, req)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "booking_date")
	})

	t.Run("too many entries", func(t *testing.T) {
		req := valid
		req.NumberOfMembers = 1
		err := ValidateBookingRequest(pkg, req)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "members")
	})

	t.Run("member count out of range", func(t *testing.T) {
		req := valid
		req.NumberOfMembers = 21
		err := ValidateBookingRequest(pkg, req)
		assert.True(t, IsValidation(err))
	})
}

func TestNewBooking_BuildsManifest(t *testing.T) {
	pkg := testPackage()
	userID := uuid.New()
	req := BookingRequest{
		PackageID:       pkg.ID,
		BookingDate:     "2026-12-15",
		NumberOfMembers: 3,
		Members: []MemberInput{
			{Name: " Asha ", Age: 31},
			{Name: "Ravi", Age: 34, Phone: "900"},
			{Name: "Meera", Age: 8},
		},
	}
	p, err := ComputePricing(pkg.PricePerHead, 500, req.NumberOfMembers)
	require.NoError(t, err)

	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	b, members := NewBooking(userID, pkg, req, p, now)

	assert.Equal(t, BookingPending, b.Status)
	assert.Equal(t, userID, b.UserID)
	assert.Equal(t, 15000.0, b.TotalPrice)
	assert.Equal(t, 1500.0, b.AdvancePayment)
	assert.Equal(t, 13500.0, b.RemainingPayment)
	require.Len(t, members, 3)
	for _, m := range members {
		assert.Equal(t, b.ID, m.BookingID)
		assert.NotEmpty(t, m.Name)
		assert.Positive(t, m.Age)
	}
	assert.Equal(t, "Asha", members[0].Name)
}

func TestValidationError_Message(t *testing.T) {
	verr := NewValidationError()
	verr.Add("b", "second")
	verr.Add("a", "first")
	assert.Equal(t, "validation failed: a: first; b: second", verr.Error())

	var wrapped error = verr
	assert.True(t, errors.As(wrapped, &verr))
	assert.Nil(t, NewValidationError().OrNil())
}
