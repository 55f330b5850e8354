package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentType string

const (
	PaymentAdvance PaymentType = "advance"
	PaymentFull    PaymentType = "full"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

type Package struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Images         []string        `json:"images"`
	PricePerHead   float64         `json:"price_per_head"`
	Duration       string          `json:"duration"`
	Itinerary      []ItineraryDay  `json:"itinerary"`
	Inclusions     []string        `json:"inclusions"`
	Exclusions     []string        `json:"exclusions"`
	AvailableDates []AvailableDate `json:"available_dates"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type ItineraryDay struct {
	Day         int    `json:"day"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type AvailableDate struct {
	Date           string `json:"date"`
	SlotsAvailable int    `json:"slots_available"`
}

type Booking struct {
	ID               uuid.UUID     `json:"id"`
	UserID           uuid.UUID     `json:"user_id"`
	PackageID        uuid.UUID     `json:"package_id"`
	BookingDate      string        `json:"booking_date"`
	NumberOfMembers  int           `json:"number_of_members"`
	TotalPrice       float64       `json:"total_price"`
	AdvancePayment   float64       `json:"advance_payment"`
	RemainingPayment float64       `json:"remaining_payment"`
	Status           BookingStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type Member struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Payment struct {
	ID            uuid.UUID     `json:"id"`
	BookingID     uuid.UUID     `json:"booking_id"`
	Amount        float64       `json:"amount"`
	PaymentType   PaymentType   `json:"payment_type"`
	UTRID         string        `json:"utr_id"`
	ScreenshotURL string        `json:"screenshot_url"`
	Status        PaymentStatus `json:"status"`
	VerifiedBy    *uuid.UUID    `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time    `json:"verified_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

type Settings struct {
	UPINumber            string    `json:"upi_number"`
	UPIQRCode            string    `json:"upi_qr_code,omitempty"`
	AdvanceAmountPerHead float64   `json:"advance_amount_per_head"`
	ContactEmail         string    `json:"contact_email,omitempty"`
	ContactPhone         string    `json:"contact_phone,omitempty"`
	WhatsAppPhoneNumber  string    `json:"whatsapp_phone_number,omitempty"`
	WhatsAppAPIKey       string    `json:"whatsapp_api_key,omitempty"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PackageSummary is the slice of a package shown next to a booking.
type PackageSummary struct {
	Title        string  `json:"title"`
	Duration     string  `json:"duration"`
	PricePerHead float64 `json:"price_per_head"`
}

type BookingDetail struct {
	Booking
	Package  *PackageSummary `json:"package,omitempty"`
	Owner    *Profile        `json:"owner,omitempty"`
	Members  []Member        `json:"members"`
	Payments []Payment       `json:"payments"`
}

type Dashboard struct {
	TotalBookings     int      `json:"total_bookings"`
	PendingBookings   int      `json:"pending_bookings"`
	ConfirmedBookings int      `json:"confirmed_bookings"`
	TotalUsers        int      `json:"total_users"`
	TotalPackages     int      `json:"total_packages"`
	VerifiedRevenue   float64  `json:"verified_revenue"`
	Unavailable       []string `json:"unavailable,omitempty"`
}

type BookingFilter struct {
	UserID *uuid.UUID
	Status BookingStatus
}
