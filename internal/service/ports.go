package service

import (
	"context"
	"io"
	"time"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/evidence"
	"github.com/google/uuid"
)

// BookingStore persists bookings, manifests and payments. Implementations
// must make CreateBooking and CreatePayment all-or-nothing, and return
// domain.ErrConflict from the compare-and-set updates when the stored
// status no longer matches.
type BookingStore interface {
	CreateBooking(ctx context.Context, b domain.Booking, members []domain.Member) error
	GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	TransitionBooking(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus, at time.Time) error
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	ListMembers(ctx context.Context, bookingIDs []uuid.UUID) (map[uuid.UUID][]domain.Member, error)

	CreatePayment(ctx context.Context, p domain.Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	DecidePayment(ctx context.Context, p domain.Payment) error
	ListPayments(ctx context.Context, bookingIDs []uuid.UUID) (map[uuid.UUID][]domain.Payment, error)

	CountBookingsByStatus(ctx context.Context) (map[domain.BookingStatus]int, error)
	SumVerifiedPayments(ctx context.Context) (float64, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	UpsertProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error)
	GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Profile, error)
	CountProfiles(ctx context.Context) (int, error)
}

// Catalog is the package catalog. GetPackage returns a
// *domain.NotFoundError for unknown ids.
type Catalog interface {
	ListActivePackages(ctx context.Context) ([]domain.Package, error)
	ListPackages(ctx context.Context) ([]domain.Package, error)
	GetPackage(ctx context.Context, id uuid.UUID) (*domain.Package, error)
	SavePackage(ctx context.Context, p domain.Package) error
	DeletePackage(ctx context.Context, id uuid.UUID) error
	CountPackages(ctx context.Context) (int, error)
}

// SettingsStore returns nil, nil when no settings have been saved.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*domain.Settings, error)
	SaveSettings(ctx context.Context, s domain.Settings) error
}

type EvidenceStore interface {
	Store(ctx context.Context, bookingID uuid.UUID, data []byte, ext string) (evidence.Object, error)
	Delete(ctx context.Context, path string) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

type Auditor interface {
	LogEvent(ctx context.Context, action string, userID uuid.UUID, data map[string]interface{}) error
}
