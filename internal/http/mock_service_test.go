package http

import (
	"context"
	"io"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/service"
	"github.com/adhilsalahh/package-booking/internal/upi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) ListActivePackages(ctx context.Context) ([]domain.Package, error) {
	args := m.Called(ctx)
	pkgs, _ := args.Get(0).([]domain.Package)
	return pkgs, args.Error(1)
}

func (m *mockService) GetPackage(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Package, error) {
	args := m.Called(ctx, actor, id)
	p, _ := args.Get(0).(*domain.Package)
	return p, args.Error(1)
}

func (m *mockService) PublicSettings(ctx context.Context) domain.Settings {
	return m.Called(ctx).Get(0).(domain.Settings)
}

func (m *mockService) GetProfile(ctx context.Context, actor domain.Actor) (*domain.Profile, error) {
	args := m.Called(ctx, actor)
	p, _ := args.Get(0).(*domain.Profile)
	return p, args.Error(1)
}

func (m *mockService) UpdateProfile(ctx context.Context, actor domain.Actor, username, phone string) (*domain.Profile, error) {
	args := m.Called(ctx, actor, username, phone)
	p, _ := args.Get(0).(*domain.Profile)
	return p, args.Error(1)
}

func (m *mockService) CreateBooking(ctx context.Context, actor domain.Actor, req domain.BookingRequest) (*domain.BookingDetail, error) {
	args := m.Called(ctx, actor, req)
	d, _ := args.Get(0).(*domain.BookingDetail)
	return d, args.Error(1)
}

func (m *mockService) ListMyBookings(ctx context.Context, actor domain.Actor) ([]domain.BookingDetail, error) {
	args := m.Called(ctx, actor)
	list, _ := args.Get(0).([]domain.BookingDetail)
	return list, args.Error(1)
}

func (m *mockService) GetBooking(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.BookingDetail, error) {
	args := m.Called(ctx, actor, id)
	d, _ := args.Get(0).(*domain.BookingDetail)
	return d, args.Error(1)
}

func (m *mockService) CancelBooking(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, actor, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *mockService) PaymentInstructions(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, paymentType string) (*upi.Instructions, error) {
	args := m.Called(ctx, actor, bookingID, paymentType)
	in, _ := args.Get(0).(*upi.Instructions)
	return in, args.Error(1)
}

func (m *mockService) PaymentQRCode(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, paymentType string, size int) ([]byte, error) {
	args := m.Called(ctx, actor, bookingID, paymentType, size)
	png, _ := args.Get(0).([]byte)
	return png, args.Error(1)
}

func (m *mockService) SubmitPayment(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, in service.PaymentSubmission) (*domain.Payment, error) {
	args := m.Called(ctx, actor, bookingID, in)
	p, _ := args.Get(0).(*domain.Payment)
	return p, args.Error(1)
}

func (m *mockService) OpenEvidence(ctx context.Context, actor domain.Actor, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, actor, path)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *mockService) Dashboard(ctx context.Context, actor domain.Actor) (*domain.Dashboard, error) {
	args := m.Called(ctx, actor)
	d, _ := args.Get(0).(*domain.Dashboard)
	return d, args.Error(1)
}

func (m *mockService) ListBookings(ctx context.Context, actor domain.Actor, status string) ([]domain.BookingDetail, error) {
	args := m.Called(ctx, actor, status)
	list, _ := args.Get(0).([]domain.BookingDetail)
	return list, args.Error(1)
}

func (m *mockService) ConfirmBooking(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, actor, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *mockService) VerifyPayment(ctx context.Context, actor domain.Actor, paymentID uuid.UUID, decision string) (*domain.Payment, error) {
	args := m.Called(ctx, actor, paymentID, decision)
	p, _ := args.Get(0).(*domain.Payment)
	return p, args.Error(1)
}

func (m *mockService) ListAllPackages(ctx context.Context, actor domain.Actor) ([]domain.Package, error) {
	args := m.Called(ctx, actor)
	pkgs, _ := args.Get(0).([]domain.Package)
	return pkgs, args.Error(1)
}

func (m *mockService) CreatePackage(ctx context.Context, actor domain.Actor, p domain.Package) (*domain.Package, error) {
	args := m.Called(ctx, actor, p)
	out, _ := args.Get(0).(*domain.Package)
	return out, args.Error(1)
}

func (m *mockService) UpdatePackage(ctx context.Context, actor domain.Actor, id uuid.UUID, p domain.Package) (*domain.Package, error) {
	args := m.Called(ctx, actor, id, p)
	out, _ := args.Get(0).(*domain.Package)
	return out, args.Error(1)
}

func (m *mockService) DeletePackage(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockService) AdminSettings(ctx context.Context, actor domain.Actor) (*domain.Settings, error) {
	args := m.Called(ctx, actor)
	s, _ := args.Get(0).(*domain.Settings)
	return s, args.Error(1)
}

func (m *mockService) UpdateSettings(ctx context.Context, actor domain.Actor, s domain.Settings) (*domain.Settings, error) {
	args := m.Called(ctx, actor, s)
	out, _ := args.Get(0).(*domain.Settings)
	return out, args.Error(1)
}
