package service

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/evidence"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory BookingStore and ProfileStore. failOn makes
// the named method fail with errStoreDown.
type memStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]domain.Booking
	members  map[uuid.UUID][]domain.Member
	payments map[uuid.UUID]domain.Payment
	profiles map[uuid.UUID]domain.Profile
	failOn   map[string]bool
	writes   int
}

func newMemStore() *memStore {
	return &memStore{
		bookings: map[uuid.UUID]domain.Booking{},
		members:  map[uuid.UUID][]domain.Member{},
		payments: map[uuid.UUID]domain.Payment{},
		profiles: map[uuid.UUID]domain.Profile{},
		failOn:   map[string]bool{},
	}
}

func (s *memStore) fail(op string) error {
	if s.failOn[op] {
		return errStoreDown
	}
	return nil
}

func (s *memStore) CreateBooking(_ context.Context, b domain.Booking, members []domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateBooking"); err != nil {
		return err
	}
	s.bookings[b.ID] = b
	s.members[b.ID] = append([]domain.Member(nil), members...)
	s.writes++
	return nil
}

func (s *memStore) GetBooking(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetBooking"); err != nil {
		return nil, err
	}
	b, ok := s.bookings[id]
	if !ok {
		return nil, domain.NotFound("booking", id.String())
	}
	return &b, nil
}

func (s *memStore) TransitionBooking(_ context.Context, id uuid.UUID, from, to domain.BookingStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.NotFound("booking", id.String())
	}
	if b.Status != from {
		return domain.ErrConflict
	}
	b.Status = to
	b.UpdatedAt = at
	s.bookings[id] = b
	s.writes++
	return nil
}

func (s *memStore) ListBookings(_ context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Booking
	for _, b := range s.bookings {
		if f.UserID != nil && b.UserID != *f.UserID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) ListMembers(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[uuid.UUID][]domain.Member{}
	for _, id := range ids {
		if m, ok := s.members[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func (s *memStore) CreatePayment(_ context.Context, p domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreatePayment"); err != nil {
		return err
	}
	if _, ok := s.bookings[p.BookingID]; !ok {
		return domain.NotFound("booking", p.BookingID.String())
	}
	s.payments[p.ID] = p
	s.writes++
	return nil
}

func (s *memStore) GetPayment(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, domain.NotFound("payment", id.String())
	}
	return &p, nil
}

func (s *memStore) DecidePayment(_ context.Context, p domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.payments[p.ID]
	if !ok {
		return domain.NotFound("payment", p.ID.String())
	}
	if cur.Status != domain.PaymentPending {
		return domain.ErrConflict
	}
	s.payments[p.ID] = p
	s.writes++
	return nil
}

func (s *memStore) ListPayments(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[uuid.UUID][]domain.Payment{}
	for _, p := range s.payments {
		if want[p.BookingID] {
			out[p.BookingID] = append(out[p.BookingID], p)
		}
	}
	return out, nil
}

func (s *memStore) CountBookingsByStatus(context.Context) (map[domain.BookingStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CountBookingsByStatus"); err != nil {
		return nil, err
	}
	out := map[domain.BookingStatus]int{}
	for _, b := range s.bookings {
		out[b.Status]++
	}
	return out, nil
}

func (s *memStore) SumVerifiedPayments(context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SumVerifiedPayments"); err != nil {
		return 0, err
	}
	var sum float64
	for _, p := range s.payments {
		if p.Status == domain.PaymentVerified {
			sum += p.Amount
		}
	}
	return sum, nil
}

func (s *memStore) GetProfile(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, domain.NotFound("profile", id.String())
	}
	return &p, nil
}

func (s *memStore) UpsertProfile(_ context.Context, p domain.Profile) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	return &p, nil
}

func (s *memStore) GetProfiles(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[uuid.UUID]domain.Profile{}
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *memStore) CountProfiles(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CountProfiles"); err != nil {
		return 0, err
	}
	return len(s.profiles), nil
}

type memCatalog struct {
	mu       sync.Mutex
	packages map[uuid.UUID]domain.Package
	down     bool
}

func newMemCatalog(pkgs ...domain.Package) *memCatalog {
	c := &memCatalog{packages: map[uuid.UUID]domain.Package{}}
	for _, p := range pkgs {
		c.packages[p.ID] = p
	}
	return c
}

func (c *memCatalog) ListActivePackages(ctx context.Context) ([]domain.Package, error) {
	all, _ := c.ListPackages(ctx)
	out := all[:0]
	for _, p := range all {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *memCatalog) ListPackages(context.Context) ([]domain.Package, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Package, 0, len(c.packages))
	for _, p := range c.packages {
		out = append(out, p)
	}
	return out, nil
}

func (c *memCatalog) GetPackage(_ context.Context, id uuid.UUID) (*domain.Package, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.packages[id]
	if !ok {
		return nil, domain.NotFound("package", id.String())
	}
	return &p, nil
}

func (c *memCatalog) SavePackage(_ context.Context, p domain.Package) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packages[p.ID] = p
	return nil
}

func (c *memCatalog) DeletePackage(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.packages[id]; !ok {
		return domain.NotFound("package", id.String())
	}
	delete(c.packages, id)
	return nil
}

func (c *memCatalog) CountPackages(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return 0, errStoreDown
	}
	return len(c.packages), nil
}

type memSettings struct {
	s    *domain.Settings
	down bool
}

func (m *memSettings) GetSettings(context.Context) (*domain.Settings, error) {
	if m.down {
		return nil, errStoreDown
	}
	return m.s, nil
}

func (m *memSettings) SaveSettings(_ context.Context, s domain.Settings) error {
	m.s = &s
	return nil
}

type memEvidence struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemEvidence() *memEvidence {
	return &memEvidence{objects: map[string][]byte{}}
}

func (m *memEvidence) Store(_ context.Context, bookingID uuid.UUID, data []byte, ext string) (evidence.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := evidence.ObjectPath(bookingID, time.Now(), ext)
	m.objects[path] = data
	return evidence.Object{Path: path, URL: "http://files.test/" + path}, nil
}

func (m *memEvidence) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	m.deleted = append(m.deleted, path)
	return nil
}

func (m *memEvidence) Open(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, domain.NotFound("evidence", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type mockAuditor struct {
	mock.Mock
}

func (m *mockAuditor) LogEvent(ctx context.Context, action string, userID uuid.UUID, data map[string]interface{}) error {
	args := m.Called(ctx, action, userID, data)
	return args.Error(0)
}
