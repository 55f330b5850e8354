package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/evidence"
	"github.com/adhilsalahh/package-booking/internal/service"
	"github.com/adhilsalahh/package-booking/internal/upi"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Service is the application surface the handlers drive.
type Service interface {
	ListActivePackages(ctx context.Context) ([]domain.Package, error)
	GetPackage(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Package, error)
	PublicSettings(ctx context.Context) domain.Settings

	GetProfile(ctx context.Context, actor domain.Actor) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, username, phone string) (*domain.Profile, error)

	CreateBooking(ctx context.Context, actor domain.Actor, req domain.BookingRequest) (*domain.BookingDetail, error)
	ListMyBookings(ctx context.Context, actor domain.Actor) ([]domain.BookingDetail, error)
	GetBooking(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.BookingDetail, error)
	CancelBooking(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Booking, error)

	PaymentInstructions(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, paymentType string) (*upi.Instructions, error)
	PaymentQRCode(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, paymentType string, size int) ([]byte, error)
	SubmitPayment(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, in service.PaymentSubmission) (*domain.Payment, error)
	OpenEvidence(ctx context.Context, actor domain.Actor, path string) (io.ReadCloser, error)

	Dashboard(ctx context.Context, actor domain.Actor) (*domain.Dashboard, error)
	ListBookings(ctx context.Context, actor domain.Actor, status string) ([]domain.BookingDetail, error)
	ConfirmBooking(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Booking, error)
	VerifyPayment(ctx context.Context, actor domain.Actor, paymentID uuid.UUID, decision string) (*domain.Payment, error)
	ListAllPackages(ctx context.Context, actor domain.Actor) ([]domain.Package, error)
	CreatePackage(ctx context.Context, actor domain.Actor, p domain.Package) (*domain.Package, error)
	UpdatePackage(ctx context.Context, actor domain.Actor, id uuid.UUID, p domain.Package) (*domain.Package, error)
	DeletePackage(ctx context.Context, actor domain.Actor, id uuid.UUID) error
	AdminSettings(ctx context.Context, actor domain.Actor) (*domain.Settings, error)
	UpdateSettings(ctx context.Context, actor domain.Actor, s domain.Settings) (*domain.Settings, error)
}

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type Handlers struct {
	svc    Service
	checks map[string]Check
}

func NewHandlers(svc Service, checks map[string]Check) *Handlers {
	return &Handlers{svc: svc, checks: checks}
}

const maxUploadBytes = evidence.MaxBytes + 1<<20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		badRequest(w, "body", "invalid JSON")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "id", "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handlers) ListPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.svc.ListActivePackages(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pkgs)
}

func (h *Handlers) GetPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	pkg, err := h.svc.GetPackage(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.PublicSettings(r.Context()))
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProfile(r.Context(), ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Phone    string `json:"phone"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.UpdateProfile(r.Context(), ActorFromContext(r.Context()), req.Username, req.Phone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.CreateBooking(r.Context(), ActorFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handlers) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListMyBookings(r.Context(), ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := h.svc.GetBooking(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := h.svc.CancelBooking(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) PaymentInstructions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, err := h.svc.PaymentInstructions(r.Context(), ActorFromContext(r.Context()), id, r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (h *Handlers) PaymentQRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	size := upi.DefaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > 1024 {
			badRequest(w, "size", "must be between 64 and 1024")
			return
		}
		size = n
	}
	png, err := h.svc.PaymentQRCode(r.Context(), ActorFromContext(r.Context()), id, r.URL.Query().Get("type"), size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// SubmitPayment takes a multipart form with payment_type, utr_id and the
// screenshot file.
func (h *Handlers) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequest(w, "body", "invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	in := service.PaymentSubmission{
		PaymentType: r.FormValue("payment_type"),
		UTRID:       r.FormValue("utr_id"),
	}
	file, header, err := r.FormFile("screenshot")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, evidence.MaxBytes+1))
		if err != nil {
			badRequest(w, "screenshot", "unreadable upload")
			return
		}
		if len(data) > evidence.MaxBytes {
			badRequest(w, "screenshot", "file too large")
			return
		}
		in.Filename = header.Filename
		in.Screenshot = data
	case err != http.ErrMissingFile:
		badRequest(w, "screenshot", "unreadable upload")
		return
	}

	p, err := h.svc.SubmitPayment(r.Context(), ActorFromContext(r.Context()), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handlers) GetEvidence(w http.ResponseWriter, r *http.Request) {
	rc, err := h.svc.OpenEvidence(r.Context(), ActorFromContext(r.Context()), chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, evidence.MaxBytes+1))
	if err != nil {
		writeError(w, r, domain.Storage("read screenshot", err))
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Readyz runs every dependency check concurrently.
func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	errs := make([]error, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			errs[i] = h.checks[name](ctx)
			return nil
		})
	}
	_ = g.Wait()

	status := http.StatusOK
	for i, name := range names {
		if errs[i] != nil {
			results[name] = errs[i].Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	writeJSON(w, status, results)
}
