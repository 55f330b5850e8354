package service

import (
	"context"
	"time"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("service")

type Deps struct {
	Bookings BookingStore
	Profiles ProfileStore
	Catalog  Catalog
	Settings SettingsStore
	Evidence EvidenceStore
	Audit    Auditor
	Logger   observability.Logger
	Payee    string
	Now      func() time.Time
}

// Engine runs the booking lifecycle: pricing, manifests, booking and
// payment status changes, and the admin views over them.
type Engine struct {
	bookings BookingStore
	profiles ProfileStore
	catalog  Catalog
	settings SettingsStore
	evidence EvidenceStore
	audit    Auditor
	logger   observability.Logger
	payee    string
	now      func() time.Time
}

func NewEngine(d Deps) *Engine {
	e := &Engine{
		bookings: d.Bookings,
		profiles: d.Profiles,
		catalog:  d.Catalog,
		settings: d.Settings,
		evidence: d.Evidence,
		audit:    d.Audit,
		logger:   d.Logger,
		payee:    d.Payee,
		now:      d.Now,
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	if e.logger == nil {
		e.logger = observability.NewLogger()
	}
	return e
}

func (e *Engine) log(ctx context.Context) observability.Logger {
	return observability.FromContext(ctx, e.logger)
}

func (e *Engine) startSpan(ctx context.Context, name string, actor domain.Actor) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "Engine."+name)
	span.SetAttributes(
		attribute.String("actor.id", actor.ID.String()),
		attribute.String("actor.role", string(actor.Role)),
	)
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func requireActor(actor domain.Actor) error {
	if actor.ID == uuid.Nil {
		return domain.ErrUnauthenticated
	}
	return nil
}

func requireAdmin(actor domain.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

// storageErr passes domain errors through and wraps anything else as a
// StorageError for op.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsNotFound(err) || domain.IsValidation(err) || domain.IsState(err) ||
		errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrUnauthenticated) {
		return err
	}
	return domain.Storage(op, err)
}

// effectiveSettings falls back to the built-in defaults when settings are
// absent or cannot be read.
func (e *Engine) effectiveSettings(ctx context.Context) domain.Settings {
	s, err := e.settings.GetSettings(ctx)
	if err != nil {
		e.log(ctx).WithError(err).Warn("settings unavailable, using defaults")
		return domain.DefaultSettings()
	}
	return s.Effective()
}

func (e *Engine) auditEvent(ctx context.Context, action string, actor domain.Actor, data map[string]interface{}) {
	if e.audit == nil {
		return
	}
	if err := e.audit.LogEvent(ctx, action, actor.ID, data); err != nil {
		e.log(ctx).WithError(err).WithField("action", action).Warn("audit log write failed")
	}
}
