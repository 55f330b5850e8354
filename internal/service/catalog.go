package service

import (
	"context"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/google/uuid"
)

func (e *Engine) ListActivePackages(ctx context.Context) ([]domain.Package, error) {
	pkgs, err := e.catalog.ListActivePackages(ctx)
	if err != nil {
		return nil, storageErr("list packages", err)
	}
	return pkgs, nil
}

// GetPackage hides inactive packages from everyone but admins.
func (e *Engine) GetPackage(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Package, error) {
	pkg, err := e.catalog.GetPackage(ctx, id)
	if err != nil {
		return nil, storageErr("get package", err)
	}
	if !pkg.IsActive && !actor.IsAdmin() {
		return nil, domain.NotFound("package", id.String())
	}
	return pkg, nil
}

func (e *Engine) ListAllPackages(ctx context.Context, actor domain.Actor) ([]domain.Package, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	pkgs, err := e.catalog.ListPackages(ctx)
	if err != nil {
		return nil, storageErr("list packages", err)
	}
	return pkgs, nil
}

func (e *Engine) CreatePackage(ctx context.Context, actor domain.Actor, p domain.Package) (_ *domain.Package, err error) {
	ctx, span := e.startSpan(ctx, "CreatePackage", actor)
	defer func() { endSpan(span, err) }()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := e.now()
	p.ID = uuid.New()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := e.catalog.SavePackage(ctx, p); err != nil {
		return nil, storageErr("save package", err)
	}
	e.auditEvent(ctx, "package.created", actor, map[string]interface{}{"package_id": p.ID.String(), "title": p.Title})
	return &p, nil
}

// UpdatePackage replaces the whole package record.
func (e *Engine) UpdatePackage(ctx context.Context, actor domain.Actor, id uuid.UUID, p domain.Package) (_ *domain.Package, err error) {
	ctx, span := e.startSpan(ctx, "UpdatePackage", actor)
	defer func() { endSpan(span, err) }()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	existing, err := e.catalog.GetPackage(ctx, id)
	if err != nil {
		return nil, storageErr("get package", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.ID = id
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = e.now()
	if err := e.catalog.SavePackage(ctx, p); err != nil {
		return nil, storageErr("save package", err)
	}
	e.auditEvent(ctx, "package.updated", actor, map[string]interface{}{"package_id": id.String(), "title": p.Title})
	return &p, nil
}

func (e *Engine) DeletePackage(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := e.catalog.DeletePackage(ctx, id); err != nil {
		return storageErr("delete package", err)
	}
	e.auditEvent(ctx, "package.deleted", actor, map[string]interface{}{"package_id": id.String()})
	return nil
}

// PublicSettings is what the contact and payment pages show.
func (e *Engine) PublicSettings(ctx context.Context) domain.Settings {
	return e.effectiveSettings(ctx).Public()
}

func (e *Engine) AdminSettings(ctx context.Context, actor domain.Actor) (*domain.Settings, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	s, err := e.settings.GetSettings(ctx)
	if err != nil {
		return nil, storageErr("get settings", err)
	}
	eff := s.Effective()
	return &eff, nil
}

func (e *Engine) UpdateSettings(ctx context.Context, actor domain.Actor, s domain.Settings) (*domain.Settings, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.UpdatedAt = e.now()
	if err := e.settings.SaveSettings(ctx, s); err != nil {
		return nil, storageErr("save settings", err)
	}
	e.auditEvent(ctx, "settings.updated", actor, map[string]interface{}{
		"upi_number":              s.UPINumber,
		"advance_amount_per_head": s.AdvanceAmountPerHead,
	})
	return &s, nil
}
