package redis

import (
	"context"
	"time"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/google/uuid"
)

const (
	settingsKey       = "pkgb:settings"
	activePackagesKey = "pkgb:packages:active"
	packageKeyPrefix  = "pkgb:package:"
)

type SettingsSource interface {
	GetSettings(ctx context.Context) (*domain.Settings, error)
	SaveSettings(ctx context.Context, s domain.Settings) error
}

// SettingsCache is a read-through cache in front of the settings store.
// Cache failures fall through to the store.
type SettingsCache struct {
	next   SettingsSource
	cache  *Cache
	ttl    time.Duration
	logger observability.Logger
}

func NewSettingsCache(next SettingsSource, cache *Cache, ttl time.Duration, logger observability.Logger) *SettingsCache {
	return &SettingsCache{next: next, cache: cache, ttl: ttl, logger: logger}
}

type settingsEntry struct {
	Present  bool            `json:"present"`
	Settings domain.Settings `json:"settings"`
}

func (s *SettingsCache) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var entry settingsEntry
	hit, err := s.cache.GetJSON(ctx, settingsKey, &entry)
	if err != nil {
		s.logger.WithError(err).Warn("settings cache read failed")
	}
	if hit {
		if !entry.Present {
			return nil, nil
		}
		return &entry.Settings, nil
	}

	settings, err := s.next.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	entry = settingsEntry{Present: settings != nil}
	if settings != nil {
		entry.Settings = *settings
	}
	if err := s.cache.SetJSON(ctx, settingsKey, entry, s.ttl); err != nil {
		s.logger.WithError(err).Warn("settings cache write failed")
	}
	return settings, nil
}

func (s *SettingsCache) SaveSettings(ctx context.Context, in domain.Settings) error {
	if err := s.next.SaveSettings(ctx, in); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, settingsKey); err != nil {
		s.logger.WithError(err).Warn("settings cache invalidation failed")
	}
	return nil
}

type CatalogSource interface {
	ListActivePackages(ctx context.Context) ([]domain.Package, error)
	ListPackages(ctx context.Context) ([]domain.Package, error)
	GetPackage(ctx context.Context, id uuid.UUID) (*domain.Package, error)
	SavePackage(ctx context.Context, p domain.Package) error
	DeletePackage(ctx context.Context, id uuid.UUID) error
	CountPackages(ctx context.Context) (int, error)
}

// CatalogCache caches the public listing and single packages. Admin
// listings and counts always hit the store.
type CatalogCache struct {
	next   CatalogSource
	cache  *Cache
	ttl    time.Duration
	logger observability.Logger
}

func NewCatalogCache(next CatalogSource, cache *Cache, ttl time.Duration, logger observability.Logger) *CatalogCache {
	return &CatalogCache{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (c *CatalogCache) ListActivePackages(ctx context.Context) ([]domain.Package, error) {
	var pkgs []domain.Package
	if hit, err := c.cache.GetJSON(ctx, activePackagesKey, &pkgs); err != nil {
		c.logger.WithError(err).Warn("catalog cache read failed")
	} else if hit {
		return pkgs, nil
	}
	pkgs, err := c.next.ListActivePackages(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetJSON(ctx, activePackagesKey, pkgs, c.ttl); err != nil {
		c.logger.WithError(err).Warn("catalog cache write failed")
	}
	return pkgs, nil
}

func (c *CatalogCache) ListPackages(ctx context.Context) ([]domain.Package, error) {
	return c.next.ListPackages(ctx)
}

func (c *CatalogCache) GetPackage(ctx context.Context, id uuid.UUID) (*domain.Package, error) {
	key := packageKeyPrefix + id.String()
	var p domain.Package
	if hit, err := c.cache.GetJSON(ctx, key, &p); err != nil {
		c.logger.WithError(err).Warn("catalog cache read failed")
	} else if hit {
		return &p, nil
	}
	got, err := c.next.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetJSON(ctx, key, got, c.ttl); err != nil {
		c.logger.WithError(err).Warn("catalog cache write failed")
	}
	return got, nil
}

func (c *CatalogCache) SavePackage(ctx context.Context, p domain.Package) error {
	if err := c.next.SavePackage(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, p.ID)
	return nil
}

func (c *CatalogCache) DeletePackage(ctx context.Context, id uuid.UUID) error {
	if err := c.next.DeletePackage(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CatalogCache) CountPackages(ctx context.Context) (int, error) {
	return c.next.CountPackages(ctx)
}

func (c *CatalogCache) invalidate(ctx context.Context, id uuid.UUID) {
	if err := c.cache.Delete(ctx, activePackagesKey, packageKeyPrefix+id.String()); err != nil {
		c.logger.WithError(err).WithField("package_id", id).Warn("catalog cache invalidation failed")
	}
}
