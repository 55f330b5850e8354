package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

type countingSettings struct {
	settings *domain.Settings
	reads    int
}

func (c *countingSettings) GetSettings(context.Context) (*domain.Settings, error) {
	c.reads++
	return c.settings, nil
}

func (c *countingSettings) SaveSettings(_ context.Context, s domain.Settings) error {
	c.settings = &s
	return nil
}

type countingCatalog struct {
	pkgs  map[uuid.UUID]domain.Package
	reads int
}

func (c *countingCatalog) ListActivePackages(context.Context) ([]domain.Package, error) {
	c.reads++
	var out []domain.Package
	for _, p := range c.pkgs {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *countingCatalog) ListPackages(ctx context.Context) ([]domain.Package, error) {
	return c.ListActivePackages(ctx)
}

func (c *countingCatalog) GetPackage(_ context.Context, id uuid.UUID) (*domain.Package, error) {
	c.reads++
	p, ok := c.pkgs[id]
	if !ok {
		return nil, domain.NotFound("package", id.String())
	}
	return &p, nil
}

func (c *countingCatalog) SavePackage(_ context.Context, p domain.Package) error {
	c.pkgs[p.ID] = p
	return nil
}

func (c *countingCatalog) DeletePackage(_ context.Context, id uuid.UUID) error {
	delete(c.pkgs, id)
	return nil
}

func (c *countingCatalog) CountPackages(context.Context) (int, error) {
	return len(c.pkgs), nil
}

func TestRedisAdapters(t *testing.T) {
	client := setupRedis(t)
	cache := NewCache(client)
	logger := observability.NewLogger()
	ctx := context.Background()

	t.Run("settings cache", func(t *testing.T) {
		src := &countingSettings{}
		sc := NewSettingsCache(src, cache, time.Minute, logger)

		s, err := sc.GetSettings(ctx)
		require.NoError(t, err)
		assert.Nil(t, s)
		s, err = sc.GetSettings(ctx)
		require.NoError(t, err)
		assert.Nil(t, s)
		assert.Equal(t, 1, src.reads)

		require.NoError(t, sc.SaveSettings(ctx, domain.Settings{UPINumber: "tours@okaxis", AdvanceAmountPerHead: 600}))
		s, err = sc.GetSettings(ctx)
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, 600.0, s.AdvanceAmountPerHead)
		assert.Equal(t, 2, src.reads)
	})

	t.Run("catalog cache", func(t *testing.T) {
		pkg := domain.Package{ID: uuid.New(), Title: "Thekkady", PricePerHead: 3500, IsActive: true}
		src := &countingCatalog{pkgs: map[uuid.UUID]domain.Package{pkg.ID: pkg}}
		cc := NewCatalogCache(src, cache, time.Minute, logger)

		for i := 0; i < 3; i++ {
			got, err := cc.GetPackage(ctx, pkg.ID)
			require.NoError(t, err)
			assert.Equal(t, "Thekkady", got.Title)
		}
		assert.Equal(t, 1, src.reads)

		_, err := cc.GetPackage(ctx, uuid.New())
		assert.True(t, domain.IsNotFound(err))

		list, err := cc.ListActivePackages(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		pkg.IsActive = false
		require.NoError(t, cc.SavePackage(ctx, pkg))
		list, err = cc.ListActivePackages(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
		got, err := cc.GetPackage(ctx, pkg.ID)
		require.NoError(t, err)
		assert.False(t, got.IsActive)
	})

	t.Run("idempotency", func(t *testing.T) {
		idem := NewIdempotency(NewCache(client))
		key := uuid.NewString()

		resp, err := idem.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, resp)

		ok, err := idem.Lock(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = idem.Lock(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, idem.Unlock(ctx, key))

		require.NoError(t, idem.Set(ctx, key, IdempResponse{Status: 201, ContentType: "application/json", Body: []byte(`{"id":"x"}`)}, time.Minute))
		resp, err = idem.Get(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, 201, resp.Status)
		assert.JSONEq(t, `{"id":"x"}`, string(resp.Body))
	})

	t.Run("counter window", func(t *testing.T) {
		key := "rl:test:" + uuid.NewString()
		for i := int64(1); i <= 3; i++ {
			n, err := cache.Incr(ctx, key, time.Minute)
			require.NoError(t, err)
			assert.Equal(t, i, n)
		}
		ttl, err := client.TTL(ctx, key).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})
}
