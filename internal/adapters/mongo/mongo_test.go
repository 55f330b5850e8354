package mongo

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s", host, port.Port())))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	return client.Database("package_booking_test")
}

func TestMongoAdapters(t *testing.T) {
	db := setupMongo(t)
	logger := observability.NewLogger()
	ctx := context.Background()

	t.Run("catalog", func(t *testing.T) {
		repo := NewCatalogRepository(db, logger)
		now := time.Now().UTC().Truncate(time.Millisecond)

		older := domain.Package{
			ID: uuid.New(), Title: "Alleppey Houseboat", PricePerHead: 4200, IsActive: true,
			AvailableDates: []domain.AvailableDate{{Date: "2026-11-20", SlotsAvailable: 6}},
			Itinerary:      []domain.ItineraryDay{{Day: 1, Title: "Backwaters"}},
			CreatedAt:      now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour),
		}
		newer := domain.Package{ID: uuid.New(), Title: "Munnar Hills", PricePerHead: 5000, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repo.SavePackage(ctx, older))
		require.NoError(t, repo.SavePackage(ctx, newer))

		all, err := repo.ListPackages(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, newer.ID, all[0].ID)

		active, err := repo.ListActivePackages(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, older.ID, active[0].ID)

		got, err := repo.GetPackage(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alleppey Houseboat", got.Title)
		assert.Equal(t, 6, got.AvailableDates[0].SlotsAvailable)
		assert.Equal(t, "Backwaters", got.Itinerary[0].Title)
		assert.NotNil(t, got.Images)

		older.PricePerHead = 4500
		require.NoError(t, repo.SavePackage(ctx, older))
		got, err = repo.GetPackage(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, 4500.0, got.PricePerHead)

		n, err := repo.CountPackages(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		require.NoError(t, repo.DeletePackage(ctx, newer.ID))
		_, err = repo.GetPackage(ctx, newer.ID)
		assert.True(t, domain.IsNotFound(err))
		assert.True(t, domain.IsNotFound(repo.DeletePackage(ctx, newer.ID)))
	})

	t.Run("settings", func(t *testing.T) {
		repo := NewSettingsRepository(db, logger)

		s, err := repo.GetSettings(ctx)
		require.NoError(t, err)
		assert.Nil(t, s)

		require.NoError(t, repo.SaveSettings(ctx, domain.Settings{UPINumber: "tours@okaxis", AdvanceAmountPerHead: 750}))
		require.NoError(t, repo.SaveSettings(ctx, domain.Settings{UPINumber: "tours@okaxis", AdvanceAmountPerHead: 800}))

		s, err = repo.GetSettings(ctx)
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, 800.0, s.AdvanceAmountPerHead)
	})

	t.Run("evidence", func(t *testing.T) {
		store, err := NewEvidenceStore(db, "https://api.example.test/", logger)
		require.NoError(t, err)
		bookingID := uuid.New()

		obj, err := store.Store(ctx, bookingID, []byte("png-bytes"), "png")
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.test/v1/evidence/"+obj.Path, obj.URL)

		rc, err := store.Open(ctx, obj.Path)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "png-bytes", string(data))

		require.NoError(t, store.Delete(ctx, obj.Path))
		_, err = store.Open(ctx, obj.Path)
		assert.True(t, domain.IsNotFound(err))
		require.NoError(t, store.Delete(ctx, obj.Path))
	})

	t.Run("evidence deadlines stay with their call", func(t *testing.T) {
		store, err := NewEvidenceStore(db, "https://api.example.test", logger)
		require.NoError(t, err)

		shortCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		obj, err := store.Store(shortCtx, uuid.New(), []byte("jpeg-bytes"), "jpg")
		cancel()
		require.NoError(t, err)

		expired, cancel := context.WithDeadline(ctx, time.Now().Add(-time.Second))
		defer cancel()
		_, _ = store.Open(expired, obj.Path)

		rc, err := store.Open(ctx, obj.Path)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "jpeg-bytes", string(data))

		obj2, err := store.Store(ctx, uuid.New(), []byte("more"), "png")
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, obj2.Path))
		require.NoError(t, store.Delete(ctx, obj.Path))
	})

	t.Run("audit", func(t *testing.T) {
		audit := NewAuditLogger(db, logger)
		admin := uuid.New()
		eventID := uuid.New()

		require.NoError(t, audit.LogEvent(ctx, "package.created", admin, map[string]interface{}{"title": "Wayanad"}))
		occurred := time.Now().UTC().Add(time.Minute)
		for i := 0; i < 2; i++ {
			require.NoError(t, audit.RecordDomainEvent(ctx, eventID, "booking.confirmed", occurred, map[string]interface{}{"booking_id": "b1"}))
		}

		cur, err := db.Collection("audit_logs").Find(ctx, bson.M{},
			options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
		require.NoError(t, err)
		var entries []AuditLog
		require.NoError(t, cur.All(ctx, &entries))
		require.Len(t, entries, 2)
		assert.Equal(t, "booking.confirmed", entries[0].Action)
		assert.Equal(t, eventID.String(), entries[0].EventID)
		assert.Equal(t, admin.String(), entries[1].UserID)
	})
}
