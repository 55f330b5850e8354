package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adhilsalahh/package-booking/internal/adapters/crdb"
	mongoadapter "github.com/adhilsalahh/package-booking/internal/adapters/mongo"
	redisadapter "github.com/adhilsalahh/package-booking/internal/adapters/redis"
	"github.com/adhilsalahh/package-booking/internal/config"
	httphandler "github.com/adhilsalahh/package-booking/internal/http"
	"github.com/adhilsalahh/package-booking/internal/idempotency"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/adhilsalahh/package-booking/internal/rateLimit"
	"github.com/adhilsalahh/package-booking/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Require("CRDB_DSN", "MONGO_URI", "REDIS_ADDR", "JWT_SECRET"); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	shutdownOtel, err := observability.SetupOTel(ctx, cfg, "package-booking-api")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger, err := observability.NewServiceLogger("package-booking-api", cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("unknown LOG_LEVEL, using info")
	}

	pool, err := pgxpool.New(ctx, cfg.CRDBDSN)
	if err != nil {
		log.Fatalf("failed to connect to crdb: %v", err)
	}
	defer pool.Close()
	repo := crdb.NewRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate crdb: %v", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	mongoDB := mongoClient.Database(cfg.MongoDB)
	evidenceStore, err := mongoadapter.NewEvidenceStore(mongoDB, cfg.PublicBaseURL, logger)
	if err != nil {
		log.Fatalf("failed to open evidence bucket: %v", err)
	}

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	cache := redisadapter.NewCache(redisClient)
	catalog := redisadapter.NewCatalogCache(mongoadapter.NewCatalogRepository(mongoDB, logger), cache, cfg.SettingsCacheTTL, logger)
	settings := redisadapter.NewSettingsCache(mongoadapter.NewSettingsRepository(mongoDB, logger), cache, cfg.SettingsCacheTTL, logger)
	idemp := idempotency.NewIdempotency(redisadapter.NewIdempotency(cache), cfg.IdempotencyTTL)
	rl := rateLimit.NewRateLimiter(cache, logger)

	engine := service.NewEngine(service.Deps{
		Bookings: repo,
		Profiles: repo,
		Catalog:  catalog,
		Settings: settings,
		Evidence: evidenceStore,
		Audit:    mongoadapter.NewAuditLogger(mongoDB, logger),
		Logger:   logger,
		Payee:    cfg.PayeeName,
	})

	handlers := httphandler.NewHandlers(engine, map[string]httphandler.Check{
		"crdb":  repo.Ping,
		"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	})

	r := httphandler.SetupRouter(httphandler.RouterDeps{
		Handlers:    handlers,
		Auth:        httphandler.NewAuthenticator(cfg.JWTSecret),
		Logger:      logger,
		RateLimiter: rl,
		Idempotency: idemp,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down api")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown")
	}
	logger.Info("api exited")
}
