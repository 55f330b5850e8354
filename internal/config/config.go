package config

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

type Config struct {
	CRDBDSN          string
	MongoURI         string
	MongoDB          string
	RedisAddr        string
	RabbitURL        string
	JWTSecret        string
	OTLPEndpoint     string
	HTTPAddr         string
	PublicBaseURL    string
	PayeeName        string
	AuditQueue       string
	LogLevel         string
	SettingsCacheTTL time.Duration
	IdempotencyTTL   time.Duration
	OutboxInterval   time.Duration
}

// Load reads the environment, after applying a .env file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		CRDBDSN:       os.Getenv("CRDB_DSN"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDB:       getenv("MONGO_DB", "package_booking"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RabbitURL:     os.Getenv("RABBIT_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		PublicBaseURL: strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		PayeeName:     getenv("PAYEE_NAME", "Kerala Tours"),
		AuditQueue:    getenv("AUDIT_QUEUE", "package-booking.audit.q"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.SettingsCacheTTL, err = duration("SETTINGS_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.IdempotencyTTL, err = duration("IDEMPOTENCY_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.OutboxInterval, err = duration("OUTBOX_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Require fails when any of the named environment settings is empty.
func (c *Config) Require(keys ...string) error {
	values := map[string]string{
		"CRDB_DSN":   c.CRDBDSN,
		"MONGO_URI":  c.MongoURI,
		"REDIS_ADDR": c.RedisAddr,
		"RABBIT_URL": c.RabbitURL,
		"JWT_SECRET": c.JWTSecret,
	}
	var missing []string
	for _, k := range keys {
		if values[k] == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.Newf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	if d <= 0 {
		return 0, errors.Newf("%s must be positive", key)
	}
	return d, nil
}
