package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Gateway modes of the terminal.
const (
	GatewayFixture = "fixture"
	GatewayHTTP    = "http"
)

// Session stores of the terminal.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Env          string `env:"ENV,           default=development"`
	LogLevel     string `env:"LOG_LEVEL,     default=info"`
	LogPretty    bool   `env:"LOG_PRETTY,    default=false"`
	SeedFixtures bool   `env:"SEED_FIXTURES, default=false"`

	Server  ServerConfig
	JWT     JWTConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Gateway GatewayConfig
	Session SessionConfig
}

type ServerConfig struct {
	APIPort         string        `env:"API_PORT,         default=8080"`
	WebPort         string        `env:"WEB_PORT,         default=3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
	AuditWorkers    int           `env:"AUDIT_WORKERS,    default=4"`
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL,  default=15m"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL, default=24h"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=carddemo"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,  default=5s"`
}

// GatewayConfig selects how the terminal reaches the REST API.
type GatewayConfig struct {
	Mode    string        `env:"GATEWAY_MODE,    default=fixture"`
	BaseURL string        `env:"API_BASE_URL,    default=http://localhost:8080"`
	Timeout time.Duration `env:"GATEWAY_TIMEOUT, default=10s"`
}

// SessionConfig controls the terminal's browser sessions.
type SessionConfig struct {
	Store         string        `env:"SESSION_STORE,          default=memory"`
	TTL           time.Duration `env:"SESSION_TTL,            default=8h"`
	CookieName    string        `env:"SESSION_COOKIE,         default=carddemo_sid"`
	CookieSecure  bool          `env:"SESSION_COOKIE_SECURE,  default=false"`
	RefreshWithin time.Duration `env:"SESSION_REFRESH_WITHIN, default=30s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Gateway.Mode != GatewayFixture && cfg.Gateway.Mode != GatewayHTTP {
		return nil, fmt.Errorf("config: GATEWAY_MODE must be %q or %q, got %q", GatewayFixture, GatewayHTTP, cfg.Gateway.Mode)
	}
	if cfg.Session.Store != SessionStoreMemory && cfg.Session.Store != SessionStoreRedis {
		return nil, fmt.Errorf("config: SESSION_STORE must be %q or %q, got %q", SessionStoreMemory, SessionStoreRedis, cfg.Session.Store)
	}
	return &cfg, nil
}

// MustLoad is Load for main packages; it panics on error.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}
