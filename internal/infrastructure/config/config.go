package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR, default=127.0.0.1:8090" validate:"required"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	LogPretty  bool   `env:"LOG_PRETTY,  default=false"`

	CartMode    string `env:"CART_MODE,    default=server" validate:"oneof=local server"`
	CatalogMode string `env:"CATALOG_MODE, default=local"  validate:"oneof=local server"`

	API        APIConfig
	Store      StoreConfig
	LocalAdmin LocalAdminConfig
}

type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:5000/api" validate:"required,url"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=10s"                       validate:"gt=0"`
}

type StoreConfig struct {
	Backend    string `env:"STORE_BACKEND, default=sqlite" validate:"oneof=memory sqlite redis mongo"`
	SQLitePath string `env:"SQLITE_PATH,   default=storefront.db"`

	RedisAddr   string `env:"REDIS_ADDR,   default=localhost:6379"`
	RedisDB     int    `env:"REDIS_DB,     default=0"`
	RedisPrefix string `env:"REDIS_PREFIX, default=storefront:"`

	MongoURI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DB,  default=storefront"`
}

// LocalAdminConfig enables the offline admin sign-in when PasswordHash and
// TokenSecret are both set.
type LocalAdminConfig struct {
	Username     string        `env:"LOCAL_ADMIN_USER,          default=admin"`
	PasswordHash string        `env:"LOCAL_ADMIN_PASSWORD_HASH"`
	TokenSecret  string        `env:"LOCAL_TOKEN_SECRET"`
	TokenTTL     time.Duration `env:"LOCAL_TOKEN_TTL,           default=12h"`
}

// Enabled reports whether local admin sign-in is configured.
func (c LocalAdminConfig) Enabled() bool {
	return c.PasswordHash != "" && c.TokenSecret != ""
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return &cfg, nil
}
