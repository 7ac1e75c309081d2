package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable read by the widget.
const EnvPrefix = "catalog"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App    AppConfig
	API    APIConfig
	Cart   CartConfig
	Redis  RedisConfig
	Widget WidgetConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CATALOG_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"CATALOG_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CATALOG_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points the widget at the catalog backend.
type APIConfig struct {
	BaseURL          string        `envconfig:"CATALOG_API_BASE_URL" required:"true"`
	Timeout          time.Duration `envconfig:"CATALOG_API_TIMEOUT" default:"10s"`
	PlaceholderImage string        `envconfig:"CATALOG_API_PLACEHOLDER_IMAGE" default:"https://via.placeholder.com/300x200?text=No+Image"`
}

func (a APIConfig) validate() error {
	trimmed := strings.TrimSpace(a.BaseURL)
	if trimmed == "" {
		return fmt.Errorf("%s_API_BASE_URL is required", strings.ToUpper(EnvPrefix))
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return fmt.Errorf("api base url must be absolute, got %q", a.BaseURL)
	}
	return nil
}

// CartConfig controls the persisted cart blob.
type CartConfig struct {
	StorageKey string        `envconfig:"CATALOG_CART_STORAGE_KEY" default:"perx_cart"`
	TTL        time.Duration `envconfig:"CATALOG_CART_TTL" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CATALOG_REDIS_URL"`
	Address      string        `envconfig:"CATALOG_REDIS_ADDR"`
	Password     string        `envconfig:"CATALOG_REDIS_PASSWORD"`
	DB           int           `envconfig:"CATALOG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CATALOG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CATALOG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CATALOG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CATALOG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CATALOG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// WidgetConfig carries defaults applied when the host omits mount options.
type WidgetConfig struct {
	DefaultRoute string   `envconfig:"CATALOG_WIDGET_DEFAULT_ROUTE" default:"home"`
	Dealers      []string `envconfig:"CATALOG_WIDGET_DEALERS"`
}
