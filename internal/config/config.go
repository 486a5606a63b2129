package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr          string        `mapstructure:"http_addr"`
	IdentityGRPCAddr  string        `mapstructure:"identity_grpc_addr"`
	IdentitySvcAddr   string        `mapstructure:"identity_service_addr"`
	PostgresDSN       string        `mapstructure:"postgres_dsn"`
	APIKey            string        `mapstructure:"storefront_api_key"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	CatalogCacheTTL   time.Duration `mapstructure:"catalog_cache_ttl"`
	OrderStatusPolicy string        `mapstructure:"order_status_policy"`
	CORSOrigins       []string      `mapstructure:"-"`
}

var keys = map[string]any{
	"http_addr":             ":8080",
	"identity_grpc_addr":    ":50051",
	"identity_service_addr": "",
	"postgres_dsn":          "",
	"storefront_api_key":    "",
	"jwt_secret":            "",
	"session_ttl":           72 * time.Hour,
	"catalog_cache_ttl":     5 * time.Minute,
	"order_status_policy":   "permissive",
	"cors_origins":          "*",
}

// Load reads .env (if present), then config.yaml and the environment.
// Environment variables use the upper-case key names, e.g. POSTGRES_DSN.
func Load() (Config, error) {
	_ = godotenv.Load() // load .env if it exists

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./deploy/")
	v.AddConfigPath("./")
	for k, def := range keys {
		v.SetDefault(k, def)
		// AutomaticEnv only applies to keys viper already knows about
		_ = v.BindEnv(k, strings.ToUpper(k))
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetString("cors_origins"))

	log.Printf("[config] HTTP_ADDR=%s", cfg.HTTPAddr)
	log.Printf("[config] IDENTITY_GRPC_ADDR=%s", cfg.IdentityGRPCAddr)
	if cfg.IdentitySvcAddr != "" {
		log.Printf("[config] IDENTITY_SERVICE_ADDR=%s", cfg.IdentitySvcAddr)
	}
	log.Printf("[config] ORDER_STATUS_POLICY=%s", cfg.OrderStatusPolicy)
	return cfg, nil
}

// Validate reports the settings the service cannot start without.
func (c Config) Validate() error {
	var missing []string
	if c.PostgresDSN == "" {
		missing = append(missing, "POSTGRES_DSN")
	}
	if c.APIKey == "" {
		missing = append(missing, "STOREFRONT_API_KEY")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	switch c.OrderStatusPolicy {
	case "permissive", "strict":
	default:
		return fmt.Errorf("invalid ORDER_STATUS_POLICY %q (want permissive or strict)", c.OrderStatusPolicy)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
