package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// publicObjectPath is the hosted-storage path prefix of public objects.
const publicObjectPath = "/storage/v1/object/public/"

// Config holds the application configuration.
type Config struct {
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// PublicURL is the origin browsers reach this server at.
	PublicURL string `mapstructure:"PUBLIC_URL"`

	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`

	StorageDriver         string `mapstructure:"STORAGE_DRIVER"`
	StorageBucket         string `mapstructure:"STORAGE_BUCKET"`
	StorageRegion         string `mapstructure:"STORAGE_REGION"`
	StorageEndpoint       string `mapstructure:"STORAGE_ENDPOINT"`
	StorageAccessKey      string `mapstructure:"STORAGE_ACCESS_KEY"`
	StorageSecretKey      string `mapstructure:"STORAGE_SECRET_KEY"`
	StorageForcePathStyle bool   `mapstructure:"STORAGE_FORCE_PATH_STYLE"`
	StorageBaseDir        string `mapstructure:"STORAGE_BASE_DIR"`
	StoragePublicBaseURL  string `mapstructure:"STORAGE_PUBLIC_BASE_URL"`

	MediaMaxCount      int           `mapstructure:"MEDIA_MAX_COUNT"`
	MediaOrphanTTL     time.Duration `mapstructure:"MEDIA_ORPHAN_TTL"`
	MediaSweepSchedule string        `mapstructure:"MEDIA_SWEEP_SCHEDULE"`
	LedgerDriver       string        `mapstructure:"LEDGER_DRIVER"`
	RedisAddr          string        `mapstructure:"REDIS_ADDR"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	LogFile   string `mapstructure:"LOG_FILE"`

	CORSOrigins    string  `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	CartMaxSessions int           `mapstructure:"CART_MAX_SESSIONS"`
	CartIdleTTL     time.Duration `mapstructure:"CART_IDLE_TTL"`
}

var defaults = map[string]any{
	"HTTP_ADDR":                ":8080",
	"PUBLIC_URL":               "",
	"DATABASE_DRIVER":          "postgres",
	"DATABASE_URL":             "",
	"JWT_SECRET":               "",
	"STORAGE_DRIVER":           "file",
	"STORAGE_BUCKET":           "game-media",
	"STORAGE_REGION":           "",
	"STORAGE_ENDPOINT":         "",
	"STORAGE_ACCESS_KEY":       "",
	"STORAGE_SECRET_KEY":       "",
	"STORAGE_FORCE_PATH_STYLE": false,
	"STORAGE_BASE_DIR":         "./data/media",
	"STORAGE_PUBLIC_BASE_URL":  "",
	"MEDIA_MAX_COUNT":          5,
	"MEDIA_ORPHAN_TTL":         "24h",
	"MEDIA_SWEEP_SCHEDULE":     "@every 1h",
	"LEDGER_DRIVER":            "gorm",
	"REDIS_ADDR":               "",
	"LOG_LEVEL":                "info",
	"LOG_FORMAT":               "text",
	"LOG_FILE":                 "",
	"CORS_ORIGINS":             "*",
	"RATE_LIMIT_RPS":           5.0,
	"RATE_LIMIT_BURST":         10,
	"CART_MAX_SESSIONS":        10000,
	"CART_IDLE_TTL":            "24h",
}

// LoadConfig loads the configuration from a .env file and environment variables.
// The .env file is looked up in the given directories, or the working directory.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName(".env")
	v.SetConfigType("env")

	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logrus.Warn(".env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.mediaPublicBase(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MediaPublicBaseURL is the absolute prefix of public media URLs. It is
// STORAGE_PUBLIC_BASE_URL when set, otherwise the public object path under
// PUBLIC_URL (default http://localhost plus the HTTP_ADDR port).
func (c *Config) MediaPublicBaseURL() string {
	base, _ := c.mediaPublicBase()
	return base
}

func (c *Config) mediaPublicBase() (string, error) {
	base := strings.TrimSuffix(strings.TrimSpace(c.StoragePublicBaseURL), "/")
	key := "STORAGE_PUBLIC_BASE_URL"
	if base == "" {
		base = strings.TrimSuffix(c.origin(), "/") + publicObjectPath + c.StorageBucket
		key = "PUBLIC_URL"
	}
	u, err := url.Parse(base)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%s must be an absolute URL, got %q", key, base)
	}
	return base, nil
}

func (c *Config) origin() string {
	if o := strings.TrimSpace(c.PublicURL); o != "" {
		return o
	}
	origin := "http://localhost"
	if _, port, err := net.SplitHostPort(c.HTTPAddr); err == nil && port != "" && port != "80" {
		origin += ":" + port
	}
	return origin
}

// AllowedOrigins splits CORS_ORIGINS into a list.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
