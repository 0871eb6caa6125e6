// Package config provides application configuration loading and management.
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

const defaultAdminSecret = "change-me-admin-secret"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`
	ProxyHeader    string `mapstructure:"PROXY_HEADER"`

	DBDriver                 string `mapstructure:"DB_DRIVER"`
	DBPath                   string `mapstructure:"DB_PATH"`
	DBHost                   string `mapstructure:"DB_HOST"`
	DBPort                   string `mapstructure:"DB_PORT"`
	DBUser                   string `mapstructure:"DB_USER"`
	DBPassword               string `mapstructure:"DB_PASSWORD"`
	DBName                   string `mapstructure:"DB_NAME"`
	DBSSLMode                string `mapstructure:"DB_SSLMODE"`
	DBBusyTimeoutMS          int    `mapstructure:"DB_BUSY_TIMEOUT_MS"`
	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	RedisURL string `mapstructure:"REDIS_URL"`

	AdminJWTSecret    string `mapstructure:"ADMIN_JWT_SECRET"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`

	AIEnabled    bool   `mapstructure:"AI_ENABLED"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	UploadDir            string `mapstructure:"UPLOAD_DIR"`
	ImageMaxUploadSizeMB int    `mapstructure:"IMAGE_MAX_UPLOAD_MB"`

	ProfanityRulesFile string `mapstructure:"PROFANITY_RULES_FILE"`
	ProfanityRuleSets  string `mapstructure:"PROFANITY_RULESETS"`

	ReportFlagThreshold  int `mapstructure:"REPORT_FLAG_THRESHOLD"`
	ReportCooldownHours  int `mapstructure:"REPORT_COOLDOWN_HOURS"`
	TrendingViewWeight   int `mapstructure:"TRENDING_VIEW_WEIGHT"`
	TrendingLikeWeight   int `mapstructure:"TRENDING_LIKE_WEIGHT"`
	TrendingLimit        int `mapstructure:"TRENDING_LIMIT"`
	TrendingCacheSeconds int `mapstructure:"TRENDING_CACHE_SECONDS"`

	SeedDemo      bool `mapstructure:"SEED_DEMO"`
	SeedDemoPosts int  `mapstructure:"SEED_DEMO_POSTS"`

	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment overrides from .env")
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "5000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5000")
	// Flags not named here keep featureflags.Defaults.
	viper.SetDefault("FEATURE_FLAGS", "")
	viper.SetDefault("TRUSTED_PROXIES", "")
	viper.SetDefault("PROXY_HEADER", "")

	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_PATH", "blog.db")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postboard")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "postboard")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_BUSY_TIMEOUT_MS", 5000)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)

	viper.SetDefault("REDIS_URL", "localhost:6379")

	viper.SetDefault("ADMIN_JWT_SECRET", defaultAdminSecret)
	viper.SetDefault("ADMIN_PASSWORD_HASH", "")

	viper.SetDefault("AI_ENABLED", false)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "gemma-3-1b-it")

	viper.SetDefault("UPLOAD_DIR", "static/uploads")
	viper.SetDefault("IMAGE_MAX_UPLOAD_MB", 5)

	viper.SetDefault("PROFANITY_RULES_FILE", "")
	viper.SetDefault("PROFANITY_RULESETS", "default")

	viper.SetDefault("REPORT_FLAG_THRESHOLD", 3)
	viper.SetDefault("REPORT_COOLDOWN_HOURS", 30*24)
	viper.SetDefault("TRENDING_VIEW_WEIGHT", 1)
	viper.SetDefault("TRENDING_LIKE_WEIGHT", 5)
	viper.SetDefault("TRENDING_LIMIT", 10)
	viper.SetDefault("TRENDING_CACHE_SECONDS", 15)

	viper.SetDefault("SEED_DEMO", false)
	viper.SetDefault("SEED_DEMO_POSTS", 30)

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
}

func (c *Config) normalize() {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.TracingExporter = strings.ToLower(strings.TrimSpace(c.TracingExporter))
}

// IsProduction reports whether the application runs with a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// ReportCooldown is the window during which a reporter cannot report the same
// target twice. Zero disables the cooldown.
func (c *Config) ReportCooldown() time.Duration {
	return time.Duration(c.ReportCooldownHours) * time.Hour
}

// BusyTimeout is the bounded wait applied to store lock acquisition.
func (c *Config) BusyTimeout() time.Duration {
	return time.Duration(c.DBBusyTimeoutMS) * time.Millisecond
}

// TrendingCacheTTL returns how long trending results may be served from cache.
func (c *Config) TrendingCacheTTL() time.Duration {
	return time.Duration(c.TrendingCacheSeconds) * time.Second
}

// ImageMaxUploadBytes returns the upload size limit in bytes.
func (c *Config) ImageMaxUploadBytes() int64 {
	return int64(c.ImageMaxUploadSizeMB) * 1024 * 1024
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.DBHost == "" || c.DBName == "" {
			return errors.New("DB_HOST and DB_NAME are required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (expected sqlite or postgres)", c.DBDriver)
	}
	if c.DBBusyTimeoutMS <= 0 {
		return errors.New("DB_BUSY_TIMEOUT_MS must be positive")
	}
	if c.DBConnMaxLifetimeMinutes <= 0 {
		return errors.New("DB_CONN_MAX_LIFETIME_MINUTES must be positive")
	}
	if c.ImageMaxUploadSizeMB <= 0 {
		return errors.New("IMAGE_MAX_UPLOAD_MB must be positive")
	}
	if c.ReportFlagThreshold < 1 {
		return errors.New("REPORT_FLAG_THRESHOLD must be at least 1")
	}
	if c.ReportCooldownHours < 0 {
		return errors.New("REPORT_COOLDOWN_HOURS must not be negative")
	}
	if c.TrendingViewWeight < 0 || c.TrendingLikeWeight < 0 {
		return errors.New("trending weights must not be negative")
	}
	if c.TrendingLimit <= 0 {
		return errors.New("TRENDING_LIMIT must be positive")
	}
	if c.AIEnabled && strings.TrimSpace(c.GeminiAPIKey) == "" {
		return errors.New("GEMINI_API_KEY is required when AI_ENABLED is true")
	}
	if c.AdminJWTSecret == "" {
		return errors.New("ADMIN_JWT_SECRET is required")
	}

	// Strict checks for production
	if c.IsProduction() {
		if c.AdminJWTSecret == defaultAdminSecret {
			return errors.New("ADMIN_JWT_SECRET must be changed from the default value in production")
		}
		if len(c.AdminJWTSecret) < 32 {
			return errors.New("ADMIN_JWT_SECRET must be at least 32 characters in production")
		}
		if c.AdminPasswordHash == "" {
			return errors.New("ADMIN_PASSWORD_HASH is required in production")
		}
		if c.DBDriver == "postgres" {
			if c.DBPassword == "password" || c.DBPassword == "" {
				return errors.New("a strong DB_PASSWORD is required in production")
			}
			if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
				return errors.New("DB_SSLMODE must enable TLS in production")
			}
		}
		if c.SeedDemo {
			return errors.New("SEED_DEMO must not be enabled in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.AdminJWTSecret) < 32 {
		log.Println("WARNING: ADMIN_JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
