package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"ancpricing/internal/domain"
	"ancpricing/internal/pricing"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	DB           DBConfig
	S3           S3Config
	Log          LogConfig
	CORS         CORSConfig
	Pricing      PricingConfig
	Revalidation RevalidationConfig
}

// PricingConfig holds parser and totals settings. These values are passed
// explicitly into the engines.
type PricingConfig struct {
	DisplayPrecision int32  `mapstructure:"display_precision"`
	HeaderScanRows   int    `mapstructure:"header_scan_rows"`
	DefaultCurrency  string `mapstructure:"default_currency"`
	StrictDefault    bool   `mapstructure:"strict_default"`
}

// ParseOptions returns the parser options implied by the config.
func (p *PricingConfig) ParseOptions() pricing.ParseOptions {
	return pricing.ParseOptions{ScanRows: p.HeaderScanRows, DefaultCurrency: p.DefaultCurrency}
}

// DefaultMode returns the validation mode used when a request does not choose one.
func (p *PricingConfig) DefaultMode() domain.ValidationMode {
	if p.StrictDefault {
		return domain.ValidationModeStrict
	}
	return domain.ValidationModeAdvisory
}

// RevalidationConfig holds settings for the worker that re-parses documents
// validated by an older parser version.
type RevalidationConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	PollIntervalSecs int  `mapstructure:"poll_interval_secs"`
	BatchSize        int  `mapstructure:"batch_size"`
	Concurrency      int  `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds settings for the workbook archive bucket.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the PRICING_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PRICING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "pricing")
	v.SetDefault("db.password", "pricing_secret")
	v.SetDefault("db.name", "pricing_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "pricing-workbooks")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 20)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Pricing defaults
	v.SetDefault("pricing.display_precision", 2)
	v.SetDefault("pricing.header_scan_rows", pricing.DefaultScanRows)
	v.SetDefault("pricing.default_currency", "USD")
	v.SetDefault("pricing.strict_default", false)

	// Revalidation worker defaults
	v.SetDefault("revalidation.enabled", true)
	v.SetDefault("revalidation.poll_interval_secs", 60)
	v.SetDefault("revalidation.batch_size", 20)
	v.SetDefault("revalidation.concurrency", 4)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                     "PRICING_SERVER_PORT",
		"server.read_timeout":             "PRICING_SERVER_READ_TIMEOUT",
		"server.write_timeout":            "PRICING_SERVER_WRITE_TIMEOUT",
		"server.environment":              "PRICING_SERVER_ENVIRONMENT",
		"db.host":                         "PRICING_DB_HOST",
		"db.port":                         "PRICING_DB_PORT",
		"db.user":                         "PRICING_DB_USER",
		"db.password":                     "PRICING_DB_PASSWORD",
		"db.name":                         "PRICING_DB_NAME",
		"db.sslmode":                      "PRICING_DB_SSLMODE",
		"db.max_open":                     "PRICING_DB_MAX_OPEN",
		"db.max_idle":                     "PRICING_DB_MAX_IDLE",
		"s3.region":                       "PRICING_S3_REGION",
		"s3.bucket":                       "PRICING_S3_BUCKET",
		"s3.endpoint":                     "PRICING_S3_ENDPOINT",
		"s3.access_key":                   "PRICING_S3_ACCESS_KEY",
		"s3.secret_key":                   "PRICING_S3_SECRET_KEY",
		"s3.max_file_size_mb":             "PRICING_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":               "PRICING_S3_PRESIGN_EXPIRY",
		"log.level":                       "PRICING_LOG_LEVEL",
		"log.format":                      "PRICING_LOG_FORMAT",
		"cors.allowed_origins":            "PRICING_CORS_ALLOWED_ORIGINS",
		"pricing.display_precision":       "PRICING_PRICING_DISPLAY_PRECISION",
		"pricing.header_scan_rows":        "PRICING_PRICING_HEADER_SCAN_ROWS",
		"pricing.default_currency":        "PRICING_PRICING_DEFAULT_CURRENCY",
		"pricing.strict_default":          "PRICING_PRICING_STRICT_DEFAULT",
		"revalidation.enabled":            "PRICING_REVALIDATION_ENABLED",
		"revalidation.poll_interval_secs": "PRICING_REVALIDATION_POLL_INTERVAL_SECS",
		"revalidation.batch_size":         "PRICING_REVALIDATION_BATCH_SIZE",
		"revalidation.concurrency":        "PRICING_REVALIDATION_CONCURRENCY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if PRICING_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PRICING_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Pricing = PricingConfig{
		DisplayPrecision: v.GetInt32("pricing.display_precision"),
		HeaderScanRows:   v.GetInt("pricing.header_scan_rows"),
		DefaultCurrency:  strings.ToUpper(v.GetString("pricing.default_currency")),
		StrictDefault:    v.GetBool("pricing.strict_default"),
	}
	if cfg.Pricing.DisplayPrecision < 0 || cfg.Pricing.DisplayPrecision > 6 {
		return nil, fmt.Errorf("pricing.display_precision must be between 0 and 6, got %d", cfg.Pricing.DisplayPrecision)
	}

	cfg.Revalidation = RevalidationConfig{
		Enabled:          v.GetBool("revalidation.enabled"),
		PollIntervalSecs: v.GetInt("revalidation.poll_interval_secs"),
		BatchSize:        v.GetInt("revalidation.batch_size"),
		Concurrency:      v.GetInt("revalidation.concurrency"),
	}

	return cfg, nil
}
