// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Mail     MailConfig
	PDF      PDFConfig
}

type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
}

// DatabaseConfig holds PostgreSQL connection settings. DATABASE_DSN, when set,
// wins over the individual fields.
type DatabaseConfig struct {
	DSNOverride string `env:"DATABASE_DSN"`
	Host        string `env:"DB_HOST" envDefault:"localhost"`
	Port        int    `env:"DB_PORT" envDefault:"5432"`
	User        string `env:"DB_USER" envDefault:"crm"`
	Password    string `env:"DB_PASSWORD" envDefault:"crm"`
	DBName      string `env:"DB_NAME" envDefault:"crm"`
	SSLMode     string `env:"DB_SSLMODE" envDefault:"disable"`
	Debug       bool   `env:"DB_DEBUG"`
}

type AppConfig struct {
	Env          string `env:"APP_ENV" envDefault:"development"`
	Timezone     string `env:"APP_TIMEZONE" envDefault:"UTC"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	Migrations   bool   `env:"MIGRATIONS"`
	Seed         bool   `env:"DB_SEED"`
	SeedEmail    string `env:"SEED_USER_EMAIL" envDefault:"admin@example.com"`
	SeedPassword string `env:"SEED_USER_PASSWORD" envDefault:"admin123"`
	CompanyName  string `env:"COMPANY_NAME" envDefault:"Mi Empresa"`
	PublicURL    string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
}

type AuthConfig struct {
	SessionSecret string        `env:"SESSION_SECRET"`
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`
}

type RedisConfig struct {
	Addr           string `env:"REDIS_ADDR"`
	Password       string `env:"REDIS_PASSWORD"`
	LeadsPerMinute int    `env:"LEADS_RATE_LIMIT" envDefault:"10"`
}

type MailConfig struct {
	SendGridKey string `env:"SENDGRID_API_KEY"`
	From        string `env:"MAIL_FROM" envDefault:"no-reply@example.com"`
	FromName    string `env:"MAIL_FROM_NAME" envDefault:"CRM"`
}

type PDFConfig struct {
	BrandColor string `env:"PDF_BRAND_COLOR" envDefault:"#1E40AF"`
}

func (c *Config) IsDev() bool { return c.App.Env == "development" }

// Location resolves APP_TIMEZONE, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	if d.DSNOverride != "" {
		return d.DSNOverride
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as required by
// golang-migrate.
func (d DatabaseConfig) URL() string {
	if d.DSNOverride != "" {
		return d.DSNOverride
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Redis.LeadsPerMinute <= 0 {
		cfg.Redis.LeadsPerMinute = 10
	}
	return &cfg, nil
}
