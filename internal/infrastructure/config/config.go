package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Desktop   DesktopConfig
	Catalog   CatalogConfig
	Contact   ContactConfig
	Weather   WeatherConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Host        string   `envconfig:"HOST" default:"0.0.0.0"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// DesktopConfig holds the simulated shell's timings and limits.
type DesktopConfig struct {
	LoginDelay     time.Duration `envconfig:"DESKTOP_LOGIN_DELAY" default:"1500ms"`
	ShutdownDelay  time.Duration `envconfig:"DESKTOP_SHUTDOWN_DELAY" default:"2s"`
	RestartDelay   time.Duration `envconfig:"DESKTOP_RESTART_DELAY" default:"2750ms"`
	CloseDelay     time.Duration `envconfig:"DESKTOP_CLOSE_DELAY" default:"300ms"`
	ViewportWidth  int           `envconfig:"DESKTOP_VIEWPORT_WIDTH" default:"1280"`
	ViewportHeight int           `envconfig:"DESKTOP_VIEWPORT_HEIGHT" default:"800"`
	TopBar         int           `envconfig:"DESKTOP_TOP_BAR" default:"32"`
	IdleTTL        time.Duration `envconfig:"DESKTOP_IDLE_TTL" default:"30m"`
	Max            int           `envconfig:"DESKTOP_MAX" default:"1000"`
	ReapInterval   time.Duration `envconfig:"DESKTOP_REAP_INTERVAL" default:"1m"`
	CalcTimeout    time.Duration `envconfig:"DESKTOP_CALC_TIMEOUT" default:"100ms"`
}

// CatalogConfig selects the app catalog. An empty Dir uses the built-in one.
type CatalogConfig struct {
	Dir   string `envconfig:"CATALOG_DIR"`
	Owner string `envconfig:"OWNER_NAME" default:"guest"`
}

// ContactConfig holds the email relay credentials.
type ContactConfig struct {
	APIKey   string        `envconfig:"CONTACT_API_KEY"`
	Endpoint string        `envconfig:"CONTACT_ENDPOINT" default:"https://api.resend.com/emails"`
	From     string        `envconfig:"CONTACT_FROM" default:"portfolio@example.com"`
	To       string        `envconfig:"CONTACT_TO"`
	Timeout  time.Duration `envconfig:"CONTACT_TIMEOUT" default:"10s"`
}

// WeatherConfig holds the weather widget's API settings.
type WeatherConfig struct {
	APIKey   string        `envconfig:"WEATHER_API_KEY"`
	Endpoint string        `envconfig:"WEATHER_ENDPOINT" default:"https://api.openweathermap.org/data/2.5/weather"`
	City     string        `envconfig:"WEATHER_CITY" default:"Chicago"`
	Interval time.Duration `envconfig:"WEATHER_INTERVAL" default:"10m"`
}

// Load reads the given .env files (".env" when none are named) into the
// environment without overriding variables that are already set, then loads
// configuration from environment variables.
func Load(envFiles ...string) (*Config, error) {
	explicit := len(envFiles) > 0
	if !explicit {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		err := godotenv.Load(file)
		if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
			continue
		}
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Desktop: DesktopConfig{
			LoginDelay:     1500 * time.Millisecond,
			ShutdownDelay:  2 * time.Second,
			RestartDelay:   2750 * time.Millisecond,
			CloseDelay:     300 * time.Millisecond,
			ViewportWidth:  1280,
			ViewportHeight: 800,
			TopBar:         32,
			IdleTTL:        30 * time.Minute,
			Max:            1000,
			ReapInterval:   time.Minute,
			CalcTimeout:    100 * time.Millisecond,
		},
		Catalog: CatalogConfig{
			Owner: "guest",
		},
		Contact: ContactConfig{
			Endpoint: "https://api.resend.com/emails",
			From:     "portfolio@example.com",
			Timeout:  10 * time.Second,
		},
		Weather: WeatherConfig{
			Endpoint: "https://api.openweathermap.org/data/2.5/weather",
			City:     "Chicago",
			Interval: 10 * time.Minute,
		},
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
