package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	BotToken   string         `envconfig:"BOT_TOKEN"`
	SessionTTL time.Duration  `envconfig:"SESSION_TTL" default:"24h"`
	Weather    WeatherConfig  `envconfig:"WEATHER"`
	Database   DatabaseConfig `envconfig:"DB"`
}

// WeatherConfig holds weather provider settings
type WeatherConfig struct {
	APIKey   string        `envconfig:"API_KEY"`
	Endpoint string        `envconfig:"ENDPOINT" default:"https://api.openweathermap.org/data/2.5/weather"`
	City     string        `envconfig:"CITY" default:"Жуковский"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"5s"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"5432"`
	Name     string `envconfig:"NAME" default:"zhukbot"`
	User     string `envconfig:"USER" default:"zhukbot"`
	Password string `envconfig:"PASSWORD"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Weather.Timeout <= 0 {
		return nil, fmt.Errorf("WEATHER_TIMEOUT must be positive")
	}

	return &cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
