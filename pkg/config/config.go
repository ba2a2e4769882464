package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"geo_forum"`
	ServerPort  int    `env:"SERVER_PORT"  envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT"   envDefault:"json"`

	DatabaseURL  string `env:"DATABASE_URL,notEmpty"`
	// DBAutoCreate creates the postgres database on startup when missing.
	DBAutoCreate bool   `env:"DB_AUTO_CREATE" envDefault:"false"`

	JWTSecret   string `env:"JWT_SECRET,notEmpty"`
	JWTIssuer   string `env:"JWT_ISSUER,notEmpty"`
	JWTAudience string `env:"JWT_AUDIENCE,notEmpty"`

	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminEmail    string `env:"ADMIN_EMAIL"    envDefault:"admin@admin.com"`
	AdminPassword string `env:"ADMIN_PASSWORD,notEmpty"`

	PasswordMinLength int `env:"PASSWORD_MIN_LENGTH" envDefault:"5"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	ESURL      string `env:"ES_URL"`
	ESUser     string `env:"ES_USER"`
	ESPassword string `env:"ES_PASSWORD"`
	ESIndex    string `env:"ES_INDEX" envDefault:"forum"`
}

// Load reads .env (when present) and the process environment. A missing
// required variable is returned as an error; callers treat it as fatal.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Notice: .env file not loaded: %v. Using system environment variables", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.PasswordMinLength < 1 {
		return Config{}, fmt.Errorf("PASSWORD_MIN_LENGTH must be positive, got %d", cfg.PasswordMinLength)
	}

	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
