// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full environment schema. Secrets are required; TTLs and
// cookie lifetime carry the historical defaults (7d access, 30d refresh).
type Config struct {
	Environment string `env:"NODE_ENV" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"3000"`

	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiresIn   time.Duration `env:"JWT_EXPIRES_IN" envDefault:"168h"`
	RefreshSecret  string        `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`
	RefreshExpires time.Duration `env:"REFRESH_TOKEN_EXPIRES_IN" envDefault:"720h"`
	CookieMaxAge   time.Duration `env:"COOKIE_MAX_AGE" envDefault:"168h"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY,required,notEmpty"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	InitFeePriceID      string `env:"STRIPE_INIT_FEE_PRICE_ID"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL"`

	FrontendURL string `env:"FRONTEND_URL,required,notEmpty"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Production reports whether cookies should be Secure + SameSite=Strict.
func (c *Config) Production() bool {
	return c.Environment == "production"
}
