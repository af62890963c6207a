package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Env struct {
	AppAddr string `envconfig:"APP_ADDR" default:":8080"`
	GinMode string `envconfig:"GIN_MODE"`

	APIBaseURL string        `envconfig:"API_BASE_URL" required:"true"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"30s"`

	// DBDSN is optional; without it sessions are kept in memory.
	DBDSN string `envconfig:"DB_DSN"`

	SessionSecret string `envconfig:"SESSION_SECRET"`
	SessionCookie string `envconfig:"SESSION_COOKIE" default:"tb_session"`
	SessionSecure bool   `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
	LoginRoute    string `envconfig:"LOGIN_ROUTE" default:"/login"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`

	PricingTaxRate       float64 `envconfig:"PRICING_TAX_RATE" default:"0"`
	PricingChildDiscount float64 `envconfig:"PRICING_CHILD_DISCOUNT" default:"0.30"`
}

// LoadEnv reads an optional .env file, then the process environment.
func LoadEnv() (Env, error) {
	_ = godotenv.Load()

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, fmt.Errorf("load env: %w", err)
	}
	env.APIBaseURL = strings.TrimRight(strings.TrimSpace(env.APIBaseURL), "/")
	env.GinMode = strings.TrimSpace(env.GinMode)
	if env.PricingTaxRate < 0 || env.PricingTaxRate >= 1 {
		return Env{}, fmt.Errorf("PRICING_TAX_RATE out of range: %v", env.PricingTaxRate)
	}
	if env.PricingChildDiscount < 0 || env.PricingChildDiscount > 1 {
		return Env{}, fmt.Errorf("PRICING_CHILD_DISCOUNT out of range: %v", env.PricingChildDiscount)
	}
	return env, nil
}

// SessionKey decodes SESSION_SECRET into the 32-byte key used to seal stored tokens.
func (e Env) SessionKey() (*[32]byte, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(e.SessionSecret))
	if err != nil {
		return nil, fmt.Errorf("SESSION_SECRET must be hex: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("SESSION_SECRET must decode to 32 bytes, got %d", len(raw))
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}
