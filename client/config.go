package client

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the environment-driven client configuration. Variables carry the
// prefix READMILL_, e.g. READMILL_BASE_URL=https://api.readmill.com/v2 .
type Config struct {
	BaseURL string        `envconfig:"BASE_URL" default:"http://localhost:11545"`
	Token   string        `envconfig:"TOKEN"`
	Secret  string        `envconfig:"SECRET"`
	Timeout time.Duration `envconfig:"TIMEOUT"` // opt-in bound per HTTP exchange; unset means none
	Debug   bool          `envconfig:"DEBUG"    default:"false"`
}

// LoadConfig populates Config from environment variables (prefix READMILL_).
func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("READMILL", &c)
}

// Credentials returns the token pair from the configuration.
func (c Config) Credentials() Credentials {
	return Credentials{Token: c.Token, Secret: c.Secret}
}

// Options turns the configuration into client options. Explicit options
// passed to NewFromEnv are applied after these.
func (c Config) Options() []Option {
	opts := []Option{WithDebugLogging(c.Debug)}
	if c.Timeout > 0 {
		opts = append(opts, WithHTTPTimeout(c.Timeout))
	}
	return opts
}

// NewFromEnv builds a Client from READMILL_* environment variables.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg.BaseURL, cfg.Credentials(), append(cfg.Options(), opts...)...)
}
