// Package config reads the server settings from the environment.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/securecookie"
)

var ErrMissingCookieKey = errors.New("config: COOKIE_KEY is required in prod")

type Config struct {
	Port         string        `validate:"required,numeric"`
	Env          string        `validate:"oneof=dev prod test"`
	LogLevel     slog.Level
	ReadTimeout  time.Duration `validate:"gt=0"`
	WriteTimeout time.Duration `validate:"gte=0"`

	PostgresURI  string
	NATSStoreDir string `validate:"required"`
	CookieKey    []byte `validate:"min=32"`

	LeadsAPIURL string        `validate:"required,url"`
	Flow        string        `validate:"oneof=player classic"`
	SessionIdle time.Duration `validate:"gt=0"`

	AdminUser     string
	AdminPassword string `validate:"required_with=AdminUser"`
}

func (c Config) Prod() bool { return c.Env == "prod" }

// FunnelEnabled reports whether funnel analytics have a database to write to.
func (c Config) FunnelEnabled() bool { return c.PostgresURI != "" }

// AdminEnabled reports whether the funnel report is served.
func (c Config) AdminEnabled() bool {
	return c.FunnelEnabled() && c.AdminUser != "" && c.AdminPassword != ""
}

// Load builds the config from getenv, applying defaults and validating the
// result.
func Load(getenv func(string) string) (Config, error) {
	e := env(getenv)
	cfg := Config{
		Port: e.str("PORT", "8080"),
		Env:  e.str("ENV", "dev"),
		// WriteTimeout stays 0 so the wizard's event stream isn't cut off.
		ReadTimeout:   e.duration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:  e.duration("WRITE_TIMEOUT", 0),
		PostgresURI:   e.str("POSTGRES_URI", ""),
		NATSStoreDir:  e.str("NATS_STORE_DIR", "tmp/js"),
		LeadsAPIURL:   e.str("LEADS_API_URL", "http://localhost:8000"),
		Flow:          e.str("FLOW", "player"),
		SessionIdle:   e.duration("SESSION_IDLE", 2*time.Hour),
		AdminUser:     e.str("ADMIN_USER", ""),
		AdminPassword: e.str("ADMIN_PASSWORD", ""),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(e.str("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}

	switch key := getenv("COOKIE_KEY"); {
	case key != "":
		decoded, err := base64.URLEncoding.DecodeString(key)
		if err != nil {
			return Config{}, fmt.Errorf("config: COOKIE_KEY: %w", err)
		}
		cfg.CookieKey = decoded
	case cfg.Prod():
		return Config{}, ErrMissingCookieKey
	default:
		cfg.CookieKey = securecookie.GenerateRandomKey(32)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

type env func(string) string

func (e env) str(key, def string) string {
	if v := e(key); v != "" {
		return v
	}
	return def
}

func (e env) int(key string, def int) int {
	if v, err := strconv.Atoi(e(key)); err == nil {
		return v
	}
	return def
}

func (e env) duration(key string, def time.Duration) time.Duration {
	v := e(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs := e.int(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}
