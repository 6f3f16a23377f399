package config

import (
	"errors"
	"os"
)

// Config holds everything the server needs at startup. JWTSecret has no
// default: running without one is a configuration error, not something
// to paper over per request.
type Config struct {
	Addr         string
	DatabasePath string
	JWTSecret    string
	Env          string // "production" enables the Secure cookie flag
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func Load() (Config, error) {
	cfg := Config{
		Addr:         env("FORMLOOP_ADDR", ":8080"),
		DatabasePath: env("FORMLOOP_DB_PATH", "data/formloop.db"),
		JWTSecret:    os.Getenv("FORMLOOP_JWT_SECRET"),
		Env:          env("FORMLOOP_ENV", "development"),
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("FORMLOOP_JWT_SECRET must be set")
	}
	return cfg, nil
}

func (c Config) Production() bool { return c.Env == "production" }
