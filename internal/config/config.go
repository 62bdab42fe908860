// Package config resolves settings shared by the sweetshop binaries.
// Values come from the environment, optionally seeded from a .env file;
// command-line flags override them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAddr          = "SWEETSHOP_ADDR"
	EnvAPIURL        = "SWEETSHOP_API_URL"
	EnvAPITimeout    = "SWEETSHOP_API_TIMEOUT"
	EnvDB            = "SWEETSHOP_DB"
	EnvLog           = "SWEETSHOP_LOG"
	EnvDebug         = "SWEETSHOP_DEBUG"
	EnvSecureCookies = "SWEETSHOP_SECURE_COOKIES"
	EnvAdminEmail    = "SWEETSHOP_ADMIN_EMAIL"
)

// Config holds the resolved settings.
type Config struct {
	Addr          string
	APIURL        string
	APITimeout    time.Duration
	DBPath        string
	LogPath       string
	Debug         bool
	SecureCookies bool
	AdminEmail    string
}

// Defaults for a fresh checkout.
var Defaults = Config{
	Addr:       ":8080",
	APIURL:     "http://localhost:3001",
	APITimeout: 15 * time.Second,
	DBPath:     "sweetshop.sqlite3",
	AdminEmail: "admin@sweetshop.local",
}

// LoadDotEnv loads variables from the given files (".env" if none) without
// overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load returns Defaults overridden by the environment.
func Load() (Config, error) {
	c := Defaults
	c.Addr = getEnv(EnvAddr, c.Addr)
	c.APIURL = getEnv(EnvAPIURL, c.APIURL)
	c.DBPath = getEnv(EnvDB, c.DBPath)
	c.LogPath = getEnv(EnvLog, c.LogPath)
	c.AdminEmail = getEnv(EnvAdminEmail, c.AdminEmail)

	var err error
	if c.APITimeout, err = getEnvDuration(EnvAPITimeout, c.APITimeout); err != nil {
		return c, err
	}
	if c.Debug, err = getEnvBool(EnvDebug, c.Debug); err != nil {
		return c, err
	}
	if c.SecureCookies, err = getEnvBool(EnvSecureCookies, c.SecureCookies); err != nil {
		return c, err
	}
	return c, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return fallback, fmt.Errorf("%s: must be positive", key)
	}
	return d, nil
}
