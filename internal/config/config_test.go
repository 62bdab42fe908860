package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{EnvAddr, EnvAPIURL, EnvAPITimeout, EnvDB, EnvLog, EnvDebug, EnvSecureCookies, EnvAdminEmail} {
		t.Setenv(k, "")
	}

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c != Defaults {
		t.Errorf("expected defaults, got %+v", c)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvAddr, ":9000")
	t.Setenv(EnvAPIURL, "https://api.example.com")
	t.Setenv(EnvAPITimeout, "3s")
	t.Setenv(EnvSecureCookies, "true")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr != ":9000" || c.APIURL != "https://api.example.com" {
		t.Errorf("unexpected config: %+v", c)
	}
	if c.APITimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", c.APITimeout)
	}
	if !c.SecureCookies {
		t.Error("expected secure cookies")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv(EnvAPITimeout, "soon")
	if _, err := Load(); err == nil {
		t.Error("expected error for bad duration")
	}

	t.Setenv(EnvAPITimeout, "-1s")
	if _, err := Load(); err == nil {
		t.Error("expected error for negative duration")
	}

	t.Setenv(EnvAPITimeout, "")
	t.Setenv(EnvDebug, "maybe")
	if _, err := Load(); err == nil {
		t.Error("expected error for bad bool")
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvAddr, ":7000")

	path := filepath.Join(t.TempDir(), ".env")
	content := EnvAPIURL + "=http://dotenv:3001\n" + EnvAddr + "=:1234\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// t.Setenv("") leaves the variable set but empty; godotenv only fills unset ones.
	os.Unsetenv(EnvAPIURL)

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.APIURL != "http://dotenv:3001" {
		t.Errorf("expected API URL from .env, got %q", c.APIURL)
	}
	if c.Addr != ":7000" {
		t.Errorf("expected existing env to win, got %q", c.Addr)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("expected missing file to be ignored, got %v", err)
	}
}
