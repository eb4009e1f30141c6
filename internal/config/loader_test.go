package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"ARTCENTER_HTTP_PORT",
			"ARTCENTER_SQLITE_DSN",
			"ARTCENTER_SESSION_TTL",
			"ARTCENTER_SHUTDOWN_TIMEOUT",
			"ARTCENTER_BOOTSTRAP_ADMIN_EMAIL",
			"ARTCENTER_BOOTSTRAP_ADMIN_PASSWORD",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:artcenter.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
		}
		if cfg.ShutdownTimeout != 10*time.Second {
			t.Fatalf("expected default shutdown timeout 10s, got %s", cfg.ShutdownTimeout)
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("ARTCENTER_HTTP_PORT", "9090")
		t.Setenv("ARTCENTER_SQLITE_DSN", "file:/tmp/artcenter.db")
		t.Setenv("ARTCENTER_SESSION_TTL", "12h")
		t.Setenv("ARTCENTER_SHUTDOWN_TIMEOUT", "5s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/artcenter.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.ShutdownTimeout != 5*time.Second {
			t.Fatalf("expected shutdown timeout 5s, got %s", cfg.ShutdownTimeout)
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		t.Setenv("ARTCENTER_HTTP_PORT", "not-a-port")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for malformed port")
		}
	})

	t.Run("requires bootstrap credentials to come as a pair", func(t *testing.T) {
		t.Setenv("ARTCENTER_BOOTSTRAP_ADMIN_EMAIL", "admin@example.com")
		if err := os.Unsetenv("ARTCENTER_BOOTSTRAP_ADMIN_PASSWORD"); err != nil {
			t.Fatalf("failed to unset password: %v", err)
		}

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for email without password")
		}
	})

	t.Run("accepts a full bootstrap pair", func(t *testing.T) {
		t.Setenv("ARTCENTER_BOOTSTRAP_ADMIN_EMAIL", "Admin@Example.com")
		t.Setenv("ARTCENTER_BOOTSTRAP_ADMIN_PASSWORD", "bootstrap-pw")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.BootstrapAdminEmail != "admin@example.com" {
			t.Fatalf("expected lowercased email, got %q", cfg.BootstrapAdminEmail)
		}
		if cfg.BootstrapAdminPassword != "bootstrap-pw" {
			t.Fatalf("unexpected password: %q", cfg.BootstrapAdminPassword)
		}
	})
}
