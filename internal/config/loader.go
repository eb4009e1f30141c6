package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the art center service.
type Config struct {
	HTTPPort   int
	SQLiteDSN  string
	SessionTTL time.Duration

	// BootstrapAdminEmail and BootstrapAdminPassword seed an administrator
	// account on first start so a fresh database is usable. Both must be
	// set together.
	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	ShutdownTimeout time.Duration
}

// Load parses configuration values from the current process environment.
//
// A .env file in the working directory is applied first when present;
// real environment variables win over it. Optional fields fall back to
// defaults while invalid values are collected and reported together.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:artcenter.db?_foreign_keys=on",
		SessionTTL:      24 * time.Hour,
		ShutdownTimeout: 10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ARTCENTER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ARTCENTER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ARTCENTER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("ARTCENTER_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ARTCENTER_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("ARTCENTER_SHUTDOWN_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "ARTCENTER_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	cfg.BootstrapAdminEmail = strings.TrimSpace(strings.ToLower(os.Getenv("ARTCENTER_BOOTSTRAP_ADMIN_EMAIL")))
	cfg.BootstrapAdminPassword = os.Getenv("ARTCENTER_BOOTSTRAP_ADMIN_PASSWORD")
	if (cfg.BootstrapAdminEmail == "") != (cfg.BootstrapAdminPassword == "") {
		invalid = append(invalid, "ARTCENTER_BOOTSTRAP_ADMIN_EMAIL and ARTCENTER_BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
