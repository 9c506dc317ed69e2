package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("NOTIFY_TRANSPORT", "")
	t.Setenv("CHAT_CONTEXT_TURNS", "")

	cfg := Load()
	if cfg.DBDriver != "mysql" {
		t.Fatalf("expected mysql driver, got %q", cfg.DBDriver)
	}
	if cfg.AdminEmail != "" {
		t.Fatalf("expected no admin email, got %q", cfg.AdminEmail)
	}
	if cfg.NotifyTransport != "smtp" {
		t.Fatalf("expected smtp transport, got %q", cfg.NotifyTransport)
	}
	if cfg.ChatContextTurns != 16 {
		t.Fatalf("expected 16 context turns, got %d", cfg.ChatContextTurns)
	}
	if cfg.SMTPConfigured() {
		t.Fatalf("smtp should not be configured without host")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_DSN", "")
	t.Setenv("ADMIN_EMAIL", "  ops@example.edu ")
	t.Setenv("SMTP_HOST", "smtp.example.edu")
	t.Setenv("SMTP_USER", "bot@example.edu")
	t.Setenv("SMTP_FROM", "")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg := Load()
	if cfg.DBDriver != "sqlite" || cfg.DBDSN != "mindease.db" {
		t.Fatalf("unexpected db config: %q %q", cfg.DBDriver, cfg.DBDSN)
	}
	if cfg.AdminEmail != "ops@example.edu" {
		t.Fatalf("admin email not trimmed: %q", cfg.AdminEmail)
	}
	if cfg.SMTPFrom != "bot@example.edu" || !cfg.SMTPConfigured() {
		t.Fatalf("expected SMTP_FROM to fall back to SMTP_USER, got %q", cfg.SMTPFrom)
	}
	if cfg.JWTTTL != time.Hour {
		t.Fatalf("unexpected ttl: %s", cfg.JWTTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
}
