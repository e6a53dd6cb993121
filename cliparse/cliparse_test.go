package cliparse

import (
	"testing"
	"time"
)

func TestParseFlagsDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "DATABASE_TYPE", "SESSION_TTL"} {
		t.Setenv(key, "")
	}

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if cfg.Port != 5000 {
		t.Errorf("Expected default port 5000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("Expected default database type sqlite, got %q", cfg.DatabaseType)
	}
	if cfg.DatabaseURL != "meet_vote.db" {
		t.Errorf("Expected default sqlite file, got %q", cfg.DatabaseURL)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("Expected default session TTL 24h, got %v", cfg.SessionTTL)
	}
}

func TestParseFlagsExplicit(t *testing.T) {
	cfg, err := ParseFlags([]string{
		"-p", "8080",
		"-t", "postgres",
		"-d", "postgres://localhost/meetvote",
		"-session-ttl", "2h",
		"-seed",
	})
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("Expected postgres, got %q", cfg.DatabaseType)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("Expected session TTL 2h, got %v", cfg.SessionTTL)
	}
	if !cfg.Seed {
		t.Error("Expected seed flag to be set")
	}
}

func TestParseFlagsPostgresRequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := ParseFlags([]string{"-t", "postgres"}); err == nil {
		t.Error("Expected error when postgres has no database URL")
	}
}

func TestParseFlagsRejectsUnknownBackend(t *testing.T) {
	if _, err := ParseFlags([]string{"-t", "mongodb"}); err == nil {
		t.Error("Expected error for unknown database type")
	}
}

func TestParseFlagsEnvFallback(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("DATABASE_URL", "custom.db")

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if cfg.Port != 9999 {
		t.Errorf("Expected port 9999 from env, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "custom.db" {
		t.Errorf("Expected custom.db from env, got %q", cfg.DatabaseURL)
	}
}
