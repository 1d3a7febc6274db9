package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"TRAITLINE_WRITE_TIMEOUT", "TRAITLINE_TIMER_HOURS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WriteTimeout != 10*time.Second {
		t.Fatalf("WriteTimeout=%v, want 10s", cfg.WriteTimeout)
	}
	if cfg.TimerHours != 6 {
		t.Fatalf("TimerHours=%v, want 6", cfg.TimerHours)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TRAITLINE_USER_ID=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	// godotenv never overrides variables that are already set.
	os.Unsetenv("TRAITLINE_USER_ID")
	t.Cleanup(func() { os.Unsetenv("TRAITLINE_USER_ID") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UserID != "from-dotenv" {
		t.Fatalf("UserID=%q, want from-dotenv", cfg.UserID)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("TRAITLINE_WRITE_TIMEOUT", "soon")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}

	t.Setenv("TRAITLINE_WRITE_TIMEOUT", "1s")
	t.Setenv("TRAITLINE_TIMER_HOURS", "-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative timer hours")
	}
}
