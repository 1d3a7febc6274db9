package root

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"traitline/internal/storage"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TRAITLINE_DB", filepath.Join(dir, "local.db"))
	t.Setenv("TRAITLINE_REMOTE_DSN", "")
	t.Setenv("TRAITLINE_USER_ID", "")
	t.Setenv("TRAITLINE_CATALOG", "")
	t.Setenv("TRAITLINE_TIMER_HOURS", "6")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("tl %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestOfflineFlow(t *testing.T) {
	setupEnv(t)

	if out := mustRun(t, "profile", "create", "Alpha"); !strings.Contains(out, "Created") {
		t.Fatalf("create output: %q", out)
	}
	if out := mustRun(t, "toggle", "blacksmithing-weapons", "Sword", "Sharpened"); !strings.Contains(out, "researched") {
		t.Fatalf("toggle output: %q", out)
	}
	if out := mustRun(t, "status"); !strings.Contains(out, "Alpha") || !strings.Contains(out, "local") {
		t.Fatalf("status output: %q", out)
	}
	if out := mustRun(t, "grid", "-q", "sharp"); !strings.Contains(out, "Blacksmithing — 1/7 (14%)") {
		t.Fatalf("grid output: %q", out)
	}
	if out := mustRun(t, "search", "Sharp"); !strings.Contains(out, "Sword") || strings.Contains(out, "Infused") {
		t.Fatalf("search output: %q", out)
	}
}

func TestUnknownTraitIsRejected(t *testing.T) {
	setupEnv(t)
	mustRun(t, "profile", "create", "Alpha")

	_, err := run(t, "toggle", "blacksmithing-weapons", "Sword", "Shiny")
	if err == nil || !strings.Contains(err.Error(), "unknown trait") {
		t.Fatalf("err=%v", err)
	}
}

func TestNoProfileHint(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "status")
	if err == nil || !strings.Contains(err.Error(), "profile create") {
		t.Fatalf("err=%v", err)
	}
}

func TestBulkAndTimers(t *testing.T) {
	setupEnv(t)
	mustRun(t, "profile", "create", "Alpha")

	if out := mustRun(t, "bulk", "complete", "blacksmithing", "Sharpened", "Sword", "Axe"); !strings.Contains(out, "2 item(s)") {
		t.Fatalf("bulk output: %q", out)
	}
	if _, err := run(t, "bulk", "complete", "blacksmithing", "Bogus", "Sword"); err == nil || !strings.Contains(err.Error(), "unknown trait") {
		t.Fatalf("bulk with unknown trait: err=%v", err)
	}
	if out := mustRun(t, "bulk", "timer", "woodworking", "Sharpened", "Bow", "Shield", "--hours", "1"); !strings.Contains(out, "1 item(s)") {
		t.Fatalf("bulk timer output: %q", out)
	}
	mustRun(t, "timer", "rm", "woodworking-weapons", "Bow", "Sharpened")
	if _, err := run(t, "bulk", "bank", "blacksmithing"); err == nil {
		t.Fatalf("expected error for empty selection")
	}
	if _, err := run(t, "timer", "set", "blacksmithing-weapons", "Mace", "Powered", "--hours", "500"); err == nil {
		t.Fatalf("expected error for out-of-range hours")
	}
	mustRun(t, "timer", "set", "blacksmithing-weapons", "Mace", "Powered", "--hours", "2")
	if out := mustRun(t, "timer", "list"); !strings.Contains(out, "Mace Powered") {
		t.Fatalf("timer list: %q", out)
	}
	if out := mustRun(t, "timer", "watch", "--count", "1"); !strings.Contains(out, "Mace Powered") {
		t.Fatalf("timer watch: %q", out)
	}
	mustRun(t, "timer", "rm", "blacksmithing-weapons", "Mace", "Powered")
	if out := mustRun(t, "timer", "list"); !strings.Contains(out, "(none)") {
		t.Fatalf("timer list after rm: %q", out)
	}
}

func TestLoginMigratesLocalProgress(t *testing.T) {
	dir := setupEnv(t)
	mustRun(t, "profile", "create", "Alpha")
	mustRun(t, "toggle", "blacksmithing-weapons", "Sword", "Sharpened")

	t.Setenv("TRAITLINE_REMOTE_DSN", "sqlite:"+filepath.Join(dir, "remote.db"))
	mustRun(t, "login", "user-1")

	out := mustRun(t, "status")
	if !strings.Contains(out, "synced as user-1") || !strings.Contains(out, "Alpha") {
		t.Fatalf("status after login: %q", out)
	}

	mustRun(t, "logout")
	if _, err := run(t, "status"); err == nil {
		t.Fatalf("expected no profile after logout (local snapshot was uploaded and discarded)")
	}
}

func TestProfileLifecycle(t *testing.T) {
	setupEnv(t)
	mustRun(t, "profile", "create", "Alpha")
	mustRun(t, "profile", "create", "Beta")
	mustRun(t, "profile", "select", "alpha")
	mustRun(t, "profile", "rename", "Alpha", "Gamma")

	out := mustRun(t, "profile", "list")
	if !strings.Contains(out, "Gamma") || !strings.Contains(out, "Beta") {
		t.Fatalf("list: %q", out)
	}
	if _, err := run(t, "profile", "delete", "Beta"); err == nil {
		t.Fatalf("expected confirmation error")
	}
	mustRun(t, "profile", "delete", "Beta", "--yes")
	if out := mustRun(t, "profile", "theme"); !strings.Contains(out, "light") {
		t.Fatalf("theme: %q", out)
	}
}

func TestPrintTimerSet(t *testing.T) {
	var out bytes.Buffer
	if err := printTimerSet(&out, "Sword", "Sharpened", nil, time.Now()); err == nil || out.Len() != 0 {
		t.Fatalf("nil timer: err=%v out=%q", err, out.String())
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := &storage.ResearchTimer{EndTime: now.Add(90 * time.Minute)}
	if err := printTimerSet(&out, "Sword", "Sharpened", tm, now); err != nil {
		t.Fatalf("printTimerSet: %v", err)
	}
	if !strings.Contains(out.String(), "Sword Sharpened ends") || !strings.Contains(out.String(), "1h 30m 0s") {
		t.Fatalf("output=%q", out.String())
	}
}
