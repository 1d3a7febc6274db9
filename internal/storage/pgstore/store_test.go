package pgstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"traitline/internal/storage"
)

// Runs only against a real server: TRAITLINE_TEST_POSTGRES_DSN=postgres://...
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TRAITLINE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TRAITLINE_TEST_POSTGRES_DSN not set")
	}
	s, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestProfileCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := "test-" + uuid.NewString()
	pid := uuid.NewString()

	if err := s.UpsertProfile(ctx, user, storage.Profile{ID: pid, Name: "Alpha", Theme: storage.ThemeDark, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("upsert profile: %v", err)
	}
	k := storage.TraitKey{ProfileID: pid, Section: "blacksmithing-weapons", Item: "Sword", Trait: "Sharpened"}
	for i := 0; i < 2; i++ {
		if err := s.UpsertProgress(ctx, user, storage.TraitProgress{TraitKey: k, Completed: true}); err != nil {
			t.Fatalf("upsert progress: %v", err)
		}
	}
	if err := s.UpsertTimer(ctx, user, storage.ResearchTimer{TraitKey: k, EndTime: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("upsert timer: %v", err)
	}
	progress, err := s.ListProgress(ctx, user)
	if err != nil {
		t.Fatalf("list progress: %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("progress rows=%d, want 1", len(progress))
	}

	if err := s.DeleteProfile(ctx, user, pid); err != nil {
		t.Fatalf("delete profile: %v", err)
	}
	timers, _ := s.ListTimers(ctx, user)
	progress, _ = s.ListProgress(ctx, user)
	profiles, _ := s.ListProfiles(ctx, user)
	if len(timers)+len(progress)+len(profiles) != 0 {
		t.Fatalf("rows survived cascade: timers=%d progress=%d profiles=%d", len(timers), len(progress), len(profiles))
	}
}

func TestForeignUserCannotOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := "test-" + uuid.NewString()
	other := "test-" + uuid.NewString()
	pid := uuid.NewString()
	t.Cleanup(func() { _ = s.DeleteProfile(context.Background(), owner, pid) })

	if err := s.UpsertProfile(ctx, owner, storage.Profile{ID: pid, Name: "Alpha", Theme: storage.ThemeDark, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("upsert profile: %v", err)
	}
	err := s.UpsertProfile(ctx, other, storage.Profile{ID: pid, Name: "hijacked", Theme: storage.ThemeDark, CreatedAt: time.Now()})
	if !errors.Is(err, storage.ErrNotOwned) {
		t.Fatalf("foreign profile upsert err=%v", err)
	}
	k := storage.TraitKey{ProfileID: pid, Section: "blacksmithing-weapons", Item: "Sword", Trait: "Sharpened"}
	if err := s.UpsertProgress(ctx, other, storage.TraitProgress{TraitKey: k, Completed: true}); !errors.Is(err, storage.ErrNotOwned) {
		t.Fatalf("foreign progress upsert err=%v", err)
	}
	profiles, _ := s.ListProfiles(ctx, owner)
	if len(profiles) != 1 || profiles[0].Name != "Alpha" {
		t.Fatalf("owner profiles=%+v", profiles)
	}
	if progress, _ := s.ListProgress(ctx, other); len(progress) != 0 {
		t.Fatalf("foreign user progress=%d", len(progress))
	}
}
