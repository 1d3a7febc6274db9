package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestRemote(t *testing.T) *SQLRemote {
	t.Helper()
	db, err := OpenRemote(context.Background(), filepath.Join(t.TempDir(), "remote.db"))
	if err != nil {
		t.Fatalf("open remote: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLRemote(db)
}

func mustOwnProfile(t *testing.T, r *SQLRemote, userID, id string) {
	t.Helper()
	p := Profile{ID: id, Name: id, Theme: ThemeDark, CreatedAt: time.Now().UTC()}
	if err := r.UpsertProfile(context.Background(), userID, p); err != nil {
		t.Fatalf("upsert profile %s: %v", id, err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	repo := NewSnapshotRepo(db)

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil snapshot, got %+v", got)
	}

	end := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	st := &AppState{
		Profiles:         []Profile{{ID: "p1", Name: "Alpha", Theme: ThemeDark}},
		CurrentProfileID: "p1",
		TraitProgress:    []TraitProgress{{TraitKey: TraitKey{"p1", "blacksmithing-weapons", "Sword", "Sharpened"}, Completed: true}},
		ResearchTimers:   []ResearchTimer{{TraitKey: TraitKey{"p1", "blacksmithing-weapons", "Axe", "Powered"}, EndTime: end}},
		SearchQuery:      "sharp",
	}
	if err := repo.Save(ctx, st); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.CurrentProfileID != "p1" || len(got.TraitProgress) != 1 || got.TraitProgress[0].Trait != "Sharpened" {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if !got.ResearchTimers[0].EndTime.Equal(end) {
		t.Fatalf("timer end=%v, want %v", got.ResearchTimers[0].EndTime, end)
	}

	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := repo.Load(ctx); got != nil {
		t.Fatalf("snapshot survived delete")
	}
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	repo := NewSettingsRepo(db)

	if err := repo.Set(ctx, SettingUserID, "u1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := repo.Get(ctx, SettingUserID); v != "u1" {
		t.Fatalf("get=%q, want u1", v)
	}
	if err := repo.Set(ctx, SettingUserID, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if v, _ := repo.Get(ctx, SettingUserID); v != "" {
		t.Fatalf("get after clear=%q", v)
	}
}

func TestRemoteUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := newTestRemote(t)
	mustOwnProfile(t, r, "u1", "p1")
	k := TraitKey{"p1", "blacksmithing-weapons", "Sword", "Sharpened"}

	for i := 0; i < 3; i++ {
		if err := r.UpsertProgress(ctx, "u1", TraitProgress{TraitKey: k, Completed: true}); err != nil {
			t.Fatalf("upsert #%d: %v", i, err)
		}
	}
	list, err := r.ListProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("progress rows=%d, want 1", len(list))
	}

	if err := r.DeleteProgress(ctx, "u1", k); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if list, _ := r.ListProgress(ctx, "u1"); len(list) != 0 {
		t.Fatalf("progress rows after delete=%d", len(list))
	}
}

func TestRemoteScopesByUser(t *testing.T) {
	ctx := context.Background()
	r := newTestRemote(t)
	mustOwnProfile(t, r, "u1", "p1")

	if err := r.UpsertNote(ctx, "u1", ItemNote{ItemKey: ItemKey{"p1", "s", "Sword"}, Note: "mine"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	other, err := r.ListNotes(ctx, "u2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("user u2 sees %d notes of u1", len(other))
	}
	// Deleting with the wrong owner must not touch the row.
	if err := r.DeleteNote(ctx, "u2", ItemKey{"p1", "s", "Sword"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mine, _ := r.ListNotes(ctx, "u1"); len(mine) != 1 {
		t.Fatalf("u1 notes=%d, want 1", len(mine))
	}
}

func TestRemoteRejectsWritesToAnotherUsersProfile(t *testing.T) {
	ctx := context.Background()
	r := newTestRemote(t)
	mustOwnProfile(t, r, "u1", "p1")
	tk := TraitKey{"p1", "blacksmithing-weapons", "Sword", "Sharpened"}
	mustNoErr(t, r.UpsertNote(ctx, "u1", ItemNote{ItemKey: tk.ItemKey(), Note: "mine"}))

	err := r.UpsertProfile(ctx, "u2", Profile{ID: "p1", Name: "hijacked", Theme: ThemeLight, CreatedAt: time.Now().UTC()})
	if !errors.Is(err, ErrNotOwned) {
		t.Fatalf("foreign profile upsert err=%v, want ErrNotOwned", err)
	}
	writes := map[string]error{
		"progress": r.UpsertProgress(ctx, "u2", TraitProgress{TraitKey: tk, Completed: true}),
		"note":     r.UpsertNote(ctx, "u2", ItemNote{ItemKey: tk.ItemKey(), Note: "theirs"}),
		"bank":     r.UpsertBank(ctx, "u2", ItemBankStatus{ItemKey: tk.ItemKey(), InBank: true}),
		"timer":    r.UpsertTimer(ctx, "u2", ResearchTimer{TraitKey: tk, EndTime: time.Now().Add(time.Hour)}),
	}
	for name, err := range writes {
		if !errors.Is(err, ErrNotOwned) {
			t.Fatalf("foreign %s upsert err=%v, want ErrNotOwned", name, err)
		}
	}

	profiles, _ := r.ListProfiles(ctx, "u1")
	if len(profiles) != 1 || profiles[0].Name != "p1" || profiles[0].Theme != ThemeDark {
		t.Fatalf("u1 profiles=%+v", profiles)
	}
	notes, _ := r.ListNotes(ctx, "u1")
	if len(notes) != 1 || notes[0].Note != "mine" {
		t.Fatalf("u1 notes=%+v", notes)
	}
	profiles, _ = r.ListProfiles(ctx, "u2")
	progress, _ := r.ListProgress(ctx, "u2")
	theirNotes, _ := r.ListNotes(ctx, "u2")
	bank, _ := r.ListBank(ctx, "u2")
	timers, _ := r.ListTimers(ctx, "u2")
	if len(profiles)+len(progress)+len(theirNotes)+len(bank)+len(timers) != 0 {
		t.Fatalf("u2 rows profiles=%d progress=%d notes=%d bank=%d timers=%d, want 0",
			len(profiles), len(progress), len(theirNotes), len(bank), len(timers))
	}
	// The owner can still write the same key.
	mustNoErr(t, r.UpsertProgress(ctx, "u1", TraitProgress{TraitKey: tk, Completed: true}))
}

func TestRemoteDeleteProfileCascades(t *testing.T) {
	ctx := context.Background()
	r := newTestRemote(t)
	now := time.Now().UTC()

	for _, id := range []string{"p1", "p2"} {
		if err := r.UpsertProfile(ctx, "u1", Profile{ID: id, Name: id, Theme: ThemeDark, CreatedAt: now}); err != nil {
			t.Fatalf("upsert profile: %v", err)
		}
		tk := TraitKey{id, "blacksmithing-weapons", "Sword", "Sharpened"}
		mustNoErr(t, r.UpsertProgress(ctx, "u1", TraitProgress{TraitKey: tk, Completed: true}))
		mustNoErr(t, r.UpsertNote(ctx, "u1", ItemNote{ItemKey: tk.ItemKey(), Note: "n"}))
		mustNoErr(t, r.UpsertBank(ctx, "u1", ItemBankStatus{ItemKey: tk.ItemKey(), InBank: true}))
		mustNoErr(t, r.UpsertTimer(ctx, "u1", ResearchTimer{TraitKey: tk, EndTime: now.Add(time.Hour)}))
	}

	if err := r.DeleteProfile(ctx, "u1", "p1"); err != nil {
		t.Fatalf("delete profile: %v", err)
	}

	profiles, _ := r.ListProfiles(ctx, "u1")
	if len(profiles) != 1 || profiles[0].ID != "p2" {
		t.Fatalf("profiles=%+v", profiles)
	}
	progress, _ := r.ListProgress(ctx, "u1")
	notes, _ := r.ListNotes(ctx, "u1")
	bank, _ := r.ListBank(ctx, "u1")
	timers, _ := r.ListTimers(ctx, "u1")
	if len(progress) != 1 || len(notes) != 1 || len(bank) != 1 || len(timers) != 1 {
		t.Fatalf("rows left progress=%d notes=%d bank=%d timers=%d, want 1 each", len(progress), len(notes), len(bank), len(timers))
	}
	if progress[0].ProfileID != "p2" || timers[0].ProfileID != "p2" {
		t.Fatalf("wrong profile rows survived")
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
