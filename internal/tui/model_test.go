package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"traitline/internal/engine"
	"traitline/internal/storage"
)

func newTestBoard(t *testing.T) (boardModel, *engine.Service) {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "board.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	svc := engine.NewService(db, engine.Options{})
	if _, err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := svc.CreateProfile(ctx, "Alpha"); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return newBoardModel(ctx, svc, 6), svc
}

// press feeds a key and runs the resulting command, if any, back through
// Update the way the program loop would.
func press(t *testing.T, m boardModel, key tea.KeyMsg) boardModel {
	t.Helper()
	next, cmd := m.Update(key)
	m = next.(boardModel)
	if cmd != nil {
		if msg := cmd(); msg != nil {
			if _, quit := msg.(tea.QuitMsg); !quit {
				next, _ = m.Update(msg)
				m = next.(boardModel)
			}
		}
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBoardToggleAndBank(t *testing.T) {
	m, svc := newTestBoard(t)

	m = press(t, m, runes("l"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !svc.ProfileData().Completed("blacksmithing-weapons", "Sword", "Charged") {
		t.Fatalf("expected Sword/Charged completed; log=%q", m.lastLog)
	}
	if !strings.Contains(m.View(), "[x]") {
		t.Fatalf("view does not show completion")
	}

	m = press(t, m, runes("j"))
	m = press(t, m, runes("b"))
	if !svc.ProfileData().InBank("blacksmithing-weapons", "Axe") {
		t.Fatalf("expected Axe in bank; log=%q", m.lastLog)
	}
}

func TestBoardTimerCountdown(t *testing.T) {
	m, svc := newTestBoard(t)

	m = press(t, m, runes("t"))
	timers := svc.ProfileData().Timers()
	if len(timers) != 1 {
		t.Fatalf("timers=%d, want 1", len(timers))
	}

	next, cmd := m.Update(tickMsg(timers[0].EndTime.Add(-90 * time.Second)))
	m = next.(boardModel)
	if cmd == nil {
		t.Fatalf("tick did not reschedule")
	}
	if !strings.Contains(m.View(), "0h 1m 30s") {
		t.Fatalf("countdown missing:\n%s", m.View())
	}

	next, _ = m.Update(tickMsg(timers[0].EndTime.Add(time.Minute)))
	m = next.(boardModel)
	if !strings.Contains(m.View(), engine.TimerDone) {
		t.Fatalf("expected %q in view", engine.TimerDone)
	}
}

func TestBoardTabCyclesSubsections(t *testing.T) {
	m, _ := newTestBoard(t)
	n := len(m.subs)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.tab != n-1 {
		t.Fatalf("tab=%d, want %d", m.tab, n-1)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != 0 {
		t.Fatalf("tab=%d, want 0", m.tab)
	}
}
