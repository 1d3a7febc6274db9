package engine

import (
	"context"
	"fmt"
	"time"

	"traitline/internal/storage"
)

// TimerDone is the countdown text of an elapsed timer.
const TimerDone = "Complete!"

// Remaining is the time left until end, floored at zero.
func Remaining(end, now time.Time) time.Duration {
	d := end.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// FormatRemaining renders "Hh Mm Ss", or TimerDone once d reaches zero.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return TimerDone
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%dh %dm %ds", secs/3600, secs%3600/60, secs%60)
}

type TimerStatus struct {
	storage.ResearchTimer
	Remaining time.Duration
}

func (t TimerStatus) Expired() bool { return t.Remaining <= 0 }

func (t TimerStatus) String() string { return FormatRemaining(t.Remaining) }

// TimerStatuses evaluates every timer of the active profile at now.
func (s *Service) TimerStatuses(now time.Time) []TimerStatus {
	timers := s.ProfileData().Timers()
	out := make([]TimerStatus, 0, len(timers))
	for _, t := range timers {
		out = append(out, TimerStatus{ResearchTimer: t, Remaining: Remaining(t.EndTime, now)})
	}
	return out
}

// WatchTimers emits the active profile's timer statuses immediately and then
// once per tick until ctx is done. The channel is closed on return.
func (s *Service) WatchTimers(ctx context.Context, every time.Duration) <-chan []TimerStatus {
	if every <= 0 {
		every = time.Second
	}
	ch := make(chan []TimerStatus, 1)
	go func() {
		defer close(ch)
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case ch <- s.TimerStatuses(s.now()):
			case <-ctx.Done():
				return
			}
			select {
			case <-t.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
