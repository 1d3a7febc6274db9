package engine

import (
	"context"
	"database/sql"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"traitline/internal/catalog"
	"traitline/internal/storage"
)

// Remote is the multi-user backing store. Every operation is scoped by the
// owning user and is atomic per row.
type Remote interface {
	ListProfiles(ctx context.Context, userID string) ([]storage.Profile, error)
	UpsertProfile(ctx context.Context, userID string, p storage.Profile) error
	DeleteProfile(ctx context.Context, userID, profileID string) error
	ResetProfile(ctx context.Context, userID, profileID string) error

	ListProgress(ctx context.Context, userID string) ([]storage.TraitProgress, error)
	UpsertProgress(ctx context.Context, userID string, p storage.TraitProgress) error
	DeleteProgress(ctx context.Context, userID string, k storage.TraitKey) error

	ListNotes(ctx context.Context, userID string) ([]storage.ItemNote, error)
	UpsertNote(ctx context.Context, userID string, n storage.ItemNote) error
	DeleteNote(ctx context.Context, userID string, k storage.ItemKey) error

	ListBank(ctx context.Context, userID string) ([]storage.ItemBankStatus, error)
	UpsertBank(ctx context.Context, userID string, b storage.ItemBankStatus) error
	DeleteBank(ctx context.Context, userID string, k storage.ItemKey) error

	ListTimers(ctx context.Context, userID string) ([]storage.ResearchTimer, error)
	UpsertTimer(ctx context.Context, userID string, t storage.ResearchTimer) error
	DeleteTimer(ctx context.Context, userID string, k storage.TraitKey) error
}

type Options struct {
	Catalog *catalog.Catalog
	// Remote and UserID together form a session. Without both, state lives
	// only in the local snapshot.
	Remote       Remote
	UserID       string
	WriteTimeout time.Duration
	Logger       *log.Logger
	Now          func() time.Time
	NewID        func() string
}

// Service is the state container. All mutations go through its methods:
// the local state changes synchronously, then a detached remote write
// confirms it when a session is active.
type Service struct {
	db        *sql.DB
	snapshots *storage.SnapshotRepo
	settings  *storage.SettingsRepo

	catalog      *catalog.Catalog
	remote       Remote
	userID       string
	writeTimeout time.Duration
	log          *log.Logger
	now          func() time.Time
	newID        func() string

	mu    sync.Mutex
	state storage.AppState

	pending  sync.WaitGroup
	qmu      sync.Mutex
	queue    []queuedWrite
	draining bool
	notices  *noticeQueue
}

func NewService(db *sql.DB, opts Options) *Service {
	s := &Service{
		db:           db,
		snapshots:    storage.NewSnapshotRepo(db),
		settings:     storage.NewSettingsRepo(db),
		catalog:      opts.Catalog,
		remote:       opts.Remote,
		userID:       opts.UserID,
		writeTimeout: opts.WriteTimeout,
		log:          opts.Logger,
		now:          opts.Now,
		newID:        opts.NewID,
		notices:      newNoticeQueue(),
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.writeTimeout <= 0 {
		s.writeTimeout = 10 * time.Second
	}
	if s.log == nil {
		s.log = log.New(io.Discard, "", 0)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

func (s *Service) Catalog() *catalog.Catalog         { return s.catalog }
func (s *Service) SettingsRepo() *storage.SettingsRepo { return s.settings }

// Online reports whether a remote session is active.
func (s *Service) Online() bool {
	return s.remote != nil && s.userID != ""
}

func (s *Service) UserID() string { return s.userID }

// State returns a copy of the whole container.
func (s *Service) State() storage.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Current returns the active profile, or nil when none is selected.
func (s *Service) Current() *storage.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.currentLocked()
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (s *Service) Profiles() []storage.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storage.Profile(nil), s.state.Profiles...)
}

func (s *Service) currentLocked() *storage.Profile {
	return findProfile(s.state.Profiles, s.state.CurrentProfileID)
}

func findProfile(list []storage.Profile, id string) *storage.Profile {
	if id == "" {
		return nil
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

// Wait blocks until every queued remote write has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// Notices returns the queued notices without blocking.
func (s *Service) Notices() []Notice {
	return s.notices.drain()
}

func (s *Service) notify(msg string, err error) {
	s.notices.push(Notice{At: s.now(), Message: msg, Err: err})
}

// remoteWrite is the asynchronous half of a mutation. A nil fn marks a
// local-only change.
type remoteWrite struct {
	op  string
	key string
	fn  func(ctx context.Context, r Remote, userID string) error
}

// apply runs transition under the lock. A nil write means the call was a
// no-op. Offline, the snapshot is saved before returning; online, the remote
// write is queued and never rolled back.
func (s *Service) apply(ctx context.Context, transition func(st *storage.AppState) (*remoteWrite, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := transition(&s.state)
	if err != nil || w == nil {
		return err
	}
	if !s.Online() {
		return s.snapshots.Save(ctx, &s.state)
	}
	if w.fn != nil {
		s.enqueue(ctx, *w)
	}
	return nil
}

type queuedWrite struct {
	ctx context.Context
	w   remoteWrite
}

// enqueue appends w to the write queue. Callers hold s.mu, so the queue
// order is the order in which transitions were applied. A single drain
// goroutine sends writes one at a time, so the last write to a key wins.
func (s *Service) enqueue(ctx context.Context, w remoteWrite) {
	s.pending.Add(1)
	s.qmu.Lock()
	defer s.qmu.Unlock()
	s.queue = append(s.queue, queuedWrite{ctx: context.WithoutCancel(ctx), w: w})
	if !s.draining {
		s.draining = true
		go s.drain()
	}
}

func (s *Service) drain() {
	for {
		s.qmu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.qmu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue[0] = queuedWrite{}
		s.queue = s.queue[1:]
		s.qmu.Unlock()

		s.write(next.ctx, next.w)
		s.pending.Done()
	}
}

func (s *Service) write(ctx context.Context, w remoteWrite) {
	wctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	if err := w.fn(wctx, s.remote, s.userID); err != nil {
		werr := RemoteWriteError{Op: w.op, Key: w.key, Err: err}
		s.log.Printf("remote write failed: %v", werr)
		s.notify("Could not save "+w.op, werr)
		return
	}
	s.log.Printf("remote write ok: %s %s", w.op, w.key)
}

// saveActive remembers the selected profile on this device.
func (s *Service) saveActive(ctx context.Context, id string) {
	if err := s.settings.Set(ctx, storage.SettingActiveProfile, id); err != nil {
		s.log.Printf("save active profile: %v", err)
	}
}
