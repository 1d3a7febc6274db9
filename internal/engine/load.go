package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"traitline/internal/storage"
)

// migrationConcurrency bounds in-flight upserts during first-login migration.
const migrationConcurrency = 8

type LoadResult struct {
	Online bool
	// Migrated counts local records copied to the remote store on this load.
	Migrated int
	// Migration is set when some local records failed to copy.
	Migration *MigrationError
}

// Load fills the container. Offline it reads the local snapshot. Online it
// first migrates any leftover local snapshot into the remote store, discards
// the snapshot, then reads everything owned by the user.
func (s *Service) Load(ctx context.Context) (*LoadResult, error) {
	local, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	res := &LoadResult{Online: s.Online()}

	if !s.Online() {
		st := storage.AppState{}
		if local != nil {
			st = *local
		}
		s.mu.Lock()
		st.SearchQuery = s.state.SearchQuery
		s.state = st
		s.ensureActiveLocked(st.CurrentProfileID)
		s.mu.Unlock()
		return res, nil
	}

	if local != nil {
		if !local.Empty() {
			n, merr := s.migrate(ctx, local)
			res.Migrated = n
			if merr != nil {
				res.Migration = merr
				s.log.Printf("first-login migration: %v", merr)
				s.notify("Some local records could not be uploaded", merr)
			}
		}
		if err := s.snapshots.Delete(ctx); err != nil {
			return nil, err
		}
	}

	st, err := s.fetch(ctx)
	if err != nil {
		return nil, RemoteReadError{Err: err}
	}
	active, err := s.settings.Get(ctx, storage.SettingActiveProfile)
	if err != nil {
		return nil, err
	}
	if active == "" && local != nil {
		active = local.CurrentProfileID
	}

	s.mu.Lock()
	st.SearchQuery = s.state.SearchQuery
	s.state = st
	s.ensureActiveLocked(active)
	current := s.state.CurrentProfileID
	s.mu.Unlock()

	if current != active {
		s.saveActive(ctx, current)
	}
	return res, nil
}

// Refresh re-reads the remote store, picking up edits made elsewhere. The
// active profile and search query are kept. Offline it reloads the snapshot.
// Queued writes are flushed first so the read observes them.
func (s *Service) Refresh(ctx context.Context) error {
	if !s.Online() {
		_, err := s.Load(ctx)
		return err
	}
	s.Wait()
	st, err := s.fetch(ctx)
	if err != nil {
		return RemoteReadError{Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.state.CurrentProfileID
	st.SearchQuery = s.state.SearchQuery
	s.state = st
	s.ensureActiveLocked(active)
	return nil
}

// ensureActiveLocked selects want when it still exists, else the first
// profile, else none.
func (s *Service) ensureActiveLocked(want string) {
	if findProfile(s.state.Profiles, want) != nil {
		s.state.CurrentProfileID = want
		return
	}
	s.state.CurrentProfileID = ""
	if len(s.state.Profiles) > 0 {
		s.state.CurrentProfileID = s.state.Profiles[0].ID
	}
}

func (s *Service) fetch(ctx context.Context) (storage.AppState, error) {
	var st storage.AppState
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.Profiles, err = s.remote.ListProfiles(gctx, s.userID)
		return err
	})
	g.Go(func() (err error) {
		st.TraitProgress, err = s.remote.ListProgress(gctx, s.userID)
		return err
	})
	g.Go(func() (err error) {
		st.ItemNotes, err = s.remote.ListNotes(gctx, s.userID)
		return err
	})
	g.Go(func() (err error) {
		st.ItemBankStatus, err = s.remote.ListBank(gctx, s.userID)
		return err
	})
	g.Go(func() (err error) {
		st.ResearchTimers, err = s.remote.ListTimers(gctx, s.userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return storage.AppState{}, err
	}
	return st, nil
}

// migrate upserts every local record. Profiles go first so relation rows
// always have an owner row; inside each phase writes run concurrently and a
// failure does not stop or undo the others.
func (s *Service) migrate(ctx context.Context, local *storage.AppState) (int, *MigrationError) {
	var (
		copied atomic.Int64
		mu     sync.Mutex
		failed []string
	)
	run := func(g *errgroup.Group, key string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			if err := fn(ctx); err != nil {
				mu.Lock()
				failed = append(failed, key)
				mu.Unlock()
				return fmt.Errorf("%s: %w", key, err)
			}
			copied.Add(1)
			return nil
		})
	}

	var profiles errgroup.Group
	profiles.SetLimit(migrationConcurrency)
	for _, p := range local.Profiles {
		run(&profiles, "profile "+p.ID, func(ctx context.Context) error {
			return s.remote.UpsertProfile(ctx, s.userID, p)
		})
	}
	firstErr := profiles.Wait()

	var records errgroup.Group
	records.SetLimit(migrationConcurrency)
	for _, p := range local.TraitProgress {
		if !p.Completed {
			continue
		}
		run(&records, "progress "+p.TraitKey.String(), func(ctx context.Context) error {
			return s.remote.UpsertProgress(ctx, s.userID, p)
		})
	}
	for _, n := range local.ItemNotes {
		if isBlank(n.Note) {
			continue
		}
		run(&records, "note "+n.ItemKey.String(), func(ctx context.Context) error {
			return s.remote.UpsertNote(ctx, s.userID, n)
		})
	}
	for _, b := range local.ItemBankStatus {
		if !b.InBank {
			continue
		}
		run(&records, "bank "+b.ItemKey.String(), func(ctx context.Context) error {
			return s.remote.UpsertBank(ctx, s.userID, b)
		})
	}
	for _, t := range local.ResearchTimers {
		run(&records, "timer "+t.TraitKey.String(), func(ctx context.Context) error {
			return s.remote.UpsertTimer(ctx, s.userID, t)
		})
	}
	if err := records.Wait(); firstErr == nil {
		firstErr = err
	}

	if len(failed) == 0 {
		return int(copied.Load()), nil
	}
	return int(copied.Load()), &MigrationError{Failed: failed, Err: firstErr}
}
