package engine

import (
	"context"
	"strings"

	"traitline/internal/storage"
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func upsertProfile(p storage.Profile) func(context.Context, Remote, string) error {
	return func(ctx context.Context, r Remote, userID string) error {
		return r.UpsertProfile(ctx, userID, p)
	}
}

// CreateProfile adds a profile and makes it active. A blank name is a no-op
// and returns nil.
func (s *Service) CreateProfile(ctx context.Context, name string) (*storage.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	p := storage.Profile{
		ID:        s.newID(),
		Name:      name,
		Theme:     storage.ThemeDark,
		CreatedAt: s.now().UTC(),
	}
	err := s.apply(ctx, func(st *storage.AppState) (*remoteWrite, error) {
		st.Profiles = append(st.Profiles, p)
		st.CurrentProfileID = p.ID
		return &remoteWrite{op: "profile", key: p.Name, fn: upsertProfile(p)}, nil
	})
	if err != nil {
		return nil, err
	}
	s.saveActive(ctx, p.ID)
	return &p, nil
}

func (s *Service) RenameProfile(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return s.apply(ctx, func(st *storage.AppState) (*remoteWrite, error) {
		p := findProfile(st.Profiles, id)
		if p == nil {
			return nil, ErrProfileNotFound
		}
		p.Name = name
		return &remoteWrite{op: "profile", key: name, fn: upsertProfile(*p)}, nil
	})
}

// DeleteProfile removes a profile with all of its records. When it was
// active the first remaining profile takes over.
func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	var next string
	err := s.apply(ctx, func(st *storage.AppState) (*remoteWrite, error) {
		if findProfile(st.Profiles, id) == nil {
			return nil, ErrProfileNotFound
		}
		profiles := st.Profiles[:0:0]
		for _, p := range st.Profiles {
			if p.ID != id {
				profiles = append(profiles, p)
			}
		}
		st.Profiles = profiles
		dropProfileRecords(st, id)
		if st.CurrentProfileID == id {
			st.CurrentProfileID = ""
			if len(profiles) > 0 {
				st.CurrentProfileID = profiles[0].ID
			}
		}
		next = st.CurrentProfileID
		return &remoteWrite{op: "profile delete", key: id, fn: func(ctx context.Context, r Remote, userID string) error {
			return r.DeleteProfile(ctx, userID, id)
		}}, nil
	})
	if err != nil {
		return err
	}
	s.saveActive(ctx, next)
	return nil
}

func (s *Service) SelectProfile(ctx context.Context, id string) error {
	err := s.apply(ctx, func(st *storage.AppState) (*remoteWrite, error) {
		if findProfile(st.Profiles, id) == nil {
			return nil, ErrProfileNotFound
		}
		st.CurrentProfileID = id
		return &remoteWrite{}, nil
	})
	if err != nil {
		return err
	}
	s.saveActive(ctx, id)
	return nil
}

// ToggleTheme flips the active profile between dark and light.
func (s *Service) ToggleTheme(ctx context.Context) (storage.Theme, error) {
	var theme storage.Theme
	err := s.apply(ctx, func(st *storage.AppState) (*remoteWrite, error) {
		p := findProfile(st.Profiles, st.CurrentProfileID)
		if p == nil {
			return nil, nil
		}
		if p.Theme == storage.ThemeLight {
			p.Theme = storage.ThemeDark
		} else {
			p.Theme = storage.ThemeLight
		}
		theme = p.Theme
		return &remoteWrite{op: "theme", key: p.Name, fn: upsertProfile(*p)}, nil
	})
	return theme, err
}

// ResetProgress clears progress, notes, bank status and timers of the
// active profile. The profile itself stays.
func (s *Service) ResetProgress(ctx context.Context) error {
	return s.apply(ctx, func(st *storage.AppState) (*remoteWrite, error) {
		id := st.CurrentProfileID
		if findProfile(st.Profiles, id) == nil {
			return nil, nil
		}
		dropProfileRecords(st, id)
		return &remoteWrite{op: "reset", key: id, fn: func(ctx context.Context, r Remote, userID string) error {
			return r.ResetProfile(ctx, userID, id)
		}}, nil
	})
}

// SetSearchQuery sets the filter used by Sections and Grid. It is view state
// only and never reaches the snapshot or the remote store.
func (s *Service) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SearchQuery = q
}

func dropProfileRecords(st *storage.AppState, profileID string) {
	st.TraitProgress = filterOut(st.TraitProgress, func(r storage.TraitProgress) bool { return r.ProfileID == profileID })
	st.ItemNotes = filterOut(st.ItemNotes, func(r storage.ItemNote) bool { return r.ProfileID == profileID })
	st.ItemBankStatus = filterOut(st.ItemBankStatus, func(r storage.ItemBankStatus) bool { return r.ProfileID == profileID })
	st.ResearchTimers = filterOut(st.ResearchTimers, func(r storage.ResearchTimer) bool { return r.ProfileID == profileID })
}

// filterOut returns a new slice without the elements matching drop.
func filterOut[T any](list []T, drop func(T) bool) []T {
	var out []T
	for _, v := range list {
		if !drop(v) {
			out = append(out, v)
		}
	}
	return out
}
