package engine

import (
	"context"
	"time"

	"traitline/internal/storage"
)

// MaxTimerHours caps a single research timer at one week.
const MaxTimerHours = 168

func (s *Service) traitKey(st *storage.AppState, section, item, trait string) (storage.TraitKey, bool) {
	p := findProfile(st.Profiles, st.CurrentProfileID)
	if p == nil || !s.catalog.ValidTrait(section, item, trait) {
		return storage.TraitKey{}, false
	}
	return storage.TraitKey{ProfileID: p.ID, Section: section, Item: item, Trait: trait}, true
}

func (s *Service) itemKey(st *storage.AppState, section, item string) (storage.ItemKey, bool) {
	p := findProfile(st.Profiles, st.CurrentProfileID)
	if p == nil || !s.catalog.ValidItem(section, item) {
		return storage.ItemKey{}, false
	}
	return storage.ItemKey{ProfileID: p.ID, Section: section, Item: item}, true
}

// ToggleTrait flips completion of a trait for the active profile and returns
// the new value. Unknown triples and a missing profile are no-ops.
func (s *Service) ToggleTrait(ctx context.Context, section, item, trait string) (bool, error) {
	var completed bool
	err := s.apply(ctx, func(st *storage.AppState) (*remoteWrite, error) {
		k, ok := s.traitKey(st, section, item, trait)
		if !ok {
			return nil, nil
		}
		i := indexProgress(st.TraitProgress, k)
		completed = i < 0 || !st.TraitProgress[i].Completed
		return setProgress(st, k, completed), nil
	})
	return completed, err
}

// SetTraitCompleted sets completion without flipping. Completed traits are
// upserted; incomplete ones are deleted rather than stored as false.
func (s *Service) SetTraitCompleted(ctx context.Context, section, item, trait string, completed bool) error {
	return s.apply(ctx, func(st *storage.AppState) (*remoteWrite, error) {
		k, ok := s.traitKey(st, section, item, trait)
		if !ok {
			return nil, nil
		}
		return setProgress(st, k, completed), nil
	})
}

func setProgress(st *storage.AppState, k storage.TraitKey, completed bool) *remoteWrite {
	i := indexProgress(st.TraitProgress, k)
	if !completed {
		if i >= 0 {
			st.TraitProgress = append(st.TraitProgress[:i:i], st.TraitProgress[i+1:]...)
		}
		return &remoteWrite{op: "progress", key: k.String(), fn: func(ctx context.Context, r Remote, userID string) error {
			return r.DeleteProgress(ctx, userID, k)
		}}
	}
	row := storage.TraitProgress{TraitKey: k, Completed: true}
	if i >= 0 {
		st.TraitProgress[i] = row
	} else {
		st.TraitProgress = append(st.TraitProgress, row)
	}
	return &remoteWrite{op: "progress", key: k.String(), fn: func(ctx context.Context, r Remote, userID string) error {
		return r.UpsertProgress(ctx, userID, row)
	}}
}

func indexProgress(list []storage.TraitProgress, k storage.TraitKey) int {
	for i := range list {
		if list[i].TraitKey == k {
			return i
		}
	}
	return -1
}

// SetNote upserts text as given; blank text deletes the note.
func (s *Service) SetNote(ctx context.Context, section, item, text string) error {
	return s.apply(ctx, func(st *storage.AppState) (*remoteWrite, error) {
		k, ok := s.itemKey(st, section, item)
		if !ok {
			return nil, nil
		}
		i := -1
		for j := range st.ItemNotes {
			if st.ItemNotes[j].ItemKey == k {
				i = j
				break
			}
		}
		if isBlank(text) {
			if i >= 0 {
				st.ItemNotes = append(st.ItemNotes[:i:i], st.ItemNotes[i+1:]...)
			}
			return &remoteWrite{op: "note", key: k.String(), fn: func(ctx context.Context, r Remote, userID string) error {
				return r.DeleteNote(ctx, userID, k)
			}}, nil
		}
		row := storage.ItemNote{ItemKey: k, Note: text}
		if i >= 0 {
			st.ItemNotes[i] = row
		} else {
			st.ItemNotes = append(st.ItemNotes, row)
		}
		return &remoteWrite{op: "note", key: k.String(), fn: func(ctx context.Context, r Remote, userID string) error {
			return r.UpsertNote(ctx, userID, row)
		}}, nil
	})
}

// ToggleBank flips the bank flag of an item and returns the new value.
func (s *Service) ToggleBank(ctx context.Context, section, item string) (bool, error) {
	var inBank bool
	err := s.apply(ctx, func(st *storage.AppState) (*remoteWrite, error) {
		k, ok := s.itemKey(st, section, item)
		if !ok {
			return nil, nil
		}
		i := indexBank(st.ItemBankStatus, k)
		inBank = i < 0 || !st.ItemBankStatus[i].InBank
		return setBank(st, k, inBank), nil
	})
	return inBank, err
}

func (s *Service) SetBank(ctx context.Context, section, item string, inBank bool) error {
	return s.apply(ctx, func(st *storage.AppState) (*remoteWrite, error) {
		k, ok := s.itemKey(st, section, item)
		if !ok {
			return nil, nil
		}
		return setBank(st, k, inBank), nil
	})
}

func setBank(st *storage.AppState, k storage.ItemKey, inBank bool) *remoteWrite {
	i := indexBank(st.ItemBankStatus, k)
	if !inBank {
		if i >= 0 {
			st.ItemBankStatus = append(st.ItemBankStatus[:i:i], st.ItemBankStatus[i+1:]...)
		}
		return &remoteWrite{op: "bank", key: k.String(), fn: func(ctx context.Context, r Remote, userID string) error {
			return r.DeleteBank(ctx, userID, k)
		}}
	}
	row := storage.ItemBankStatus{ItemKey: k, InBank: true}
	if i >= 0 {
		st.ItemBankStatus[i] = row
	} else {
		st.ItemBankStatus = append(st.ItemBankStatus, row)
	}
	return &remoteWrite{op: "bank", key: k.String(), fn: func(ctx context.Context, r Remote, userID string) error {
		return r.UpsertBank(ctx, userID, row)
	}}
}

func indexBank(list []storage.ItemBankStatus, k storage.ItemKey) int {
	for i := range list {
		if list[i].ItemKey == k {
			return i
		}
	}
	return -1
}

// SetTimer starts (or restarts) a research timer ending hours from now.
// Hours outside (0, MaxTimerHours] are a no-op and return nil.
func (s *Service) SetTimer(ctx context.Context, section, item, trait string, hours float64) (*storage.ResearchTimer, error) {
	if hours <= 0 || hours > MaxTimerHours {
		return nil, nil
	}
	var set *storage.ResearchTimer
	err := s.apply(ctx, func(st *storage.AppState) (*remoteWrite, error) {
		k, ok := s.traitKey(st, section, item, trait)
		if !ok {
			return nil, nil
		}
		row := storage.ResearchTimer{
			TraitKey: k,
			EndTime:  s.now().UTC().Add(time.Duration(hours * float64(time.Hour))),
		}
		if i := indexTimer(st.ResearchTimers, k); i >= 0 {
			st.ResearchTimers[i] = row
		} else {
			st.ResearchTimers = append(st.ResearchTimers, row)
		}
		set = &row
		return &remoteWrite{op: "timer", key: k.String(), fn: func(ctx context.Context, r Remote, userID string) error {
			return r.UpsertTimer(ctx, userID, row)
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Service) RemoveTimer(ctx context.Context, section, item, trait string) error {
	return s.apply(ctx, func(st *storage.AppState) (*remoteWrite, error) {
		k, ok := s.traitKey(st, section, item, trait)
		if !ok {
			return nil, nil
		}
		if i := indexTimer(st.ResearchTimers, k); i >= 0 {
			st.ResearchTimers = append(st.ResearchTimers[:i:i], st.ResearchTimers[i+1:]...)
		}
		return &remoteWrite{op: "timer", key: k.String(), fn: func(ctx context.Context, r Remote, userID string) error {
			return r.DeleteTimer(ctx, userID, k)
		}}, nil
	})
}

func indexTimer(list []storage.ResearchTimer, k storage.TraitKey) int {
	for i := range list {
		if list[i].TraitKey == k {
			return i
		}
	}
	return -1
}
