package storage

import "time"

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Theme     Theme     `json:"theme"`
	CreatedAt time.Time `json:"createdAt"`
}

// ItemKey identifies a per-item record (note, bank status).
type ItemKey struct {
	ProfileID string `json:"profileId"`
	Section   string `json:"section"`
	Item      string `json:"item"`
}

// TraitKey identifies a per-trait record (progress, timer).
type TraitKey struct {
	ProfileID string `json:"profileId"`
	Section   string `json:"section"`
	Item      string `json:"item"`
	Trait     string `json:"trait"`
}

func (k TraitKey) ItemKey() ItemKey {
	return ItemKey{ProfileID: k.ProfileID, Section: k.Section, Item: k.Item}
}

func (k TraitKey) String() string {
	return k.Section + "/" + k.Item + "/" + k.Trait
}

func (k ItemKey) String() string {
	return k.Section + "/" + k.Item
}

// TraitProgress rows exist only for completed traits.
type TraitProgress struct {
	TraitKey
	Completed bool `json:"completed"`
}

// ItemNote rows exist only for non-empty notes.
type ItemNote struct {
	ItemKey
	Note string `json:"note"`
}

// ItemBankStatus rows exist only while the item is banked.
type ItemBankStatus struct {
	ItemKey
	InBank bool `json:"inBank"`
}

type ResearchTimer struct {
	TraitKey
	EndTime time.Time `json:"endTime"`
}

// AppState is the full local snapshot shape.
type AppState struct {
	Profiles         []Profile        `json:"profiles"`
	CurrentProfileID string           `json:"currentProfileId"`
	TraitProgress    []TraitProgress  `json:"traitProgress"`
	ItemNotes        []ItemNote       `json:"itemNotes"`
	ItemBankStatus   []ItemBankStatus `json:"itemBankStatus"`
	ResearchTimers   []ResearchTimer  `json:"researchTimers"`
	SearchQuery      string           `json:"searchQuery"`
}

// Empty reports whether the snapshot holds no profiles and no records.
func (s *AppState) Empty() bool {
	return len(s.Profiles) == 0 &&
		len(s.TraitProgress) == 0 &&
		len(s.ItemNotes) == 0 &&
		len(s.ItemBankStatus) == 0 &&
		len(s.ResearchTimers) == 0
}

// Clone returns a deep copy safe to hand out of a locked container.
func (s *AppState) Clone() AppState {
	return AppState{
		Profiles:         append([]Profile(nil), s.Profiles...),
		CurrentProfileID: s.CurrentProfileID,
		TraitProgress:    append([]TraitProgress(nil), s.TraitProgress...),
		ItemNotes:        append([]ItemNote(nil), s.ItemNotes...),
		ItemBankStatus:   append([]ItemBankStatus(nil), s.ItemBankStatus...),
		ResearchTimers:   append([]ResearchTimer(nil), s.ResearchTimers...),
		SearchQuery:      s.SearchQuery,
	}
}
