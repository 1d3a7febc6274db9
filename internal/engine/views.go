package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"traitline/internal/catalog"
	"traitline/internal/storage"
)

// Percentage rounds completed/total to a whole percent; an empty scope is 0.
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

type Stats struct {
	Completed int
	Total     int
}

func (s Stats) Percentage() int { return Percentage(s.Completed, s.Total) }

func (s Stats) String() string {
	return fmt.Sprintf("%d/%d (%d%%)", s.Completed, s.Total, s.Percentage())
}

func (s *Stats) add(o Stats) {
	s.Completed += o.Completed
	s.Total += o.Total
}

// ProfileData indexes the records of one profile for view lookups.
type ProfileData struct {
	Profile *storage.Profile

	completed map[storage.TraitKey]bool
	notes     map[storage.ItemKey]string
	bank      map[storage.ItemKey]bool
	timers    map[storage.TraitKey]time.Time
}

// ProfileData snapshots the active profile's records. With no active profile
// every lookup reports the zero value.
func (s *Service) ProfileData() *ProfileData {
	st := s.State()
	return newProfileData(&st)
}

func newProfileData(st *storage.AppState) *ProfileData {
	d := &ProfileData{
		completed: map[storage.TraitKey]bool{},
		notes:     map[storage.ItemKey]string{},
		bank:      map[storage.ItemKey]bool{},
		timers:    map[storage.TraitKey]time.Time{},
	}
	p := findProfile(st.Profiles, st.CurrentProfileID)
	if p == nil {
		return d
	}
	d.Profile = p
	for _, r := range st.TraitProgress {
		if r.ProfileID == p.ID && r.Completed {
			d.completed[r.TraitKey] = true
		}
	}
	for _, r := range st.ItemNotes {
		if r.ProfileID == p.ID {
			d.notes[r.ItemKey] = r.Note
		}
	}
	for _, r := range st.ItemBankStatus {
		if r.ProfileID == p.ID && r.InBank {
			d.bank[r.ItemKey] = true
		}
	}
	for _, r := range st.ResearchTimers {
		if r.ProfileID == p.ID {
			d.timers[r.TraitKey] = r.EndTime
		}
	}
	return d
}

func (d *ProfileData) profileID() string {
	if d.Profile == nil {
		return ""
	}
	return d.Profile.ID
}

func (d *ProfileData) traitKey(section, item, trait string) storage.TraitKey {
	return storage.TraitKey{ProfileID: d.profileID(), Section: section, Item: item, Trait: trait}
}

func (d *ProfileData) itemKey(section, item string) storage.ItemKey {
	return storage.ItemKey{ProfileID: d.profileID(), Section: section, Item: item}
}

func (d *ProfileData) Completed(section, item, trait string) bool {
	return d.completed[d.traitKey(section, item, trait)]
}

func (d *ProfileData) Note(section, item string) string {
	return d.notes[d.itemKey(section, item)]
}

func (d *ProfileData) InBank(section, item string) bool {
	return d.bank[d.itemKey(section, item)]
}

func (d *ProfileData) Timer(section, item, trait string) (time.Time, bool) {
	end, ok := d.timers[d.traitKey(section, item, trait)]
	return end, ok
}

// Timers lists the profile's timers, soonest first.
func (d *ProfileData) Timers() []storage.ResearchTimer {
	out := make([]storage.ResearchTimer, 0, len(d.timers))
	for k, end := range d.timers {
		out = append(out, storage.ResearchTimer{TraitKey: k, EndTime: end})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EndTime.Equal(out[j].EndTime) {
			return out[i].EndTime.Before(out[j].EndTime)
		}
		return out[i].TraitKey.String() < out[j].TraitKey.String()
	})
	return out
}

// SubsectionStats counts completed traits out of items x traits.
func (d *ProfileData) SubsectionStats(sectionKey string, sub catalog.Subsection) Stats {
	key := catalog.SubsectionKey(sectionKey, sub.Name)
	st := Stats{Total: len(sub.Items) * len(sub.Traits)}
	for _, item := range sub.Items {
		for _, trait := range sub.Traits {
			if d.Completed(key, item, trait) {
				st.Completed++
			}
		}
	}
	return st
}

func (d *ProfileData) SectionStats(sec *catalog.Section) Stats {
	var st Stats
	for _, sub := range sec.Subsections {
		st.add(d.SubsectionStats(sec.Key, sub))
	}
	return st
}

// Stats covers the whole catalog.
func (d *ProfileData) Stats(c *catalog.Catalog) Stats {
	var st Stats
	for i := range c.Sections {
		st.add(d.SectionStats(&c.Sections[i]))
	}
	return st
}

// Matcher is a case-insensitive substring test on the raw query. Only the
// empty query matches all; surrounding spaces are part of the needle.
type Matcher struct {
	query string
	fold  cases.Caser
}

func NewMatcher(query string) *Matcher {
	m := &Matcher{fold: cases.Fold()}
	m.query = m.fold.String(query)
	return m
}

func (m *Matcher) Match(s string) bool {
	if m.query == "" {
		return true
	}
	return strings.Contains(m.fold.String(s), m.query)
}

// FilterSubsection applies a search query to one subsection. A trait is
// visible when its name matches; an item is visible when its name matches
// or any of the subsection's traits do.
func FilterSubsection(sub catalog.Subsection, query string) (items, traits []string) {
	m := NewMatcher(query)
	for _, t := range sub.Traits {
		if m.Match(t) {
			traits = append(traits, t)
		}
	}
	anyTrait := len(traits) > 0
	for _, item := range sub.Items {
		if anyTrait || m.Match(item) {
			items = append(items, item)
		}
	}
	return items, traits
}

// SubsectionView is a filtered subsection ready for display.
type SubsectionView struct {
	Key    string
	Name   string
	Items  []string
	Traits []string
	Stats  Stats
}

type SectionView struct {
	Key         string
	Name        string
	Stats       Stats
	Subsections []SubsectionView
}

// Sections builds the filtered tree for the active profile using the stored
// search query. Stats always cover the unfiltered scope. Subsections with no
// visible item are left out.
func (s *Service) Sections() []SectionView {
	st := s.State()
	d := newProfileData(&st)
	var out []SectionView
	for i := range s.catalog.Sections {
		sec := &s.catalog.Sections[i]
		sv := SectionView{Key: sec.Key, Name: sec.Name, Stats: d.SectionStats(sec)}
		for _, sub := range sec.Subsections {
			items, traits := FilterSubsection(sub, st.SearchQuery)
			if len(items) == 0 {
				continue
			}
			sv.Subsections = append(sv.Subsections, SubsectionView{
				Key:    catalog.SubsectionKey(sec.Key, sub.Name),
				Name:   sub.Name,
				Items:  items,
				Traits: traits,
				Stats:  d.SubsectionStats(sec.Key, sub),
			})
		}
		out = append(out, sv)
	}
	return out
}

// GridRow is one (item type, trait) row of the flat grid.
type GridRow struct {
	catalog.Row
	Completed bool
	InBank    bool
	Note      string
	TimerEnd  *time.Time
}

type GridGroup struct {
	Group catalog.Group
	Stats Stats
	Rows  []GridRow
}

// Label renders the group header, e.g. "Blacksmithing — 0/2 (0%)".
func (g GridGroup) Label() string {
	return fmt.Sprintf("%s — %s", g.Group, g.Stats)
}

// Grid buckets every catalog row by craft group for the active profile,
// filtered by the stored search query. Empty groups are omitted.
func (s *Service) Grid() []GridGroup {
	st := s.State()
	d := newProfileData(&st)
	m := NewMatcher(st.SearchQuery)

	byGroup := map[catalog.Group]*GridGroup{}
	for _, r := range s.catalog.Rows() {
		if !m.Match(r.ItemType) && !m.Match(r.Trait) {
			continue
		}
		g := catalog.GroupFor(r.ItemType)
		gg := byGroup[g]
		if gg == nil {
			gg = &GridGroup{Group: g}
			byGroup[g] = gg
		}
		row := GridRow{
			Row:       r,
			Completed: d.Completed(r.Section, r.ItemType, r.Trait),
			InBank:    d.InBank(r.Section, r.ItemType),
			Note:      d.Note(r.Section, r.ItemType),
		}
		if end, ok := d.Timer(r.Section, r.ItemType, r.Trait); ok {
			row.TimerEnd = &end
		}
		gg.Rows = append(gg.Rows, row)
		gg.Stats.Total++
		if row.Completed {
			gg.Stats.Completed++
		}
	}

	var out []GridGroup
	for _, g := range catalog.Groups {
		if gg := byGroup[g]; gg != nil {
			out = append(out, *gg)
		}
	}
	return out
}

// HoursPerTrait is the research estimate used by Analytics.
const HoursPerTrait = 6

type SectionAnalytics struct {
	Key   string
	Name  string
	Stats Stats
}

type Analytics struct {
	Overall        Stats
	Sections       []SectionAnalytics
	ActiveTimers   int
	HoursSpent     int
	HoursRemaining int
}

// Analytics summarises the active profile over the whole catalog.
func (s *Service) Analytics() Analytics {
	st := s.State()
	d := newProfileData(&st)
	now := s.now()

	var a Analytics
	for i := range s.catalog.Sections {
		sec := &s.catalog.Sections[i]
		ss := d.SectionStats(sec)
		a.Overall.add(ss)
		a.Sections = append(a.Sections, SectionAnalytics{Key: sec.Key, Name: sec.Name, Stats: ss})
	}
	for _, end := range d.timers {
		if end.After(now) {
			a.ActiveTimers++
		}
	}
	a.HoursSpent = a.Overall.Completed * HoursPerTrait
	a.HoursRemaining = (a.Overall.Total - a.Overall.Completed) * HoursPerTrait
	return a
}
