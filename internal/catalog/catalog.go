package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Catalog is the read-only universe of (section, item, trait) triples.
// Sections keep their declaration order so listings are stable.
type Catalog struct {
	Sections []Section `json:"sections"`
}

type Section struct {
	Key         string       `json:"key"`
	Name        string       `json:"name"`
	Subsections []Subsection `json:"subsections"`
}

type Subsection struct {
	Name   string   `json:"name"`
	Items  []string `json:"items"`
	Traits []string `json:"traits"`
}

var whitespace = regexp.MustCompile(`\s+`)

// Slug lower-cases a subsection name and replaces whitespace runs with '-'.
func Slug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// SubsectionKey is the value stored in the section column of every record,
// e.g. "blacksmithing-weapons".
func SubsectionKey(sectionKey, subsectionName string) string {
	return sectionKey + "-" + Slug(subsectionName)
}

func (c *Catalog) Section(key string) *Section {
	for i := range c.Sections {
		if c.Sections[i].Key == key {
			return &c.Sections[i]
		}
	}
	return nil
}

// Subsection resolves a subsection key back to its section and subsection.
func (c *Catalog) Subsection(key string) (*Section, *Subsection) {
	for i := range c.Sections {
		s := &c.Sections[i]
		for j := range s.Subsections {
			if SubsectionKey(s.Key, s.Subsections[j].Name) == key {
				return s, &s.Subsections[j]
			}
		}
	}
	return nil, nil
}

func (s *Subsection) HasItem(item string) bool {
	return contains(s.Items, item)
}

func (s *Subsection) HasTrait(trait string) bool {
	return contains(s.Traits, trait)
}

// ValidItem reports whether item exists under the subsection key.
func (c *Catalog) ValidItem(subsectionKey, item string) bool {
	_, sub := c.Subsection(subsectionKey)
	return sub != nil && sub.HasItem(item)
}

// ValidTrait reports whether (subsectionKey, item, trait) is a catalog triple.
func (c *Catalog) ValidTrait(subsectionKey, item, trait string) bool {
	_, sub := c.Subsection(subsectionKey)
	return sub != nil && sub.HasItem(item) && sub.HasTrait(trait)
}

// SubsectionsWithItem returns the subsection keys of section that list item.
func (c *Catalog) SubsectionsWithItem(sectionKey, item string) []string {
	s := c.Section(sectionKey)
	if s == nil {
		return nil
	}
	var keys []string
	for _, sub := range s.Subsections {
		if sub.HasItem(item) {
			keys = append(keys, SubsectionKey(s.Key, sub.Name))
		}
	}
	return keys
}

// TraitCount is the number of (item, trait) cells in the whole catalog.
func (c *Catalog) TraitCount() int {
	n := 0
	for _, s := range c.Sections {
		n += s.TraitCount()
	}
	return n
}

func (s *Section) TraitCount() int {
	n := 0
	for _, sub := range s.Subsections {
		n += len(sub.Items) * len(sub.Traits)
	}
	return n
}

// Traits returns the distinct traits of a section in first-seen order.
func (s *Section) Traits() []string {
	seen := map[string]bool{}
	var out []string
	for _, sub := range s.Subsections {
		for _, t := range sub.Traits {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// Row is one (item type, trait) cell of the flat grid view.
type Row struct {
	Section  string
	ItemType string
	Trait    string
}

// Rows flattens the catalog in item-type then trait order per subsection.
func (c *Catalog) Rows() []Row {
	var out []Row
	for _, s := range c.Sections {
		for _, sub := range s.Subsections {
			key := SubsectionKey(s.Key, sub.Name)
			for _, item := range sub.Items {
				for _, trait := range sub.Traits {
					out = append(out, Row{Section: key, ItemType: item, Trait: trait})
				}
			}
		}
	}
	return out
}

// Load reads a catalog from a JSON file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Sections) == 0 {
		return fmt.Errorf("catalog: no sections")
	}
	seen := map[string]bool{}
	for _, s := range c.Sections {
		if strings.TrimSpace(s.Key) == "" {
			return fmt.Errorf("catalog: section %q has no key", s.Name)
		}
		for _, sub := range s.Subsections {
			key := SubsectionKey(s.Key, sub.Name)
			if seen[key] {
				return fmt.Errorf("catalog: duplicate subsection %q", key)
			}
			seen[key] = true
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
