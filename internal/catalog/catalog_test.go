package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSubsectionKey(t *testing.T) {
	if got := SubsectionKey("blacksmithing", "Weapons"); got != "blacksmithing-weapons" {
		t.Fatalf("SubsectionKey=%q, want blacksmithing-weapons", got)
	}
	if got := SubsectionKey("clothing", "Medium  Armor"); got != "clothing-medium-armor" {
		t.Fatalf("SubsectionKey=%q, want clothing-medium-armor", got)
	}
}

func TestDefaultLookups(t *testing.T) {
	c := Default()
	if !c.ValidTrait("blacksmithing-weapons", "Sword", "Sharpened") {
		t.Fatalf("expected Sword/Sharpened to be valid")
	}
	if c.ValidTrait("blacksmithing-weapons", "Sword", "Arcane") {
		t.Fatalf("did not expect jewelry trait on a sword")
	}
	if c.ValidItem("jewelry-jewelry", "Sword") {
		t.Fatalf("did not expect Sword in jewelry")
	}

	keys := c.SubsectionsWithItem("blacksmithing", "Axe")
	if len(keys) != 1 || keys[0] != "blacksmithing-weapons" {
		t.Fatalf("SubsectionsWithItem=%v", keys)
	}
	if got := c.SubsectionsWithItem("nope", "Axe"); got != nil {
		t.Fatalf("unknown section returned %v", got)
	}

	want := 0
	for _, r := range c.Rows() {
		if r.Section != "" {
			want++
		}
	}
	if got := c.TraitCount(); got != want {
		t.Fatalf("TraitCount=%d, rows=%d", got, want)
	}
}

func TestDefaultReturnsCopy(t *testing.T) {
	a := Default()
	a.Sections[0].Subsections[0].Traits[0] = "changed"
	if Default().Sections[0].Subsections[0].Traits[0] == "changed" {
		t.Fatalf("Default shares trait slices between calls")
	}
}

func TestGroupFor(t *testing.T) {
	cases := map[string]Group{
		"Sword":             GroupBlacksmithing,
		"Battle Axe":        GroupBlacksmithing,
		"Light Robe":        GroupClothing,
		"Restoration Staff": GroupWoodworking,
		"Shield":            GroupWoodworking,
		"Ring":              GroupJewelry,
		"Banner":            GroupOther,
	}
	for in, want := range cases {
		if got := GroupFor(in); got != want {
			t.Fatalf("GroupFor(%q)=%s, want %s", in, got, want)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	body := `{"sections":[{"key":"alchemy","name":"Alchemy","subsections":[{"name":"Potions","items":["Vial"],"traits":["Fizzy"]}]}]}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.ValidTrait("alchemy-potions", "Vial", "Fizzy") {
		t.Fatalf("loaded catalog missing triple")
	}

	dup := `{"sections":[{"key":"a","subsections":[{"name":"X"},{"name":"x"}]}]}`
	if err := os.WriteFile(path, []byte(dup), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected duplicate subsection error")
	}
}
