package catalog

var (
	weaponTraits = []string{"Powered", "Charged", "Precise", "Infused", "Defending", "Training", "Sharpened", "Decisive", "Nirnhoned"}
	armorTraits  = []string{"Sturdy", "Impenetrable", "Reinforced", "Well-Fitted", "Training", "Infused", "Invigorating", "Divines", "Nirnhoned"}
	jewelTraits  = []string{"Arcane", "Healthy", "Robust", "Triune", "Infused", "Protective", "Swift", "Harmony", "Bloodthirsty"}
)

// Default returns the built-in research catalog. Each call returns a fresh copy.
func Default() *Catalog {
	return &Catalog{Sections: []Section{
		{
			Key:  "blacksmithing",
			Name: "Blacksmithing",
			Subsections: []Subsection{
				{
					Name:   "Weapons",
					Items:  []string{"Sword", "Axe", "Mace", "Dagger", "Greatsword", "Battle Axe", "Maul"},
					Traits: clone(weaponTraits),
				},
				{
					Name:   "Heavy Armor",
					Items:  []string{"Heavy Helm", "Heavy Armor", "Heavy Pants", "Heavy Gloves", "Heavy Boots", "Heavy Shoulders", "Heavy Belt"},
					Traits: clone(armorTraits),
				},
			},
		},
		{
			Key:  "clothing",
			Name: "Clothing",
			Subsections: []Subsection{
				{
					Name:   "Light Armor",
					Items:  []string{"Light Robe", "Light Hat", "Light Pants", "Light Gloves", "Light Shoes", "Light Shoulders", "Light Belt"},
					Traits: clone(armorTraits),
				},
				{
					Name:   "Medium Armor",
					Items:  []string{"Medium Jacket", "Medium Helmet", "Medium Pants", "Medium Gloves", "Medium Boots", "Medium Shoulders", "Medium Belt"},
					Traits: clone(armorTraits),
				},
			},
		},
		{
			Key:  "woodworking",
			Name: "Woodworking",
			Subsections: []Subsection{
				{
					Name:   "Weapons",
					Items:  []string{"Bow", "Fire Staff", "Frost Staff", "Lightning Staff", "Restoration Staff"},
					Traits: clone(weaponTraits),
				},
				{
					Name:   "Shields",
					Items:  []string{"Shield"},
					Traits: clone(armorTraits),
				},
			},
		},
		{
			Key:  "jewelry",
			Name: "Jewelry Crafting",
			Subsections: []Subsection{
				{
					Name:   "Jewelry",
					Items:  []string{"Ring", "Necklace"},
					Traits: clone(jewelTraits),
				},
			},
		},
	}}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
