package catalog

import "strings"

type Group string

const (
	GroupBlacksmithing Group = "Blacksmithing"
	GroupClothing      Group = "Clothing"
	GroupWoodworking   Group = "Woodworking"
	GroupJewelry       Group = "Jewelry"
	GroupOther         Group = "Other"
)

// Groups lists the craft buckets in display order.
var Groups = []Group{GroupBlacksmithing, GroupClothing, GroupWoodworking, GroupJewelry, GroupOther}

// Keyword lists are checked in Groups order; the first bucket with a
// substring hit wins.
var groupKeywords = []struct {
	group    Group
	keywords []string
}{
	{GroupBlacksmithing, []string{
		"axe", "sword", "dagger", "mace", "maul", "greatsword", "battle axe", "arm cops", "boots",
		"bracers", "cuirass", "gauntlets", "greaves", "helm", "pauldron", "sabatons", "girdle",
		"vambraces", "helmets", "shoulders",
	}},
	{GroupClothing, []string{
		"robe", "jerkin", "gloves", "hat", "pants", "shoes", "jack", "belt", "guards", "arm cops",
		"bracers", "cuirass", "legs", "sabaton", "sash",
	}},
	{GroupWoodworking, []string{
		"bow", "shield", "inferno staff", "ice staff", "lightning staff", "restoration staff",
		"flame staff", "frost staff", "shock staff", "staff",
	}},
	{GroupJewelry, []string{"ring", "necklace"}},
}

// GroupFor buckets an item type by keyword, falling back to GroupOther.
func GroupFor(itemType string) Group {
	t := strings.ToLower(itemType)
	for _, g := range groupKeywords {
		for _, k := range g.keywords {
			if strings.Contains(t, k) {
				return g.group
			}
		}
	}
	return GroupOther
}
