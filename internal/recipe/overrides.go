package recipe

import "github.com/embercraft/companion/internal/world"

// Override replaces or augments the variants the recipe index would
// otherwise return for an item, for cases where the true in-game crafting
// graph is circular, loot-gated, or otherwise unsuited to plain lookup
// (netherite gear upgrades, dyed blocks). Overrides are consulted before
// Index.VariantsFor and, when present, take its place entirely rather than
// merging with it.
type Override struct {
	Item     world.ItemID
	Variants []Variant
}

// OverrideTable is a lookup from item to its override, built once at
// startup from BuildOverrides.
type OverrideTable map[world.ItemID][]Variant

// Lookup returns the override variants for item, if any.
func (t OverrideTable) Lookup(item world.ItemID) ([]Variant, bool) {
	v, ok := t[item]
	return v, ok
}

// BuildOverrides constructs the manual override table: netherite tool and
// armor upgrades (smithing-table, base + template + netherite ingot, where
// the structural recipe would otherwise require resolving "netherite_ingot"
// as an ingredient of itself through the plain item graph), dyed shulker
// boxes, and dyed carpets. All three families are transmute-shaped: a base
// item plus a dye reagent, chosen over plain lookup specifically because
// the index never returns KindTransmute variants on its own.
func BuildOverrides() OverrideTable {
	t := make(OverrideTable)

	for _, base := range []string{
		"diamond_sword", "diamond_pickaxe", "diamond_axe", "diamond_shovel", "diamond_hoe",
		"diamond_helmet", "diamond_chestplate", "diamond_leggings", "diamond_boots",
	} {
		result := "netherite" + base[len("diamond"):]
		t[world.ItemID("minecraft:"+result)] = []Variant{{
			Kind:             KindSmithing,
			Result:           world.ItemID("minecraft:" + result),
			Count:            1,
			SmithingBase:     world.ItemID("minecraft:" + base),
			SmithingAddition: "minecraft:netherite_ingot",
			SmithingTemplate: "minecraft:netherite_upgrade_smithing_template",
		}}
	}

	for _, color := range concreteColors {
		shulker := world.ItemID("minecraft:" + color + "_shulker_box")
		t[shulker] = []Variant{{
			Kind:            KindTransmute,
			Result:          shulker,
			Count:           1,
			TransmuteBase:   "minecraft:shulker_box",
			TransmuteReagent: world.ItemID("minecraft:" + color + "_dye"),
		}}

		carpet := world.ItemID("minecraft:" + color + "_carpet")
		t[carpet] = []Variant{{
			Kind:            KindTransmute,
			Result:          carpet,
			Count:           8,
			TransmuteBase:   "minecraft:white_carpet",
			TransmuteReagent: world.ItemID("minecraft:" + color + "_dye"),
		}}
	}
	// white_carpet itself is a plain shapeless recipe (wool x2) and is left
	// to the index rather than overridden here.
	delete(t, "minecraft:white_carpet")

	return t
}
