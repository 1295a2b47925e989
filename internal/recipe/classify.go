package recipe

import (
	"strings"

	"github.com/embercraft/companion/internal/world"
)

// RawMaterials is the curated classification table of items that terminate
// a recipe tree as leaves. It is data-driven on purpose:
// callers may extend it (e.g. from configuration) via Classifier.AddRaw.
//
// The base table covers ores, amethyst buds, nether plants, froglights,
// mob buckets, sculk items, and more, combined with the pattern-matched
// families below (concrete colors, oxidized copper variants).
var baseRawMaterials = []string{
	// Ores and raw-ore forms.
	"coal_ore", "deepslate_coal_ore", "iron_ore", "deepslate_iron_ore",
	"copper_ore", "deepslate_copper_ore", "gold_ore", "deepslate_gold_ore",
	"redstone_ore", "deepslate_redstone_ore", "lapis_ore", "deepslate_lapis_ore",
	"diamond_ore", "deepslate_diamond_ore", "emerald_ore", "deepslate_emerald_ore",
	"nether_gold_ore", "nether_quartz_ore", "ancient_debris",
	"raw_iron", "raw_copper", "raw_gold",
	"coal", "diamond", "emerald", "lapis_lazuli", "redstone", "quartz",
	"gold_ingot", "iron_ingot", "copper_ingot", "netherite_scrap",
	"netherite_ingot", // loot-only via ancient debris + gold, treated as raw for planning purposes

	// Amethyst.
	"amethyst_shard", "small_amethyst_bud", "medium_amethyst_bud",
	"large_amethyst_bud", "amethyst_cluster",

	// Nether plants and blocks.
	"crimson_fungus", "warped_fungus", "crimson_roots", "warped_roots",
	"nether_wart", "weeping_vines", "twisting_vines", "shroomlight",
	"nether_sprouts", "chorus_fruit", "chorus_flower",

	// Froglights and sculk family.
	"ochre_froglight", "verdant_froglight", "pearlescent_froglight",
	"sculk", "sculk_vein", "sculk_sensor", "sculk_shrieker", "sculk_catalyst",
	"echo_shard",

	// Mob drops / bucketed mobs.
	"pufferfish_bucket", "salmon_bucket", "cod_bucket", "tropical_fish_bucket",
	"axolotl_bucket", "tadpole_bucket",

	// Misc world-only materials that have no crafting recipe at all.
	"obsidian", "glowstone_dust", "blaze_rod", "blaze_powder", "ender_pearl",
	"ender_eye", "gunpowder", "slime_ball", "phantom_membrane", "ghast_tear",
	"shulker_shell",
	"clay_ball", "flint", "feather", "string", "leather", "rabbit_hide",
	"bone", "bone_meal", "spider_eye", "rotten_flesh", "egg", "honeycomb",
	"honey_bottle", "wheat_seeds", "wheat", "carrot", "potato", "beetroot",
	"beetroot_seeds", "pumpkin_seeds", "melon_seeds", "sugar_cane", "cactus",
	"bamboo", "kelp", "sand", "red_sand", "gravel", "clay", "dirt", "sandstone",
	"cobblestone", "cobbled_deepslate", "stone", "deepslate", "netherrack",
	"end_stone", "basalt", "blackstone", "mud", "packed_mud", "calcite",
	"tuff", "dripstone_block", "pointed_dripstone", "ice", "snow_block",
	"snowball", "water_bucket", "lava_bucket", "milk_bucket",

	// Wood-tier raw logs (all resolve to raw-material leaves; the planks
	// recipe is the first craft step above them).
	"oak_log", "spruce_log", "birch_log", "jungle_log", "acacia_log",
	"dark_oak_log", "mangrove_log", "cherry_log", "crimson_stem", "warped_stem",

	// Upgrade templates are loot-only (the netherite override flags them
	// raw too, so a direct lookup with no override context still terminates).
	"netherite_upgrade_smithing_template",
}

// oxidizedCopperSuffixes names the oxidation-stage + waxed variants that
// exist for every copper block family; classified by pattern rather than
// one literal entry per color to keep the table maintainable.
var oxidizedCopperSuffixes = []string{
	"copper_block", "cut_copper", "cut_copper_stairs", "cut_copper_slab",
	"exposed_copper", "exposed_cut_copper", "exposed_cut_copper_stairs", "exposed_cut_copper_slab",
	"weathered_copper", "weathered_cut_copper", "weathered_cut_copper_stairs", "weathered_cut_copper_slab",
	"oxidized_copper", "oxidized_cut_copper", "oxidized_cut_copper_stairs", "oxidized_cut_copper_slab",
}

var concreteColors = []string{
	"white", "orange", "magenta", "light_blue", "yellow", "lime", "pink",
	"gray", "light_gray", "cyan", "purple", "blue", "brown", "green", "red", "black",
}

// UnknownAdvice maps an item id to human-readable sourcing advice, used by
// Resolver when it emits a ResolveError with KindUnknown.
var UnknownAdvice = map[world.ItemID]string{
	"minecraft:netherite_upgrade_smithing_template": "Loot-only from bastion remnants.",
	"minecraft:nether_star":                          "Dropped only by the Wither.",
	"minecraft:dragon_breath":                        "Collected from the End Dragon's breath attack.",
	"minecraft:totem_of_undying":                     "Loot-only from Evoker drops.",
	"minecraft:elytra":                                "Loot-only from End Ship chests.",
	"minecraft:command_block":                         "Not obtainable in survival.",
	"minecraft:end_portal_frame":                       "Not obtainable; generated structure block only.",
	"minecraft:barrier":                               "Not obtainable in survival.",
	"minecraft:structure_block":                        "Not obtainable in survival.",
	"minecraft:jigsaw":                                "Not obtainable in survival.",
	"minecraft:light":                                 "Not obtainable in survival.",
}

const defaultAdvice = "No known recipe or raw-material source; likely mod-specific or creative-only."

// AdviceFor returns the sourcing advice for an unresolvable item, falling
// back to a generic message when nothing more specific is known.
func AdviceFor(item world.ItemID) string {
	if advice, ok := UnknownAdvice[item]; ok {
		return advice
	}
	return defaultAdvice
}

// Classifier answers "is this item a raw material" using the base table
// plus pattern families (concrete, oxidized copper) plus any entries added
// at runtime from configuration.
type Classifier struct {
	extra map[world.ItemID]struct{}
}

// NewClassifier builds a Classifier seeded with the built-in table.
func NewClassifier() *Classifier {
	return &Classifier{extra: make(map[world.ItemID]struct{})}
}

// AddRaw registers additional raw-material items, e.g. loaded from a
// configuration file extending the built-in table.
func (c *Classifier) AddRaw(items ...world.ItemID) {
	for _, it := range items {
		c.extra[it] = struct{}{}
	}
}

// IsRaw reports whether item classifies as a raw material.
func (c *Classifier) IsRaw(item world.ItemID) bool {
	bare := bareName(item)
	for _, name := range baseRawMaterials {
		if bare == name {
			return true
		}
	}
	if matchesConcrete(bare) {
		return true
	}
	if matchesOxidizedCopper(bare) {
		return true
	}
	if _, ok := c.extra[item]; ok {
		return true
	}
	return false
}

func bareName(item world.ItemID) string {
	s := string(item)
	if i := strings.Index(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func matchesConcrete(bare string) bool {
	if !strings.HasSuffix(bare, "_concrete_powder") && !strings.HasSuffix(bare, "_concrete") {
		return false
	}
	for _, color := range concreteColors {
		if bare == color+"_concrete_powder" {
			// Concrete powder is craftable (sand+gravel+dye) and is NOT raw;
			// only the hardened concrete block (formed by water contact,
			// outside the crafting system entirely) counts as raw.
			return false
		}
		if bare == color+"_concrete" {
			return true
		}
	}
	return false
}

func matchesOxidizedCopper(bare string) bool {
	waxed := strings.TrimPrefix(bare, "waxed_")
	for _, stage := range []string{"exposed_", "weathered_", "oxidized_"} {
		for _, suffix := range oxidizedCopperSuffixes {
			if !strings.HasPrefix(suffix, stage) {
				continue
			}
			if waxed == suffix {
				return true
			}
		}
	}
	return false
}
