package tools

import (
	"strings"

	"github.com/embercraft/companion/internal/world"
)

// cropBlock names the block/seed pair behind a farmable item, mirroring
// recipe.isFarmable's item list.
type cropBlock struct {
	block world.BlockID
	seed  world.ItemID
}

var farmBlocks = map[string]cropBlock{
	"wheat":          {"minecraft:wheat", "minecraft:wheat_seeds"},
	"wheat_seeds":    {"minecraft:wheat", "minecraft:wheat_seeds"},
	"carrot":         {"minecraft:carrots", "minecraft:carrot"},
	"potato":         {"minecraft:potatoes", "minecraft:potato"},
	"beetroot":       {"minecraft:beetroots", "minecraft:beetroot_seeds"},
	"beetroot_seeds": {"minecraft:beetroots", "minecraft:beetroot_seeds"},
	"pumpkin_seeds":  {"minecraft:pumpkin_stem", "minecraft:pumpkin_seeds"},
	"melon_seeds":    {"minecraft:melon_stem", "minecraft:melon_seeds"},
	"sugar_cane":     {"minecraft:sugar_cane", "minecraft:sugar_cane"},
	"cactus":         {"minecraft:cactus", "minecraft:cactus"},
	"bamboo":         {"minecraft:bamboo", "minecraft:bamboo"},
	"nether_wart":    {"minecraft:nether_wart", "minecraft:nether_wart"},
}

var fishBlocks = []world.BlockID{"minecraft:water"}

// huntEncounterBlocks stands in for entity presence, per HuntMobTask's
// documented simplification: the core WorldAdapter has no entity-scan
// primitive, so hostile-mob encounters are modeled as block positions the
// host surfaces at spawn or loot-drop points.
var huntEncounterBlocks = []world.BlockID{"minecraft:mob_encounter_point"}

// oreBlocksFor maps a raw or refined mineral item to the ore block(s) that
// must be mined to obtain it, including the deepslate counterpart.
var oreBlocksFor = map[string][]world.BlockID{
	"coal":            {"minecraft:coal_ore", "minecraft:deepslate_coal_ore"},
	"raw_iron":        {"minecraft:iron_ore", "minecraft:deepslate_iron_ore"},
	"iron_ore":        {"minecraft:iron_ore", "minecraft:deepslate_iron_ore"},
	"raw_copper":      {"minecraft:copper_ore", "minecraft:deepslate_copper_ore"},
	"copper_ore":      {"minecraft:copper_ore", "minecraft:deepslate_copper_ore"},
	"raw_gold":        {"minecraft:gold_ore", "minecraft:deepslate_gold_ore"},
	"gold_ore":        {"minecraft:gold_ore", "minecraft:deepslate_gold_ore"},
	"redstone":        {"minecraft:redstone_ore", "minecraft:deepslate_redstone_ore"},
	"lapis_lazuli":    {"minecraft:lapis_ore", "minecraft:deepslate_lapis_ore"},
	"diamond":         {"minecraft:diamond_ore", "minecraft:deepslate_diamond_ore"},
	"emerald":         {"minecraft:emerald_ore", "minecraft:deepslate_emerald_ore"},
	"quartz":          {"minecraft:nether_quartz_ore"},
	"ancient_debris":  {"minecraft:ancient_debris"},
}

// blockCandidatesFor returns the block ids a gather task should scan for to
// obtain item, plus whether item is farmable/fishable (callers choose the
// matching task constructor based on those flags). Falls back to a single
// block sharing item's bare name, true for the majority of raw building
// blocks (sand, gravel, dirt, cobblestone, clay, stone, ...).
func blockCandidatesFor(item world.ItemID) []world.BlockID {
	bare := bareItemName(item)
	if blocks, ok := oreBlocksFor[bare]; ok {
		return blocks
	}
	if crop, ok := farmBlocks[bare]; ok {
		return []world.BlockID{crop.block}
	}
	if strings.HasSuffix(bare, "_log") || strings.HasSuffix(bare, "_stem") {
		return []world.BlockID{world.BlockID("minecraft:" + bare)}
	}
	return []world.BlockID{world.BlockID("minecraft:" + bare)}
}

// seedItemFor returns the seed item a farm task must hold to replant after
// harvesting item, and whether item is farmable at all.
func seedItemFor(item world.ItemID) (world.ItemID, bool) {
	crop, ok := farmBlocks[bareItemName(item)]
	if !ok {
		return "", false
	}
	return crop.seed, true
}

func bareItemName(item world.ItemID) string {
	s := string(item)
	if i := strings.Index(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}
