package recipe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/embercraft/companion/internal/world"
)

// GatherSource names the task the companion must run to obtain a raw
// material, one of which every GATHER step in a CraftingPlan carries.
type GatherSource int

const (
	SourceChopTrees GatherSource = iota
	SourceMineOres
	SourceStripMine
	SourceGatherBlocks
	SourceFarm
	SourceHuntMob
	SourceFish
)

func (s GatherSource) String() string {
	switch s {
	case SourceChopTrees:
		return "CHOP_TREES"
	case SourceMineOres:
		return "MINE_ORES"
	case SourceStripMine:
		return "STRIP_MINE"
	case SourceFarm:
		return "FARM"
	case SourceHuntMob:
		return "HUNT_MOB"
	case SourceFish:
		return "FISH"
	default:
		return "GATHER_BLOCKS"
	}
}

// Difficulty classifies one PlanStep for the dispatcher's own risk
// communication to the player; it never gates execution by itself.
type Difficulty int

const (
	Trivial Difficulty = iota
	Easy
	Moderate
	Hard
	Dangerous
	Impossible
)

func (d Difficulty) String() string {
	switch d {
	case Trivial:
		return "TRIVIAL"
	case Easy:
		return "EASY"
	case Moderate:
		return "MODERATE"
	case Hard:
		return "HARD"
	case Dangerous:
		return "DANGEROUS"
	default:
		return "IMPOSSIBLE"
	}
}

// StepKind distinguishes the three PlanStep shapes.
type StepKind int

const (
	StepGather StepKind = iota
	StepSmelt
	StepCraft
)

// PlanStep is one executable unit emitted by flattening a ResolvedTree.
type PlanStep struct {
	Kind       StepKind
	Item       world.ItemID // gather target, or smelt output, or craft output
	Count      int
	Source     GatherSource // meaningful only for StepGather
	ToolTier   world.ToolTier
	SmeltInput world.ItemID // meaningful only for StepSmelt
	Variant    Variant      // meaningful only for StepCraft
	Difficulty Difficulty
}

func (s PlanStep) String() string {
	switch s.Kind {
	case StepGather:
		return fmt.Sprintf("GATHER %dx %s via %s [%s]", s.Count, s.Item, s.Source, s.Difficulty)
	case StepSmelt:
		return fmt.Sprintf("SMELT %dx %s -> %s [%s]", s.Count, s.SmeltInput, s.Item, s.Difficulty)
	default:
		return fmt.Sprintf("CRAFT %dx %s [%s]", s.Count, s.Item, s.Difficulty)
	}
}

// minedGemsAndMinerals drives isMinedGemOrMineral: items that always
// promote a GATHER_BLOCKS step to MINE_ORES with a tool-tier hint attached.
var minedGemsAndMinerals = map[string]world.ToolTier{
	"diamond":     world.TierIron,
	"diamond_ore": world.TierIron,
	"emerald":     world.TierIron,
	"emerald_ore": world.TierIron,
	"lapis_lazuli": world.TierStone,
	"lapis_ore":    world.TierStone,
	"redstone":     world.TierIron,
	"redstone_ore": world.TierIron,
	"coal":         world.TierWood,
	"coal_ore":     world.TierWood,
	"quartz":       world.TierWood,
	"nether_quartz_ore": world.TierWood,
	"amethyst_shard":    world.TierNone,
	"raw_iron":    world.TierStone,
	"iron_ore":    world.TierStone,
	"raw_copper":  world.TierStone,
	"copper_ore":  world.TierStone,
	"raw_gold":    world.TierIron,
	"gold_ore":    world.TierIron,
	"ancient_debris": world.TierDiamond,
}

// mobDropDifficulty classifies mob-drop items by the threat of the mob that
// drops them; used to promote a gather step to HUNT_MOB.
var mobDropDifficulty = map[string]Difficulty{
	"feather":            Easy,
	"string":             Easy,
	"rotten_flesh":        Easy,
	"bone":                Easy,
	"leather":             Easy,
	"egg":                 Trivial,
	"rabbit_hide":         Easy,
	"spider_eye":          Moderate,
	"gunpowder":           Moderate,
	"slime_ball":          Moderate,
	"ender_pearl":         Hard,
	"blaze_rod":           Dangerous,
	"ghast_tear":          Dangerous,
	"phantom_membrane":    Dangerous,
	"nether_star":         Impossible,
	"dragon_breath":       Impossible,
	"totem_of_undying":    Dangerous,
	"shulker_shell":       Dangerous,
	"wither_rose":          Dangerous,
}

// impossibleItems can never be sourced through any task; flatten marks them
// IMPOSSIBLE outright, regardless of classification elsewhere.
var impossibleItems = map[string]bool{
	"command_block":       true,
	"chain_command_block":  true,
	"repeating_command_block": true,
	"end_portal_frame":     true,
	"barrier":              true,
	"structure_block":      true,
	"structure_void":       true,
	"jigsaw":               true,
	"light":                true,
	"bedrock":              true,
	"spawner":               true,
	"debug_stick":          true,
}

// Flatten turns a resolved tree into an ordered list of executable steps
// (topological post-order: leaves first) plus a human-readable report for
// items that turned out unreachable within the tree (always empty for a
// tree produced by a successful Resolve call, since Resolver never returns
// a tree containing an Unknown node — kept here so a caller assembling a
// tree by hand, e.g. in tests, gets the same reporting behavior).
func Flatten(tree *ResolvedTree) (steps []PlanStep, missingReport string) {
	gathered := make(map[world.ItemID]*PlanStep)
	var ordered []PlanStep
	var missing []world.ItemID

	var visit func(n *ResolvedTree)
	visit = func(n *ResolvedTree) {
		if n == nil {
			return
		}
		for _, c := range n.Children {
			visit(c)
		}
		if n.IsLeaf {
			step := gatherStep(n.Leaf.Item, n.Leaf.Count)
			if step.Difficulty == Impossible {
				missing = append(missing, n.Leaf.Item)
			}
			if existing, ok := gathered[n.Leaf.Item]; ok {
				existing.Count += n.Leaf.Count
				return
			}
			gathered[n.Leaf.Item] = &step
			ordered = append(ordered, step)
			return
		}

		switch n.Variant.Kind {
		case KindSmelt:
			ordered = append(ordered, PlanStep{
				Kind:       StepSmelt,
				Item:       n.Result,
				Count:      n.Count,
				SmeltInput: n.Variant.SmeltInput,
				Difficulty: craftDifficulty(n.Result),
			})
		default:
			ordered = append(ordered, PlanStep{
				Kind:       StepCraft,
				Item:       n.Result,
				Count:      n.Count,
				Variant:    n.Variant,
				Difficulty: craftDifficulty(n.Result),
			})
		}
	}
	visit(tree)

	// Re-resolve step identity after in-place count coalescing: gathered map
	// entries were mutated by pointer, ordered holds copies from the time of
	// append, so pull the final counts back out before returning.
	final := make([]PlanStep, 0, len(ordered))
	seen := make(map[world.ItemID]bool)
	for _, s := range ordered {
		if s.Kind != StepGather {
			final = append(final, s)
			continue
		}
		if seen[s.Item] {
			continue
		}
		seen[s.Item] = true
		final = append(final, *gathered[s.Item])
	}

	if len(missing) > 0 {
		missingReport = buildMissingReport(missing)
	}
	return final, missingReport
}

func gatherStep(item world.ItemID, count int) PlanStep {
	bare := bareName(item)
	if impossibleItems[bare] {
		return PlanStep{Kind: StepGather, Item: item, Count: count, Source: SourceGatherBlocks, Difficulty: Impossible}
	}
	if diff, ok := mobDropDifficulty[bare]; ok {
		return PlanStep{Kind: StepGather, Item: item, Count: count, Source: SourceHuntMob, Difficulty: diff}
	}
	if isMinedGemOrMineral(item) {
		tier := minedGemsAndMinerals[bare]
		return PlanStep{Kind: StepGather, Item: item, Count: count, Source: SourceMineOres, ToolTier: tier, Difficulty: mineDifficulty(tier)}
	}
	if isFarmable(bare) {
		return PlanStep{Kind: StepGather, Item: item, Count: count, Source: SourceFarm, Difficulty: Trivial}
	}
	if isFishable(bare) {
		return PlanStep{Kind: StepGather, Item: item, Count: count, Source: SourceFish, Difficulty: Easy}
	}
	if strings.HasSuffix(bare, "_log") || strings.HasSuffix(bare, "_stem") {
		return PlanStep{Kind: StepGather, Item: item, Count: count, Source: SourceChopTrees, Difficulty: Trivial}
	}
	return PlanStep{Kind: StepGather, Item: item, Count: count, Source: SourceGatherBlocks, Difficulty: Easy}
}

func isMinedGemOrMineral(item world.ItemID) bool {
	_, ok := minedGemsAndMinerals[bareName(item)]
	return ok
}

func mineDifficulty(tier world.ToolTier) Difficulty {
	switch {
	case tier >= world.TierDiamond:
		return Dangerous
	case tier >= world.TierIron:
		return Hard
	case tier >= world.TierStone:
		return Moderate
	default:
		return Easy
	}
}

func isFarmable(bare string) bool {
	switch bare {
	case "wheat", "wheat_seeds", "carrot", "potato", "beetroot", "beetroot_seeds",
		"pumpkin_seeds", "melon_seeds", "sugar_cane", "cactus", "bamboo",
		"nether_wart", "sweet_berries":
		return true
	default:
		return false
	}
}

func isFishable(bare string) bool {
	switch bare {
	case "cod", "salmon", "pufferfish", "tropical_fish", "bow", "enchanted_book":
		return true
	default:
		return false
	}
}

func craftDifficulty(result world.ItemID) Difficulty {
	bare := bareName(result)
	if impossibleItems[bare] {
		return Impossible
	}
	if strings.Contains(bare, "netherite") {
		return Dangerous
	}
	if strings.Contains(bare, "diamond") {
		return Hard
	}
	return Easy
}

// buildMissingReport composes the dispatcher-facing message for a plan that
// could not be completed: terminal, prefixed with [CANNOT_CRAFT], and
// explicit that the LLM must not re-invoke the crafting tool.
func buildMissingReport(missing []world.ItemID) string {
	uniq := make(map[world.ItemID]bool)
	var names []string
	for _, item := range missing {
		if uniq[item] {
			continue
		}
		uniq[item] = true
		names = append(names, string(item))
	}
	sort.Strings(names)
	return fmt.Sprintf(
		"[CANNOT_CRAFT] Missing unreachable materials: %s. Do not re-invoke the crafting tool for this item; report the limitation to the player instead.",
		strings.Join(names, ", "),
	)
}
