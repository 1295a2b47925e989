package recipe

import (
	"strings"
	"testing"

	"github.com/embercraft/companion/internal/world"
)

func TestFlattenOrdersLeavesBeforeParents(t *testing.T) {
	r := newTestResolver()
	tree, err := r.Resolve("minecraft:wooden_pickaxe", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	steps, missing := Flatten(tree)
	if missing != "" {
		t.Fatalf("expected no missing report, got %q", missing)
	}

	lastGatherIdx, firstCraftIdx := -1, len(steps)
	for i, s := range steps {
		if s.Kind == StepGather && i > lastGatherIdx {
			lastGatherIdx = i
		}
		if s.Kind == StepCraft && i < firstCraftIdx {
			firstCraftIdx = i
		}
	}
	if lastGatherIdx >= firstCraftIdx {
		t.Fatalf("expected all gather steps before craft steps, gather@%d craft@%d", lastGatherIdx, firstCraftIdx)
	}

	finalStep := steps[len(steps)-1]
	if finalStep.Kind != StepCraft || finalStep.Item != "minecraft:wooden_pickaxe" {
		t.Fatalf("expected final step to craft the target item, got %+v", finalStep)
	}
}

func TestFlattenCoalescesGatherCounts(t *testing.T) {
	tree := &ResolvedTree{
		Result: "minecraft:torch",
		Count:  4,
		Children: []*ResolvedTree{
			{IsLeaf: true, Leaf: world.ItemStack{Item: "minecraft:coal", Count: 1}},
			{
				Result: "minecraft:stick",
				Count:  4,
				Children: []*ResolvedTree{
					{IsLeaf: true, Leaf: world.ItemStack{Item: "minecraft:coal", Count: 2}},
				},
			},
		},
	}
	steps, _ := Flatten(tree)

	var coalCount, coalOccurrences int
	for _, s := range steps {
		if s.Kind == StepGather && s.Item == "minecraft:coal" {
			coalCount += s.Count
			coalOccurrences++
		}
	}
	if coalOccurrences != 1 {
		t.Fatalf("expected coal gather step coalesced into one entry, got %d", coalOccurrences)
	}
	if coalCount != 3 {
		t.Fatalf("expected coalesced count 3, got %d", coalCount)
	}
}

func TestFlattenPromotesOreToMineOres(t *testing.T) {
	tree := &ResolvedTree{
		IsLeaf: true,
		Leaf:   world.ItemStack{Item: "minecraft:diamond", Count: 3},
	}
	steps, _ := Flatten(tree)
	if len(steps) != 1 {
		t.Fatalf("expected single gather step, got %d", len(steps))
	}
	if steps[0].Source != SourceMineOres {
		t.Fatalf("expected MINE_ORES source, got %s", steps[0].Source)
	}
	if steps[0].ToolTier != world.TierIron {
		t.Fatalf("expected iron tool tier hint, got %s", steps[0].ToolTier)
	}
}

func TestFlattenPromotesMobDropToHuntMob(t *testing.T) {
	tree := &ResolvedTree{
		IsLeaf: true,
		Leaf:   world.ItemStack{Item: "minecraft:ender_pearl", Count: 8},
	}
	steps, _ := Flatten(tree)
	if steps[0].Source != SourceHuntMob {
		t.Fatalf("expected HUNT_MOB source, got %s", steps[0].Source)
	}
	if steps[0].Difficulty != Hard {
		t.Fatalf("expected Hard difficulty, got %s", steps[0].Difficulty)
	}
}

func TestMissingReportCarriesCannotCraftPrefixAndNoRetryDirective(t *testing.T) {
	report := buildMissingReport([]world.ItemID{"minecraft:command_block", "minecraft:command_block"})
	if !strings.HasPrefix(report, "[CANNOT_CRAFT]") {
		t.Fatalf("expected [CANNOT_CRAFT] prefix, got %q", report)
	}
	if !strings.Contains(report, "Do not re-invoke") {
		t.Fatalf("expected a no-retry directive, got %q", report)
	}
	if strings.Count(report, "command_block") != 1 {
		t.Fatalf("expected duplicate item deduplicated, got %q", report)
	}
}

func TestPlanStepStringIncludesDifficulty(t *testing.T) {
	step := PlanStep{Kind: StepGather, Item: "minecraft:iron_ore", Count: 3, Source: SourceMineOres, Difficulty: Moderate}
	s := step.String()
	if !strings.Contains(s, "MODERATE") {
		t.Fatalf("expected difficulty in rendered step, got %q", s)
	}
}
