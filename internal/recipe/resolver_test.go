package recipe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embercraft/companion/internal/world"
)

func testIndex() *Index {
	variants := []Variant{
		{Kind: KindShaped, Result: "minecraft:oak_planks", Count: 4, Ingredients: []Ingredient{
			{Item: "minecraft:oak_log", Count: 1},
		}},
		{Kind: KindShaped, Result: "minecraft:stick", Count: 4, Ingredients: []Ingredient{
			{Tag: "minecraft:planks", Count: 2},
		}},
		{Kind: KindShaped, Result: "minecraft:wooden_pickaxe", Count: 1, Ingredients: []Ingredient{
			{Tag: "minecraft:planks", Count: 3},
			{Item: "minecraft:stick", Count: 2},
		}},
		{Kind: KindShaped, Result: "minecraft:iron_pickaxe", Count: 1, Ingredients: []Ingredient{
			{Item: "minecraft:iron_ingot", Count: 3},
			{Item: "minecraft:stick", Count: 2},
		}},
		{Kind: KindShaped, Result: "minecraft:diamond_pickaxe", Count: 1, Ingredients: []Ingredient{
			{Item: "minecraft:diamond", Count: 3},
			{Item: "minecraft:stick", Count: 2},
		}},
		{Kind: KindSmelt, Result: "minecraft:iron_ingot", Count: 1, SmeltInput: "minecraft:raw_iron"},
		// Deliberately circular recipe with no override, to exercise cycle
		// backtracking: crafting "cyclic_a" needs "cyclic_b" and vice versa,
		// and both additionally have no raw fallback.
		{Kind: KindShaped, Result: "minecraft:cyclic_a", Count: 1, Ingredients: []Ingredient{
			{Item: "minecraft:cyclic_b", Count: 1},
		}},
		{Kind: KindShaped, Result: "minecraft:cyclic_b", Count: 1, Ingredients: []Ingredient{
			{Item: "minecraft:cyclic_a", Count: 1},
		}},
	}
	tags := map[world.TagKey][]world.ItemID{
		"minecraft:planks": {"minecraft:oak_planks", "minecraft:spruce_planks"},
	}
	return NewIndex(variants, tags)
}

func newTestResolver() *Resolver {
	return NewResolver(testIndex(), BuildOverrides(), NewClassifier(), 0)
}

func TestResolveRawMaterial(t *testing.T) {
	r := newTestResolver()
	tree, err := r.Resolve("minecraft:raw_iron", 5)
	require.NoError(t, err)
	require.True(t, tree.IsLeaf, "expected leaf tree")
	require.Equal(t, 5, tree.Leaf.Count)
}

func TestResolveCraftChain(t *testing.T) {
	r := newTestResolver()
	tree, err := r.Resolve("minecraft:wooden_pickaxe", 1)
	require.NoError(t, err)
	require.False(t, tree.IsLeaf, "expected internal node")
	require.Equal(t, world.ItemID("minecraft:wooden_pickaxe"), tree.Result)

	var leaves []world.ItemID
	tree.Walk(func(n *ResolvedTree) {
		if n.IsLeaf {
			leaves = append(leaves, n.Leaf.Item)
		}
	})
	if len(leaves) == 0 {
		t.Fatalf("expected at least one raw-material leaf")
	}
	for _, l := range leaves {
		if l != "minecraft:oak_log" {
			t.Fatalf("unexpected leaf item: %s", l)
		}
	}
}

func TestResolveTagPicksShortestLexicalMember(t *testing.T) {
	r := newTestResolver()
	tree, err := r.Resolve("minecraft:stick", 4)
	require.NoError(t, err)
	found := false
	tree.Walk(func(n *ResolvedTree) {
		if n.Result == "minecraft:oak_planks" {
			found = true
		}
		if n.Result == "minecraft:spruce_planks" {
			t.Fatalf("expected shortest lexical tag member oak_planks, got spruce_planks")
		}
	})
	if !found {
		t.Fatalf("expected oak_planks in resolved tree")
	}
}

func TestResolveUnknownItemCarriesAdvice(t *testing.T) {
	r := newTestResolver()
	_, err := r.Resolve("minecraft:nether_star", 1)
	require.Error(t, err, "expected error for loot-only item")
	require.True(t, IsUnknown(err), "expected Unknown error kind, got %v", err)
	re, ok := err.(*ResolveError)
	require.True(t, ok, "expected *ResolveError, got %T", err)
	require.NotEmpty(t, re.Advice)
}

func TestResolveCycleNeverSurfacesAsCycleKind(t *testing.T) {
	r := newTestResolver()
	_, err := r.Resolve("minecraft:cyclic_a", 1)
	require.Error(t, err, "expected an error for an unresolvable circular recipe")
	re, ok := err.(*ResolveError)
	require.True(t, ok, "expected *ResolveError, got %T", err)
	require.NotEqual(t, KindCycle, re.Kind, "cycle error leaked to caller, want it converted to Unknown")
}

func TestResolveNetheriteOverride(t *testing.T) {
	r := newTestResolver()
	tree, err := r.Resolve("minecraft:netherite_pickaxe", 1)
	require.NoError(t, err)
	require.Equal(t, KindSmithing, tree.Variant.Kind)
	var sawBase, sawIngot, sawTemplate bool
	for _, c := range tree.Children {
		switch {
		case c.IsLeaf && c.Leaf.Item == "minecraft:netherite_ingot":
			sawIngot = true
		case c.IsLeaf && c.Leaf.Item == "minecraft:netherite_upgrade_smithing_template":
			sawTemplate = true
		case !c.IsLeaf && c.Result == "minecraft:diamond_pickaxe":
			sawBase = true
		}
	}
	if !sawBase || !sawIngot || !sawTemplate {
		t.Fatalf("expected base, ingot and template children, base=%v ingot=%v template=%v", sawBase, sawIngot, sawTemplate)
	}
}

func TestResolveScalesIngredientCounts(t *testing.T) {
	r := newTestResolver()
	tree, err := r.Resolve("minecraft:oak_planks", 9)
	require.NoError(t, err)
	// 9 planks needed, 4 per craft -> ceil(9/4) = 3 runs -> 3 logs.
	if len(tree.Children) != 1 || tree.Children[0].Leaf.Count != 3 {
		t.Fatalf("expected 3 logs consumed, got %+v", tree.Children)
	}
}

func TestClassifierConcretePowderIsNotRaw(t *testing.T) {
	c := NewClassifier()
	if c.IsRaw("minecraft:red_concrete_powder") {
		t.Fatalf("concrete powder must not classify as raw")
	}
	if !c.IsRaw("minecraft:red_concrete") {
		t.Fatalf("hardened concrete must classify as raw")
	}
}

func TestClassifierOxidizedCopperFamily(t *testing.T) {
	c := NewClassifier()
	cases := []string{
		"minecraft:oxidized_copper",
		"minecraft:waxed_oxidized_cut_copper_stairs",
		"minecraft:weathered_cut_copper_slab",
		"minecraft:exposed_copper",
	}
	for _, item := range cases {
		if !c.IsRaw(world.ItemID(item)) {
			t.Fatalf("expected %s to classify as raw", item)
		}
	}
	if c.IsRaw("minecraft:copper_block") {
		t.Fatalf("un-oxidized copper_block is craftable, must not classify as raw")
	}
}

func TestAdviceForFallsBackToDefault(t *testing.T) {
	advice := AdviceFor("minecraft:some_modded_item")
	if !strings.Contains(advice, "mod-specific") {
		t.Fatalf("expected default advice, got %q", advice)
	}
}
