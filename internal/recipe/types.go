// Package recipe resolves a target item into a tree of raw-material leaves
// and intermediate craft/smelt/smithing/transmute steps.
package recipe

import (
	"fmt"

	"github.com/embercraft/companion/internal/world"
)

// VariantKind distinguishes the four recipe shapes the index can hold.
type VariantKind int

const (
	// KindShaped is a shaped crafting-table recipe: ingredient positions
	// matter to the host engine but not to resolution, only the multiset
	// of ingredients does.
	KindShaped VariantKind = iota
	// KindShapeless is a shapeless crafting-table recipe.
	KindShapeless
	// KindSmelt is a furnace/smoker/campfire-style single-input recipe.
	KindSmelt
	// KindSmithing is a smithing-table transform: base + addition +
	// template -> result.
	KindSmithing
	// KindTransmute is a base + reagent -> result recipe that is circular
	// on the base (e.g. dye <-> dyed block) and therefore never chosen by
	// plain recipe lookup; only manual overrides emit it.
	KindTransmute
)

// Ingredient is one slot in a recipe: either a concrete item or a tag that
// Resolver.pickBestVariant must narrow to a concrete item.
type Ingredient struct {
	Item  world.ItemID // set when this slot is a concrete item
	Tag   world.TagKey // set when this slot is a tag (Item is empty)
	Count int
}

// IsTag reports whether this ingredient names a tag rather than a concrete item.
func (i Ingredient) IsTag() bool { return i.Tag != "" }

func (i Ingredient) String() string {
	if i.IsTag() {
		return fmt.Sprintf("%dx #%s", i.Count, i.Tag)
	}
	return fmt.Sprintf("%dx %s", i.Count, i.Item)
}

// Variant is one recipe that can produce Result. Phase ordering during
// lookup (shaped, shapeless, smelt, smithing) is encoded
// by Kind, not by list position, so the index can store variants in any
// order.
type Variant struct {
	Kind   VariantKind
	Result world.ItemID
	Count  int // result count per craft

	// Shaped/Shapeless/Smithing ingredients.
	Ingredients []Ingredient

	// Smelt-only fields.
	SmeltInput   world.ItemID
	CookTicks    int // metadata only, never consulted by resolution

	// Smithing-only fields (also populated via Ingredients for generic
	// scaling, kept named here for clarity at call sites).
	SmithingBase     world.ItemID
	SmithingAddition world.ItemID
	SmithingTemplate world.ItemID

	// Transmute-only fields.
	TransmuteBase   world.ItemID
	TransmuteReagent world.ItemID
}

// resultCount returns the effective output count, defaulting to 1.
func (v Variant) resultCount() int {
	if v.Count <= 0 {
		return 1
	}
	return v.Count
}

// Index is an immutable mapping from result item to its candidate recipe
// variants.
type Index struct {
	byResult map[world.ItemID][]Variant
	// tagMembers maps a tag to its member items, sorted by lexical item id
	// ascending so pickBestVariant's "shortest lexical id" rule is a simple
	// linear scan over pre-sorted data.
	tagMembers map[world.TagKey][]world.ItemID
}

// NewIndex builds an Index from variants and tag membership data. Both maps
// are copied defensively so the caller's slices remain mutable.
func NewIndex(variants []Variant, tagMembers map[world.TagKey][]world.ItemID) *Index {
	idx := &Index{
		byResult:   make(map[world.ItemID][]Variant),
		tagMembers: make(map[world.TagKey][]world.ItemID, len(tagMembers)),
	}
	for _, v := range variants {
		idx.byResult[v.Result] = append(idx.byResult[v.Result], v)
	}
	for tag, members := range tagMembers {
		cp := append([]world.ItemID(nil), members...)
		sortItemIDsByLexLength(cp)
		idx.tagMembers[tag] = cp
	}
	return idx
}

// VariantsFor returns the recipe variants producing item, ordered by lookup
// phase: shaped, then shapeless, then smelt, then smithing.
// Transmute variants are never returned here — they only ever come from the
// manual override table, because recipe-index lookup never resolves a
// structurally circular recipe.
func (idx *Index) VariantsFor(item world.ItemID) []Variant {
	all := idx.byResult[item]
	if len(all) == 0 {
		return nil
	}
	ordered := make([]Variant, 0, len(all))
	for _, kind := range []VariantKind{KindShaped, KindShapeless, KindSmelt, KindSmithing} {
		for _, v := range all {
			if v.Kind == kind {
				ordered = append(ordered, v)
			}
		}
	}
	return ordered
}

// BestTagMember returns the shortest lexical item id belonging to tag, per
// the deterministic tag-resolution rule (e.g. it picks
// "shulker_box" over "blue_shulker_box").
func (idx *Index) BestTagMember(tag world.TagKey) (world.ItemID, bool) {
	members := idx.tagMembers[tag]
	if len(members) == 0 {
		return "", false
	}
	return members[0], true
}

func sortItemIDsByLexLength(items []world.ItemID) {
	// Shortest string first; ties broken lexically. Simple insertion sort
	// since tag membership lists are small (dozens, not thousands).
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && lessItemID(items[j], items[j-1]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

func lessItemID(a, b world.ItemID) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// ResolvedTree is the output of a successful resolve: either a raw-material
// leaf or an internal craft/smelt/smithing step with resolved children.
type ResolvedTree struct {
	// Leaf fields — set when this node is a raw material.
	IsLeaf   bool
	Leaf     world.ItemStack
	ToolTier world.ToolTier // hint only, never a failure reason

	// Internal node fields — set when this node is a craft/smelt step.
	Result   world.ItemID
	Count    int // units of Result this step yields in total (after scaling)
	Variant  Variant
	Children []*ResolvedTree
}

// Walk performs a pre-order traversal of the tree, visiting this node
// before its children.
func (t *ResolvedTree) Walk(visit func(*ResolvedTree)) {
	if t == nil {
		return
	}
	visit(t)
	for _, c := range t.Children {
		c.Walk(visit)
	}
}
