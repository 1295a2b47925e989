package recipe

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/embercraft/companion/internal/world"
)

// MaxDepth bounds recursive resolution so a malformed or adversarial recipe
// graph can't blow the stack; a legitimate crafting tree never nests this
// deep.
const MaxDepth = 16

const defaultCacheSize = 4096

// Resolver turns a target item and count into a ResolvedTree of raw-material
// leaves and intermediate craft steps. It holds no mutable world state; the
// same Resolver can be shared across companions.
type Resolver struct {
	index      *Index
	overrides  OverrideTable
	classifier *Classifier
	cache      *lru.Cache[cacheKey, *ResolvedTree]
}

type cacheKey struct {
	item  world.ItemID
	count int
}

// NewResolver builds a Resolver over the given recipe index, manual
// override table, and raw-material classifier. cacheSize bounds the
// memoization cache; pass 0 to use a sensible default.
func NewResolver(index *Index, overrides OverrideTable, classifier *Classifier, cacheSize int) *Resolver {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[cacheKey, *ResolvedTree](cacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which cannot happen
		// given the guard above.
		panic(err)
	}
	return &Resolver{index: index, overrides: overrides, classifier: classifier, cache: cache}
}

// Resolve builds the craft tree needed to produce count units of item.
func (r *Resolver) Resolve(item world.ItemID, count int) (*ResolvedTree, error) {
	if count <= 0 {
		count = 1
	}
	return r.resolve(item, count, 0, make(map[world.ItemID]bool))
}

func (r *Resolver) resolve(item world.ItemID, need, depth int, path map[world.ItemID]bool) (*ResolvedTree, error) {
	if depth > MaxDepth {
		// DepthExceeded is treated as Unknown for the branch that hit the
		// cap: it never reaches the caller as its own kind.
		return nil, unknownErr(item, "Recipe chain too deep to resolve safely.")
	}
	if path[item] {
		return nil, cycleErr(item)
	}

	if r.classifier.IsRaw(item) {
		return &ResolvedTree{
			IsLeaf: true,
			Leaf:   world.ItemStack{Item: item, Count: need},
		}, nil
	}

	key := cacheKey{item: item, count: need}
	if cached, ok := r.cache.Get(key); ok {
		return cached, nil
	}

	variants, hasVariants := r.overrides.Lookup(item)
	if !hasVariants {
		variants = r.index.VariantsFor(item)
	}
	if len(variants) == 0 {
		return nil, unknownErr(item, AdviceFor(item))
	}
	variants = orderedByPriority(variants)

	childPath := make(map[world.ItemID]bool, len(path)+1)
	for k := range path {
		childPath[k] = true
	}
	childPath[item] = true

	var lastErr error = cycleErr(item)
	for _, variant := range variants {
		children, err := r.resolveIngredients(variant, need, depth, childPath)
		if err != nil {
			lastErr = err
			continue
		}
		runs := int(math.Ceil(float64(need) / float64(variant.resultCount())))
		if runs < 1 {
			runs = 1
		}
		tree := &ResolvedTree{
			Result:   item,
			Count:    runs * variant.resultCount(),
			Variant:  variant,
			Children: children,
		}
		r.cache.Add(key, tree)
		return tree, nil
	}

	// Every variant failed (cycle, depth, or unknown ingredient); the
	// failure never surfaces as Cycle or DepthExceeded at this branch.
	if IsUnknown(lastErr) {
		return nil, lastErr
	}
	return nil, unknownErr(item, AdviceFor(item))
}

// resolveIngredients resolves every ingredient slot of variant for a total
// of need units of its result, returning the first error encountered so the
// caller can backtrack to the next variant.
func (r *Resolver) resolveIngredients(variant Variant, need, depth int, path map[world.ItemID]bool) ([]*ResolvedTree, error) {
	runs := int(math.Ceil(float64(need) / float64(variant.resultCount())))
	if runs < 1 {
		runs = 1
	}

	var children []*ResolvedTree
	for _, ing := range variantIngredients(variant) {
		childItem := ing.Item
		if ing.IsTag() {
			resolved, ok := r.index.BestTagMember(ing.Tag)
			if !ok {
				return nil, unknownErr(world.ItemID("#"+string(ing.Tag)), "Tag has no known members.")
			}
			childItem = resolved
		}
		childTree, err := r.resolve(childItem, ing.Count*runs, depth+1, path)
		if err != nil {
			return nil, err
		}
		children = append(children, childTree)
	}
	return children, nil
}

// orderedByPriority re-sorts variants by phase (shaped, shapeless, smelt,
// smithing) ahead of trying them; override-table entries and other
// single-variant lists pass through unchanged.
func orderedByPriority(variants []Variant) []Variant {
	if len(variants) <= 1 {
		return variants
	}
	ordered := make([]Variant, 0, len(variants))
	for _, kind := range []VariantKind{KindShaped, KindShapeless, KindSmelt, KindSmithing, KindTransmute} {
		for _, v := range variants {
			if v.Kind == kind {
				ordered = append(ordered, v)
			}
		}
	}
	return ordered
}

// variantIngredients flattens a variant's kind-specific fields into a
// uniform ingredient list for resolution.
func variantIngredients(v Variant) []Ingredient {
	switch v.Kind {
	case KindSmelt:
		return []Ingredient{{Item: v.SmeltInput, Count: 1}}
	case KindSmithing:
		return []Ingredient{
			{Item: v.SmithingBase, Count: 1},
			{Item: v.SmithingAddition, Count: 1},
			{Item: v.SmithingTemplate, Count: 1},
		}
	case KindTransmute:
		return []Ingredient{
			{Item: v.TransmuteBase, Count: 1},
			{Item: v.TransmuteReagent, Count: 1},
		}
	default:
		return v.Ingredients
	}
}

