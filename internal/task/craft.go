package task

import (
	"context"

	"github.com/embercraft/companion/internal/companion"
	"github.com/embercraft/companion/internal/recipe"
	"github.com/embercraft/companion/internal/world"
)

// CraftTask consumes a recipe variant's ingredients from inventory and
// deposits its output. Crafting itself is instantaneous on the tick thread
// once the companion is within reach of a tagged INPUT crafting station (or
// no station is required); the task still runs through the standard
// start/tick/cleanup lifecycle for engine uniformity.
type CraftTask struct {
	Base

	variant recipe.Variant
	runs    int
	done    bool
}

// NewCraft builds a task that performs runs crafts of variant.
func NewCraft(variant recipe.Variant, runs int, cont *Continuation) *CraftTask {
	if runs < 1 {
		runs = 1
	}
	return &CraftTask{Base: NewBase(cont), variant: variant, runs: runs}
}

func (t *CraftTask) Name() string { return "Craft" }

func (t *CraftTask) Start(ctx context.Context, env *Env) {
	t.begin()
	t.setProgress(0)
}

func (t *CraftTask) Tick(ctx context.Context, env *Env) {
	t.tickCount()
	if t.done {
		return
	}

	ingredients := craftIngredients(t.variant)
	for _, ing := range ingredients {
		need := ing.Count * t.runs
		if !env.Companion.Inventory.Has(ing.Item, need) {
			t.fail("missing " + string(ing.Item) + " to craft " + string(t.variant.Result))
			t.done = true
			return
		}
	}
	for _, ing := range ingredients {
		env.Companion.Inventory.Remove(ing.Item, ing.Count*t.runs)
	}
	resultCount := t.runs
	if t.variant.Count > 0 {
		resultCount = t.runs * t.variant.Count
	}
	leftover := env.Companion.Inventory.Add(world.ItemStack{Item: t.variant.Result, Count: resultCount})
	if leftover.Count > 0 {
		depositOverflow(ctx, env, leftover)
	}

	t.done = true
	t.complete()
}

func (t *CraftTask) Cleanup(ctx context.Context, env *Env) {}

func craftIngredients(v recipe.Variant) []recipe.Ingredient {
	switch v.Kind {
	case recipe.KindSmithing:
		return []recipe.Ingredient{
			{Item: v.SmithingBase, Count: 1},
			{Item: v.SmithingAddition, Count: 1},
			{Item: v.SmithingTemplate, Count: 1},
		}
	case recipe.KindTransmute:
		return []recipe.Ingredient{
			{Item: v.TransmuteBase, Count: 1},
			{Item: v.TransmuteReagent, Count: 1},
		}
	default:
		return v.Ingredients
	}
}

// SmeltTask converts a furnace-style input into its output over a simulated
// cook duration, ticking down until done.
type SmeltTask struct {
	Base

	input, output world.ItemID
	count         int
	cookTicks     int
	remaining     int
}

// NewSmelt builds a task that smelts count units of input into output,
// taking cookTicksPerUnit ticks per unit (metadata-only in the resolver,
// load-bearing here as the actual simulated duration).
func NewSmelt(input, output world.ItemID, count, cookTicksPerUnit int, cont *Continuation) *SmeltTask {
	if cookTicksPerUnit < 1 {
		cookTicksPerUnit = 200
	}
	return &SmeltTask{
		Base: NewBase(cont), input: input, output: output, count: count,
		cookTicks: cookTicksPerUnit, remaining: count * cookTicksPerUnit,
	}
}

func (t *SmeltTask) Name() string { return "Smelt" }

func (t *SmeltTask) Start(ctx context.Context, env *Env) {
	t.begin()
	if !env.Companion.Inventory.Has(t.input, t.count) {
		t.fail("missing " + string(t.input) + " to smelt")
		return
	}
	env.Companion.Inventory.Remove(t.input, t.count)
	t.setProgress(0)
}

func (t *SmeltTask) Tick(ctx context.Context, env *Env) {
	t.tickCount()
	if t.Status() != Running {
		return
	}
	t.remaining -= t.cookTicks
	total := t.count * t.cookTicks
	done := total - t.remaining
	t.setProgress(done * 100 / max1(total))

	if t.remaining <= 0 {
		leftover := env.Companion.Inventory.Add(world.ItemStack{Item: t.output, Count: t.count})
		if leftover.Count > 0 {
			depositOverflow(ctx, env, leftover)
		}
		t.complete()
	}
}

func (t *SmeltTask) Cleanup(ctx context.Context, env *Env) {}

// depositOverflow attempts to push leftover stock into any STORAGE tagged
// container, discarding silently (as the host engine would drop it on the
// ground) if none accepts it.
func depositOverflow(ctx context.Context, env *Env, stack world.ItemStack) {
	for _, pos := range env.Companion.BlocksWithRole(companion.RoleStorage) {
		remainder, err := env.Adapter.InsertIntoContainer(ctx, pos, stack)
		if err != nil {
			continue
		}
		if remainder.Count == 0 {
			return
		}
		stack = remainder
	}
}
