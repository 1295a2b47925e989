package tools

import (
	"context"
	"fmt"

	"github.com/embercraft/companion/internal/task"
	"github.com/embercraft/companion/internal/world"
)

const defaultGatherRadius = 48.0

// registerGatherTools registers the direct, player-invoked gather family:
// chop_trees, mine_ores, gather_blocks, strip_mine, farm_area. Unlike
// craft_item's internal step queuing, these always attach a plain
// completion continuation (no chained "Call ..." directive) since the
// player asked for the action itself, not a multi-step plan.
func registerGatherTools(r *Registry) {
	r.Register("chop_trees",
		"Fells trees for logs. Accepts an item id naming the log type, or omits it to chop any tree nearby.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"item":  map[string]any{"type": "string", "description": "Specific log item id, e.g. minecraft:oak_log"},
				"count": map[string]any{"type": "integer", "description": "How many logs to collect (default 8)"},
			},
		},
		func(_ context.Context, reg *Registry, ownerID, _ string, args map[string]any) string {
			count := argInt(args, "count", 8)
			var blocks []world.BlockID
			if itemArg, ok := argString(args, "item"); ok {
				blocks = blockCandidatesFor(normalizeItemID(itemArg))
			} else {
				blocks = []world.BlockID{
					"minecraft:oak_log", "minecraft:spruce_log", "minecraft:birch_log",
					"minecraft:jungle_log", "minecraft:acacia_log", "minecraft:dark_oak_log",
					"minecraft:mangrove_log", "minecraft:cherry_log",
				}
			}
			return queueDirectGather(reg, ownerID, "ChopTrees", func(cont *task.Continuation, announcer task.Announcer) task.Task {
				return task.NewChopTrees(blocks, defaultGatherRadius, count, cont, announcer)
			})
		},
	)

	r.Register("mine_ores",
		"Mines the given ore, using the companion's best available tool.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"item":  map[string]any{"type": "string", "description": "Ore item id, e.g. minecraft:iron_ore"},
				"count": map[string]any{"type": "integer", "description": "How many to mine (default 8)"},
			},
			"required": []string{"item"},
		},
		func(_ context.Context, reg *Registry, ownerID, _ string, args map[string]any) string {
			itemArg, ok := argString(args, "item")
			if !ok {
				return "Error: missing required argument \"item\""
			}
			item := normalizeItemID(itemArg)
			count := argInt(args, "count", 8)
			tier := oreToolTier(item)
			blocks := blockCandidatesFor(item)
			return queueDirectGather(reg, ownerID, "MineOres", func(cont *task.Continuation, announcer task.Announcer) task.Task {
				return task.NewMineOres(blocks, defaultGatherRadius, tier, count, cont, announcer)
			})
		},
	)

	r.Register("gather_blocks",
		"Collects a generic block (sand, gravel, dirt, cobblestone, etc.) from the surrounding area.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"item":  map[string]any{"type": "string", "description": "Block/item id to gather, e.g. minecraft:sand"},
				"count": map[string]any{"type": "integer", "description": "How many to gather (default 16)"},
			},
			"required": []string{"item"},
		},
		func(_ context.Context, reg *Registry, ownerID, _ string, args map[string]any) string {
			itemArg, ok := argString(args, "item")
			if !ok {
				return "Error: missing required argument \"item\""
			}
			count := argInt(args, "count", 16)
			blocks := blockCandidatesFor(normalizeItemID(itemArg))
			return queueDirectGather(reg, ownerID, "GatherBlocks", func(cont *task.Continuation, announcer task.Announcer) task.Task {
				return task.NewGatherBlocks(blocks, defaultGatherRadius, count, cont, announcer)
			})
		},
	)

	r.Register("farm_area",
		"Harvests mature crops and replants the seed behind each one.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"item":  map[string]any{"type": "string", "description": "Crop item id, e.g. minecraft:wheat"},
				"count": map[string]any{"type": "integer", "description": "How many to harvest (default 16)"},
			},
			"required": []string{"item"},
		},
		func(_ context.Context, reg *Registry, ownerID, _ string, args map[string]any) string {
			itemArg, ok := argString(args, "item")
			if !ok {
				return "Error: missing required argument \"item\""
			}
			item := normalizeItemID(itemArg)
			count := argInt(args, "count", 16)
			seed, farmable := seedItemFor(item)
			if !farmable {
				return fmt.Sprintf("Error: %s is not a known farmable crop", item)
			}
			blocks := blockCandidatesFor(item)
			return queueDirectGather(reg, ownerID, "Farm", func(cont *task.Continuation, announcer task.Announcer) task.Task {
				return task.NewFarm(blocks, seed, defaultGatherRadius, count, cont, announcer)
			})
		},
	)

	r.Register("strip_mine",
		"Digs a straight mining tunnel of the given length from the companion's current position.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"length":    map[string]any{"type": "integer", "description": "Tunnel length in blocks (default 32)"},
				"direction": map[string]any{"type": "string", "description": "One of +x, -x, +z, -z (default +x)"},
			},
		},
		stripMine,
	)
}

func queueDirectGather(reg *Registry, ownerID, taskLabel string, build func(cont *task.Continuation, announcer task.Announcer) task.Task) string {
	_, eng, ok := reg.envFor(ownerID)
	if !ok {
		return "Error: no companion found for this owner"
	}
	cont := &task.Continuation{OwnerID: ownerID, PlanContext: taskLabel, NextSteps: ""}
	t := build(cont, reg.announcerFor(ownerID))
	eng.QueueTask(t)
	return fmt.Sprintf("%s %s task queued.", task.SentinelAsyncTask, taskLabel)
}

func stripMine(_ context.Context, reg *Registry, ownerID, _ string, args map[string]any) string {
	env, eng, ok := reg.envFor(ownerID)
	if !ok {
		return "Error: no companion found for this owner"
	}
	length := argInt(args, "length", 32)
	dirArg, _ := argString(args, "direction")
	direction := directionVector(dirArg)
	cont := &task.Continuation{OwnerID: ownerID, PlanContext: "StripMine", NextSteps: ""}
	t := task.NewStripMine(env.Companion.Position, direction, length, cont, reg.announcerFor(ownerID))
	eng.QueueTask(t)
	return fmt.Sprintf("%s StripMine task queued for %d blocks.", task.SentinelAsyncTask, length)
}

func directionVector(dir string) world.Pos {
	switch dir {
	case "-x":
		return world.Pos{X: -1}
	case "+z":
		return world.Pos{Z: 1}
	case "-z":
		return world.Pos{Z: -1}
	default:
		return world.Pos{X: 1}
	}
}

func oreToolTier(item world.ItemID) world.ToolTier {
	switch bareItemName(item) {
	case "diamond", "diamond_ore", "emerald", "emerald_ore", "redstone", "redstone_ore", "raw_gold", "gold_ore":
		return world.TierIron
	case "raw_iron", "iron_ore", "raw_copper", "copper_ore", "lapis_lazuli", "lapis_ore":
		return world.TierStone
	case "coal", "coal_ore", "quartz":
		return world.TierWood
	case "ancient_debris":
		return world.TierDiamond
	default:
		return world.TierNone
	}
}
