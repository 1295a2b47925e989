package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/embercraft/companion/internal/companion"
	"github.com/embercraft/companion/internal/recipe"
	"github.com/embercraft/companion/internal/task"
	"github.com/embercraft/companion/internal/world"
)

// registerCraftTools registers craft_item, smelt_items, and get_recipe.
// craft_item is the keystone tool: it resolves the full recipe tree for a
// target item, queues exactly one actionable task at a time, and chains
// itself back in via a deterministic continuation until the target is in
// inventory or the plan proves unreachable.
func registerCraftTools(r *Registry) {
	r.Register("craft_item",
		"Crafts or gathers-and-crafts the given item, automatically resolving and running every prerequisite step. Returns immediately; progress is reported as tasks complete.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"item":  map[string]any{"type": "string", "description": "Item id to craft, e.g. minecraft:crafting_table"},
				"count": map[string]any{"type": "integer", "description": "How many to produce (default 1)"},
			},
			"required": []string{"item"},
		},
		craftItem,
	)

	r.Register("smelt_items",
		"Smelts count units of an item in a furnace, mining or crafting whatever raw fuel/input is missing first.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"item":  map[string]any{"type": "string", "description": "Smelted output item id, e.g. minecraft:iron_ingot"},
				"count": map[string]any{"type": "integer", "description": "How many to produce (default 1)"},
			},
			"required": []string{"item"},
		},
		craftItem, // smelting is just another resolved plan; craft_item already queues SMELT steps.
	)

	r.Register("get_recipe",
		"Describes the full resolved crafting plan for an item without queuing any tasks.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"item":  map[string]any{"type": "string", "description": "Item id to describe"},
				"count": map[string]any{"type": "integer", "description": "How many units to plan for (default 1)"},
			},
			"required": []string{"item"},
		},
		getRecipe,
	)
}

func craftItem(ctx context.Context, reg *Registry, ownerID, companionName string, args map[string]any) string {
	itemArg, ok := argString(args, "item")
	if !ok {
		return "Error: missing required argument \"item\""
	}
	item := normalizeItemID(itemArg)
	count := argInt(args, "count", 1)
	if count < 1 {
		count = 1
	}

	env, eng, ok := reg.envFor(ownerID)
	if !ok {
		return "Error: no companion found for this owner"
	}

	if !reg.craftGuard.tryEnter(ownerID, string(item), eng.Ticks()) {
		return task.SentinelCannotCraft + " Already working out a plan for " + string(item) + "; wait for it to progress."
	}

	tree, err := reg.resolver.Resolve(item, count)
	if err != nil {
		if recipe.IsUnknown(err) {
			return fmt.Sprintf("%s %s has no known recipe or raw-material source. %s", task.SentinelCannotCraft, item, recipe.AdviceFor(item))
		}
		return "Error: " + err.Error()
	}
	steps, missingReport := recipe.Flatten(tree)
	if missingReport != "" {
		return missingReport
	}
	if len(steps) == 0 {
		return fmt.Sprintf("Already have everything needed for %s.", item)
	}

	planContext := fmt.Sprintf("Crafting %dx %s", count, item)
	chainArgs, _ := json.Marshal(map[string]any{"item": string(item), "count": count})
	nextSteps := fmt.Sprintf("Call craft_item(%s)", chainArgs)

	if idx := firstUnsatisfiedGather(steps, env.Companion.Inventory); idx >= 0 {
		step := steps[idx]
		cont := &task.Continuation{
			OwnerID:            ownerID,
			PlanContext:        planContext,
			NextSteps:          nextSteps,
			FallbackStrategies: fallbackStrategiesFor(step),
		}
		t, desc := gatherTaskFor(step, cont, reg.announcerFor(ownerID))
		if t == nil {
			return fmt.Sprintf("%s No task is available to gather %s.", task.SentinelCannotCraft, step.Item)
		}
		eng.QueueTask(t)
		return fmt.Sprintf("%s %s to obtain %dx %s for %s.", task.SentinelAsyncTask, desc, step.Count, step.Item, item)
	}

	queued := 0
	craftSteps := craftAndSmeltSteps(steps)
	for i, step := range craftSteps {
		var cont *task.Continuation
		if i == len(craftSteps)-1 {
			cont = &task.Continuation{OwnerID: ownerID, PlanContext: planContext, NextSteps: ""}
		}
		eng.QueueTask(craftOrSmeltTaskFor(step, cont))
		queued++
	}
	if queued == 0 {
		return fmt.Sprintf("Already have everything needed for %s.", item)
	}
	return fmt.Sprintf("%s Crafting %dx %s from materials already on hand.", task.SentinelAsyncTask, count, item)
}

func getRecipe(_ context.Context, reg *Registry, ownerID, companionName string, args map[string]any) string {
	itemArg, ok := argString(args, "item")
	if !ok {
		return "Error: missing required argument \"item\""
	}
	item := normalizeItemID(itemArg)
	count := argInt(args, "count", 1)
	if count < 1 {
		count = 1
	}

	tree, err := reg.resolver.Resolve(item, count)
	if err != nil {
		if recipe.IsUnknown(err) {
			return fmt.Sprintf("%s %s has no known recipe or raw-material source. %s", task.SentinelCannotCraft, item, recipe.AdviceFor(item))
		}
		return "Error: " + err.Error()
	}
	steps, missingReport := recipe.Flatten(tree)
	if missingReport != "" {
		return missingReport
	}
	out := fmt.Sprintf("Plan for %dx %s (%d step(s)):", count, item, len(steps))
	for _, s := range steps {
		out += "\n- " + s.String()
	}
	return out
}

// firstUnsatisfiedGather returns the index of the first GATHER step in steps
// whose required count is not already met by inv, or -1 if every gather
// step is already satisfied.
func firstUnsatisfiedGather(steps []recipe.PlanStep, inv *companion.Inventory) int {
	for i, s := range steps {
		if s.Kind != recipe.StepGather {
			continue
		}
		if !inv.Has(s.Item, s.Count) {
			return i
		}
	}
	return -1
}

// craftAndSmeltSteps filters steps down to the CRAFT/SMELT entries, in
// their original order.
func craftAndSmeltSteps(steps []recipe.PlanStep) []recipe.PlanStep {
	out := make([]recipe.PlanStep, 0, len(steps))
	for _, s := range steps {
		if s.Kind != recipe.StepGather {
			out = append(out, s)
		}
	}
	return out
}

func gatherTaskFor(step recipe.PlanStep, cont *task.Continuation, announcer task.Announcer) (task.Task, string) {
	const defaultRadius = 48.0
	blocks := blockCandidatesFor(step.Item)

	switch step.Source {
	case recipe.SourceChopTrees:
		return task.NewChopTrees(blocks, defaultRadius, step.Count, cont, announcer), "Chopping trees"
	case recipe.SourceMineOres:
		return task.NewMineOres(blocks, defaultRadius, step.ToolTier, step.Count, cont, announcer), "Mining ore"
	case recipe.SourceFarm:
		seed, _ := seedItemFor(step.Item)
		return task.NewFarm(blocks, seed, defaultRadius, step.Count, cont, announcer), "Harvesting crops"
	case recipe.SourceFish:
		return task.NewFish(fishBlocks, defaultRadius, step.Count, cont, announcer), "Fishing"
	case recipe.SourceHuntMob:
		return task.NewHuntMob(huntEncounterBlocks, defaultRadius, step.Count, cont, announcer), "Hunting"
	case recipe.SourceStripMine:
		return nil, "" // strip mining is only ever entered explicitly, never auto-selected by craft_item
	default:
		return task.NewGatherBlocks(blocks, defaultRadius, step.Count, cont, announcer), "Gathering blocks"
	}
}

func craftOrSmeltTaskFor(step recipe.PlanStep, cont *task.Continuation) task.Task {
	if step.Kind == recipe.StepSmelt {
		return task.NewSmelt(step.SmeltInput, step.Item, step.Count, 200, cont)
	}
	runs := step.Variant.Count
	if runs <= 0 {
		runs = 1
	}
	craftRuns := step.Count / runs
	if craftRuns < 1 {
		craftRuns = 1
	}
	return task.NewCraft(step.Variant, craftRuns, cont)
}

// fallbackStrategiesFor suggests alternative tools the model can try after a
// gather step fails, so a failure continuation never has to re-invoke
// craft_item itself.
func fallbackStrategiesFor(step recipe.PlanStep) []string {
	switch step.Source {
	case recipe.SourceMineOres:
		return []string{
			fmt.Sprintf("Try strip_mine to expose more %s instead of surface mining.", step.Item),
			fmt.Sprintf("Try find_and_fetch_item for %s in case a storage container already has some.", step.Item),
		}
	case recipe.SourceChopTrees:
		return []string{"Try gather_blocks with a wider search radius for any log type."}
	case recipe.SourceFarm:
		return []string{"Try find_and_fetch_item in case a storage container already holds the crop."}
	case recipe.SourceHuntMob:
		return []string{"Try find_and_fetch_item in case the drop is already in storage."}
	default:
		return []string{fmt.Sprintf("Try find_and_fetch_item for %s.", step.Item)}
	}
}

func normalizeItemID(raw string) world.ItemID {
	for i := range raw {
		if raw[i] == ':' {
			return world.ItemID(raw)
		}
	}
	return world.ItemID("minecraft:" + raw)
}
