package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/embercraft/companion/internal/recipe"
	"github.com/embercraft/companion/internal/task"
	"github.com/embercraft/companion/internal/world"
)

// TestCraftItemFromEmptyInventoryChainsThroughGatherAndCraft exercises the
// full self-chaining sequence: craft_item(wooden_pickaxe) with an empty
// inventory queues ChopTrees first; completing it fires a deterministic
// continuation back into craft_item, which this time finds the log already
// on hand and queues both remaining CRAFT steps (planks/stick are folded
// into the pickaxe craft via the recipe resolver, so only the terminal
// CraftTask for wooden_pickaxe carries a continuation).
func TestCraftItemFromEmptyInventoryChainsThroughGatherAndCraft(t *testing.T) {
	reg, _, adapter, executor := newTestRig(newTestResolver())
	// Enough scan hits that the ChopTrees task never runs out of targets
	// before it reaches its required collected count.
	adapter.scanResults = make([]world.Pos, 16)
	for i := range adapter.scanResults {
		adapter.scanResults[i] = world.Pos{X: i}
	}

	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "craft_item", `{"item":"minecraft:wooden_pickaxe","count":1}`)
	if !strings.HasPrefix(result, task.SentinelAsyncTask) {
		t.Fatalf("expected async task sentinel, got %q", result)
	}
	if !strings.Contains(result, "Chopping trees") {
		t.Fatalf("expected a chop-trees task to be queued first, got %q", result)
	}

	_, eng, ok := reg.envFor(testOwnerID)
	if !ok {
		t.Fatal("expected to find test companion")
	}
	active := eng.PeekActiveTask()
	if active != nil {
		t.Fatalf("task only starts on Tick, got active=%v before first tick", active)
	}
	ctx := context.Background()
	eng.Tick(ctx)
	active = eng.PeekActiveTask()
	if active == nil || active.Name() != "ChopTrees" {
		t.Fatalf("expected ChopTrees active, got %v", active)
	}

	// The fake adapter's DestroyBlock never returns real drops, so place
	// the gathered log directly: what matters here is that craft_item's
	// re-entry sees the raw material satisfied, not the break mechanics
	// covered already by internal/task's own gather tests.
	env, _, _ := reg.envFor(testOwnerID)
	env.Companion.Inventory.Add(world.ItemStack{Item: "minecraft:oak_log", Count: 8})

	for i := 0; i < 400 && eng.PeekActiveTask() != nil; i++ {
		eng.Tick(ctx)
	}

	if len(executor.deterministicCalls) == 0 {
		t.Fatalf("expected craft_item to be re-invoked deterministically after ChopTrees completed")
	}
	if !strings.Contains(executor.deterministicCalls[0], "craft_item(") {
		t.Fatalf("expected a craft_item re-invocation, got %v", executor.deterministicCalls)
	}

	// The re-entry should have queued CRAFT steps, not another gather.
	active = eng.PeekActiveTask()
	queued := eng.GetQueueSize()
	if active == nil && queued == 0 {
		t.Fatalf("expected craft steps queued after re-entry, engine is idle")
	}
}

// TestCraftItemReentryGuardBlocksImmediateReinvocation exercises the guard
// directly: two craft_item calls for the same item issued back-to-back (no
// intervening engine tick) must not both resolve a fresh plan.
func TestCraftItemReentryGuardBlocksImmediateReinvocation(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())

	first := reg.Execute(context.Background(), testOwnerID, testCompanionName, "craft_item", `{"item":"minecraft:wooden_pickaxe","count":1}`)
	if strings.HasPrefix(first, task.SentinelCannotCraft) {
		t.Fatalf("first call should succeed, got %q", first)
	}
	second := reg.Execute(context.Background(), testOwnerID, testCompanionName, "craft_item", `{"item":"minecraft:wooden_pickaxe","count":1}`)
	if !strings.HasPrefix(second, task.SentinelCannotCraft) {
		t.Fatalf("expected reentry guard to block immediate re-invocation, got %q", second)
	}

	_, eng, _ := reg.envFor(testOwnerID)
	for i := 0; i < craftReentryCooldownTicks; i++ {
		eng.Tick(context.Background())
	}
	third := reg.Execute(context.Background(), testOwnerID, testCompanionName, "craft_item", `{"item":"minecraft:wooden_pickaxe","count":1}`)
	if strings.HasPrefix(third, task.SentinelCannotCraft) {
		t.Fatalf("expected the guard to clear after the cooldown window, got %q", third)
	}
}

// TestCraftItemUnknownItemReturnsCannotCraft exercises the
// resolver-returns-unknown path directly, with no gather or craft step
// ever queued.
func TestCraftItemUnknownItemReturnsCannotCraft(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "craft_item", `{"item":"minecraft:nonexistent_widget","count":1}`)
	if !strings.HasPrefix(result, task.SentinelCannotCraft) {
		t.Fatalf("expected cannot-craft sentinel, got %q", result)
	}
	_, eng, _ := reg.envFor(testOwnerID)
	if eng.GetQueueSize() != 0 || eng.PeekActiveTask() != nil {
		t.Fatalf("expected no task queued for an unresolvable item")
	}
}

// TestCraftItemAlreadyHaveEverything exercises the zero-steps branch: with
// the target already in inventory, no task should be queued at all.
func TestCraftItemAlreadyHaveEverything(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	env, _, _ := reg.envFor(testOwnerID)
	env.Companion.Inventory.Add(world.ItemStack{Item: "minecraft:wooden_pickaxe", Count: 1})

	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "craft_item", `{"item":"minecraft:wooden_pickaxe","count":1}`)
	if strings.HasPrefix(result, task.SentinelAsyncTask) {
		t.Fatalf("expected no task to be queued, got %q", result)
	}
	_, eng, _ := reg.envFor(testOwnerID)
	if eng.GetQueueSize() != 0 || eng.PeekActiveTask() != nil {
		t.Fatalf("expected no task queued when everything is already on hand")
	}
}

func TestGetRecipeNeverQueuesATask(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "get_recipe", `{"item":"minecraft:wooden_pickaxe"}`)
	if !strings.Contains(result, "Plan for") {
		t.Fatalf("expected a plan description, got %q", result)
	}
	_, eng, _ := reg.envFor(testOwnerID)
	if eng.GetQueueSize() != 0 || eng.PeekActiveTask() != nil {
		t.Fatalf("get_recipe must never queue a task")
	}
}

func TestFallbackStrategiesForMineOresSuggestsStripMine(t *testing.T) {
	step := recipe.PlanStep{Kind: recipe.StepGather, Item: "minecraft:iron_ore", Count: 3, Source: recipe.SourceMineOres, ToolTier: world.TierStone}
	strategies := fallbackStrategiesFor(step)
	if len(strategies) == 0 {
		t.Fatalf("expected at least one fallback strategy")
	}
	found := false
	for _, s := range strategies {
		if strings.Contains(s, "strip_mine") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a strip_mine fallback, got %v", strategies)
	}
}

// TestCraftItemGatherFailureNeverReinvokesCraftItem exercises the S2-style
// failure path: craft_item(iron_pickaxe) queues a MineOres task for
// raw_iron first; when scanning finds nothing, the task fails and its
// continuation must route through ContinueWithLLM carrying fallback
// strategies, and must never be re-invoked deterministically the way a
// successful gather step is.
func TestCraftItemGatherFailureNeverReinvokesCraftItem(t *testing.T) {
	reg, _, _, executor := newTestRig(newTestResolver())

	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "craft_item", `{"item":"minecraft:iron_pickaxe","count":1}`)
	if !strings.Contains(result, "Mining ore") {
		t.Fatalf("expected a mine-ores task queued first, got %q", result)
	}

	_, eng, _ := reg.envFor(testOwnerID)
	ctx := context.Background()
	for i := 0; i < 10 && eng.PeekActiveTask() != nil; i++ {
		eng.Tick(ctx)
	}

	if len(executor.deterministicCalls) != 0 {
		t.Fatalf("a failed gather must never deterministically re-invoke craft_item, got %v", executor.deterministicCalls)
	}
	if len(executor.llmMessages) == 0 {
		t.Fatalf("expected the failure to route through ContinueWithLLM")
	}
	msg := executor.llmMessages[len(executor.llmMessages)-1]
	if !strings.Contains(msg, "Do not re-invoke the tool that produced this plan") {
		t.Fatalf("expected the failure message to forbid re-invoking craft_item, got %q", msg)
	}
	if !strings.Contains(msg, "strip_mine") {
		t.Fatalf("expected a strip_mine fallback strategy in the failure message, got %q", msg)
	}
}
