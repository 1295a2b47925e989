package task

import (
	"context"
	"testing"

	"github.com/embercraft/companion/internal/recipe"
	"github.com/embercraft/companion/internal/world"
)

func TestCraftTaskConsumesIngredientsAndProducesResult(t *testing.T) {
	env, _ := newTestEnv()
	env.Companion.Inventory.Add(world.ItemStack{Item: "minecraft:oak_planks", Count: 4})

	variant := recipe.Variant{
		Kind:   recipe.KindShapeless,
		Result: "minecraft:crafting_table",
		Count:  1,
		Ingredients: []recipe.Ingredient{
			{Item: "minecraft:oak_planks", Count: 4},
		},
	}
	tsk := NewCraft(variant, 1, nil)
	ctx := context.Background()
	tsk.Start(ctx, env)
	tsk.Tick(ctx, env)

	if tsk.Status() != Completed {
		t.Fatalf("status = %v, want Completed", tsk.Status())
	}
	if env.Companion.Inventory.CountOf("minecraft:oak_planks") != 0 {
		t.Fatalf("expected planks fully consumed")
	}
	if env.Companion.Inventory.CountOf("minecraft:crafting_table") != 1 {
		t.Fatalf("expected one crafting table produced")
	}
}

func TestCraftTaskFailsWhenIngredientsMissing(t *testing.T) {
	env, _ := newTestEnv()

	variant := recipe.Variant{
		Kind:   recipe.KindShapeless,
		Result: "minecraft:crafting_table",
		Count:  1,
		Ingredients: []recipe.Ingredient{
			{Item: "minecraft:oak_planks", Count: 4},
		},
	}
	tsk := NewCraft(variant, 1, nil)
	ctx := context.Background()
	tsk.Start(ctx, env)
	tsk.Tick(ctx, env)

	if tsk.Status() != Failed {
		t.Fatalf("status = %v, want Failed", tsk.Status())
	}
}

func TestCraftTaskScalesIngredientsByRunCount(t *testing.T) {
	env, _ := newTestEnv()
	env.Companion.Inventory.Add(world.ItemStack{Item: "minecraft:stick", Count: 2})
	env.Companion.Inventory.Add(world.ItemStack{Item: "minecraft:coal", Count: 2})

	variant := recipe.Variant{
		Kind:   recipe.KindShaped,
		Result: "minecraft:torch",
		Count:  4,
		Ingredients: []recipe.Ingredient{
			{Item: "minecraft:stick", Count: 1},
			{Item: "minecraft:coal", Count: 1},
		},
	}
	tsk := NewCraft(variant, 2, nil)
	ctx := context.Background()
	tsk.Start(ctx, env)
	tsk.Tick(ctx, env)

	if tsk.Status() != Completed {
		t.Fatalf("status = %v, want Completed", tsk.Status())
	}
	if env.Companion.Inventory.CountOf("minecraft:torch") != 8 {
		t.Fatalf("expected 8 torches (2 runs x 4 per craft), got %d", env.Companion.Inventory.CountOf("minecraft:torch"))
	}
	if env.Companion.Inventory.CountOf("minecraft:stick") != 0 || env.Companion.Inventory.CountOf("minecraft:coal") != 0 {
		t.Fatalf("expected all ingredients consumed")
	}
}

func TestSmeltTaskCompletesAfterCookDuration(t *testing.T) {
	env, _ := newTestEnv()
	env.Companion.Inventory.Add(world.ItemStack{Item: "minecraft:raw_iron", Count: 2})

	tsk := NewSmelt("minecraft:raw_iron", "minecraft:iron_ingot", 2, 10, nil)
	ctx := context.Background()
	tsk.Start(ctx, env)

	if tsk.Status() != Running {
		t.Fatalf("status after start = %v, want Running", tsk.Status())
	}
	if env.Companion.Inventory.CountOf("minecraft:raw_iron") != 0 {
		t.Fatalf("expected raw iron consumed immediately on start")
	}

	for i := 0; i < 2 && tsk.Status() == Running; i++ {
		tsk.Tick(ctx, env)
	}

	if tsk.Status() != Completed {
		t.Fatalf("status = %v, want Completed", tsk.Status())
	}
	if env.Companion.Inventory.CountOf("minecraft:iron_ingot") != 2 {
		t.Fatalf("expected 2 iron ingots produced")
	}
}

func TestSmeltTaskFailsWithoutInput(t *testing.T) {
	env, _ := newTestEnv()
	tsk := NewSmelt("minecraft:raw_iron", "minecraft:iron_ingot", 1, 10, nil)
	ctx := context.Background()
	tsk.Start(ctx, env)

	if tsk.Status() != Failed {
		t.Fatalf("status = %v, want Failed", tsk.Status())
	}
}
