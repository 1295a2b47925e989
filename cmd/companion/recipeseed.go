package main

import (
	"github.com/embercraft/companion/internal/recipe"
	"github.com/embercraft/companion/internal/world"
)

// seedRecipes returns a small illustrative crafting graph. The real recipe
// table is game-data the host engine owns (every item/block the host
// registers); nothing in this tree ships a full vanilla recipe set. This
// seed exists only so the demo harness's craft_item/get_recipe tools have
// something non-trivial to resolve.
func seedRecipes() ([]recipe.Variant, map[world.TagKey][]world.ItemID) {
	variants := []recipe.Variant{
		{
			Kind:        recipe.KindShapeless,
			Result:      "minecraft:oak_planks",
			Count:       4,
			Ingredients: []recipe.Ingredient{{Item: "minecraft:oak_log", Count: 1}},
		},
		{
			Kind:        recipe.KindShapeless,
			Result:      "minecraft:stick",
			Count:       4,
			Ingredients: []recipe.Ingredient{{Item: "minecraft:oak_planks", Count: 2}},
		},
		{
			Kind:   recipe.KindShaped,
			Result: "minecraft:crafting_table",
			Count:  1,
			Ingredients: []recipe.Ingredient{
				{Item: "minecraft:oak_planks", Count: 4},
			},
		},
		{
			Kind:   recipe.KindSmelt,
			Result: "minecraft:iron_ingot",
			Count:  1,
			SmeltInput: "minecraft:iron_ore",
			CookTicks:  200,
		},
		{
			Kind:   recipe.KindShaped,
			Result: "minecraft:iron_pickaxe",
			Count:  1,
			Ingredients: []recipe.Ingredient{
				{Item: "minecraft:iron_ingot", Count: 3},
				{Item: "minecraft:stick", Count: 2},
			},
		},
		{
			Kind:   recipe.KindShaped,
			Result: "minecraft:furnace",
			Count:  1,
			Ingredients: []recipe.Ingredient{
				{Tag: "minecraft:cobblestone_like", Count: 8},
			},
		},
	}
	tagMembers := map[world.TagKey][]world.ItemID{
		"minecraft:cobblestone_like": {"minecraft:cobblestone", "minecraft:stone"},
	}
	return variants, tagMembers
}
