package tools

import (
	"context"
	"fmt"

	"github.com/embercraft/companion/internal/task"
	"github.com/embercraft/companion/internal/world"
)

// registerLogisticsTools registers transfer_items, interact_container, and
// find_and_fetch_item — the container/inventory movement family.
func registerLogisticsTools(r *Registry) {
	r.Register("transfer_items",
		"Moves items between two tagged container positions, or between the companion's inventory and one tagged position when the other side is omitted.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"item":  map[string]any{"type": "string", "description": "Item id to move"},
				"count": map[string]any{"type": "integer", "description": "How many units (default 64)"},
				"from":  map[string]any{"type": "object", "description": "Source position {x,y,z}; omit to use the companion's own inventory"},
				"to":    map[string]any{"type": "object", "description": "Destination position {x,y,z}; omit to use the companion's own inventory"},
			},
			"required": []string{"item"},
		},
		func(_ context.Context, reg *Registry, ownerID, _ string, args map[string]any) string {
			itemArg, ok := argString(args, "item")
			if !ok {
				return "Error: missing required argument \"item\""
			}
			_, eng, ok := reg.envFor(ownerID)
			if !ok {
				return "Error: no companion found for this owner"
			}
			item := normalizeItemID(itemArg)
			count := argInt(args, "count", 64)
			source := posArg(args, "from")
			dest := posArg(args, "to")
			cont := &task.Continuation{OwnerID: ownerID, PlanContext: "TransferItems", NextSteps: ""}
			t := task.NewTransferItems(source, dest, item, count, cont)
			eng.QueueTask(t)
			return fmt.Sprintf("%s TransferItems task queued for %dx %s.", task.SentinelAsyncTask, count, item)
		},
	)

	r.Register("interact_container",
		"Withdraws or deposits items at a single tagged container position.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"item":     map[string]any{"type": "string", "description": "Item id to withdraw or deposit"},
				"count":    map[string]any{"type": "integer", "description": "How many units (default 64)"},
				"pos":      map[string]any{"type": "object", "description": "Container position {x,y,z}"},
				"withdraw": map[string]any{"type": "boolean", "description": "true to withdraw, false to deposit (default true)"},
			},
			"required": []string{"item", "pos"},
		},
		func(_ context.Context, reg *Registry, ownerID, _ string, args map[string]any) string {
			itemArg, ok := argString(args, "item")
			if !ok {
				return "Error: missing required argument \"item\""
			}
			posVal := posArg(args, "pos")
			if posVal == nil {
				return "Error: missing required argument \"pos\""
			}
			_, eng, ok := reg.envFor(ownerID)
			if !ok {
				return "Error: no companion found for this owner"
			}
			item := normalizeItemID(itemArg)
			count := argInt(args, "count", 64)
			withdraw := true
			if v, ok := args["withdraw"].(bool); ok {
				withdraw = v
			}
			cont := &task.Continuation{OwnerID: ownerID, PlanContext: "InteractContainer", NextSteps: ""}
			t := task.NewInteractContainer(*posVal, withdraw, item, count, cont)
			eng.QueueTask(t)
			verb := "Withdrawing"
			if !withdraw {
				verb = "Depositing"
			}
			return fmt.Sprintf("%s %s %dx %s.", task.SentinelAsyncTask, verb, count, item)
		},
	)

	r.Register("find_and_fetch_item",
		"Looks through tagged storage containers first, then the surrounding area, to bring count units of an item back to the companion's own inventory.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"item":  map[string]any{"type": "string", "description": "Item id to find"},
				"count": map[string]any{"type": "integer", "description": "How many units (default 1)"},
			},
			"required": []string{"item"},
		},
		func(_ context.Context, reg *Registry, ownerID, _ string, args map[string]any) string {
			itemArg, ok := argString(args, "item")
			if !ok {
				return "Error: missing required argument \"item\""
			}
			_, eng, ok := reg.envFor(ownerID)
			if !ok {
				return "Error: no companion found for this owner"
			}
			item := normalizeItemID(itemArg)
			count := argInt(args, "count", 1)
			blocks := blockCandidatesFor(item)
			cont := &task.Continuation{OwnerID: ownerID, PlanContext: "FindAndFetchItem", NextSteps: ""}
			t := task.NewFindAndFetchItem(item, count, blocks, defaultGatherRadius, cont)
			eng.QueueTask(t)
			return fmt.Sprintf("%s Looking for %dx %s.", task.SentinelAsyncTask, count, item)
		},
	)
}

// posArg reads a {x,y,z} object argument into a *world.Pos, returning nil if
// key is absent or malformed.
func posArg(args map[string]any, key string) *world.Pos {
	raw, ok := args[key]
	if !ok {
		return nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	x, xok := obj["x"].(float64)
	y, yok := obj["y"].(float64)
	z, zok := obj["z"].(float64)
	if !xok || !yok || !zok {
		return nil
	}
	pos := world.Pos{X: int(x), Y: int(y), Z: int(z)}
	return &pos
}
