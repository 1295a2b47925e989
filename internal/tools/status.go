package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/embercraft/companion/internal/world"
)

// registerStatusTools registers task_status, get_inventory, and
// scan_surroundings — read-only information tools that never queue a task or
// mutate state, only report it.
func registerStatusTools(r *Registry) {
	r.Register("task_status",
		"Reports what the companion is currently doing and how many tasks are queued behind it.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, reg *Registry, ownerID, _ string, _ map[string]any) string {
			_, eng, ok := reg.envFor(ownerID)
			if !ok {
				return "Error: no companion found for this owner"
			}
			return eng.GetStatusSummary()
		},
	)

	r.Register("get_inventory",
		"Lists everything currently in the companion's inventory.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, reg *Registry, ownerID, _ string, _ map[string]any) string {
			env, _, ok := reg.envFor(ownerID)
			if !ok {
				return "Error: no companion found for this owner"
			}
			stacks := env.Companion.Inventory.Snapshot()
			if len(stacks) == 0 {
				return "Inventory is empty."
			}
			var b strings.Builder
			b.WriteString("Inventory:")
			for _, s := range stacks {
				fmt.Fprintf(&b, "\n- %dx %s", s.Count, s.Item)
			}
			return b.String()
		},
	)

	r.Register("scan_surroundings",
		"Scans for the given block types within a radius of the companion and reports how many were found.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"item":   map[string]any{"type": "string", "description": "Block/item id to scan for, e.g. minecraft:oak_log"},
				"radius": map[string]any{"type": "number", "description": "Search radius in blocks (default 32)"},
			},
			"required": []string{"item"},
		},
		func(ctx context.Context, reg *Registry, ownerID, _ string, args map[string]any) string {
			itemArg, ok := argString(args, "item")
			if !ok {
				return "Error: missing required argument \"item\""
			}
			env, _, ok := reg.envFor(ownerID)
			if !ok {
				return "Error: no companion found for this owner"
			}
			radius := argFloat(args, "radius", 32)
			item := normalizeItemID(itemArg)
			blocks := blockCandidatesFor(item)
			positions, err := env.Adapter.ScanForBlocks(ctx, env.Companion.Position, blocks, radius, 64)
			if err != nil {
				return "Error: " + err.Error()
			}
			if len(positions) == 0 {
				return fmt.Sprintf("No %s found within %.0f blocks.", item, radius)
			}
			nearest := positions[0]
			return fmt.Sprintf("Found %d %s within %.0f blocks; nearest at %s.", len(positions), item, radius, posString(nearest))
		},
	)
}

func posString(p world.Pos) string {
	return p.String()
}
