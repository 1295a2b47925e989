package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/embercraft/companion/internal/world"
)

func TestTaskStatusReportsIdleWhenNothingQueued(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "task_status", `{}`)
	if !strings.Contains(result, "idle") {
		t.Fatalf("expected idle status, got %q", result)
	}
}

func TestGetInventoryReportsEmpty(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "get_inventory", `{}`)
	if result != "Inventory is empty." {
		t.Fatalf("expected empty inventory message, got %q", result)
	}
}

func TestGetInventoryListsStacks(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	env, _, _ := reg.envFor(testOwnerID)
	env.Companion.Inventory.Add(world.ItemStack{Item: "minecraft:oak_log", Count: 3})

	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "get_inventory", `{}`)
	if !strings.Contains(result, "3x minecraft:oak_log") {
		t.Fatalf("expected the stack listed, got %q", result)
	}
}

func TestScanSurroundingsRequiresItem(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "scan_surroundings", `{}`)
	if !strings.HasPrefix(result, "Error:") {
		t.Fatalf("expected a missing-argument error, got %q", result)
	}
}

func TestScanSurroundingsReportsNoneFound(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "scan_surroundings", `{"item":"minecraft:diamond_ore"}`)
	if !strings.Contains(result, "No minecraft:diamond_ore found") {
		t.Fatalf("expected a not-found report, got %q", result)
	}
}

func TestScanSurroundingsReportsNearest(t *testing.T) {
	reg, _, adapter, _ := newTestRig(newTestResolver())
	adapter.scanResults = []world.Pos{{X: 5, Y: 64, Z: 5}, {X: 10, Y: 64, Z: 10}}

	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "scan_surroundings", `{"item":"minecraft:oak_log","radius":16}`)
	if !strings.Contains(result, "Found 2") {
		t.Fatalf("expected a count of 2, got %q", result)
	}
	if !strings.Contains(result, "(5, 64, 5)") {
		t.Fatalf("expected the nearest position reported, got %q", result)
	}
}
