package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/embercraft/companion/internal/llm"
)

func TestRegistryHasAndSchemasReflectAllDefaults(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	want := []string{
		"craft_item", "smelt_items", "get_recipe",
		"chop_trees", "mine_ores", "gather_blocks", "farm_area", "strip_mine",
		"transfer_items", "interact_container", "find_and_fetch_item",
		"task_status", "get_inventory", "scan_surroundings",
		"memory", "emote",
	}
	for _, name := range want {
		if !reg.Has(name) {
			t.Errorf("expected tool %q to be registered and enabled", name)
		}
	}
	if got := len(reg.Schemas()); got != len(want) {
		t.Fatalf("expected %d schemas, got %d", len(want), got)
	}
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "not_a_real_tool", `{}`)
	if !strings.Contains(result, "unknown tool") {
		t.Fatalf("expected unknown-tool error, got %q", result)
	}
}

func TestRegistryExecuteMalformedArgs(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "craft_item", `not json`)
	if !strings.Contains(result, "could not parse arguments") {
		t.Fatalf("expected a parse error, got %q", result)
	}
}

func TestRegistryRespectsBlockedCommands(t *testing.T) {
	_, accessor := newTestAccessorOnly()
	cfg := &llm.Configuration{BlockedCommands: []string{"strip_mine"}}
	reg := NewRegistry(accessor, newTestResolver(), cfg)
	RegisterDefaults(reg)

	if reg.Has("strip_mine") {
		t.Fatalf("expected strip_mine to be blocked")
	}
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "strip_mine", `{}`)
	if !strings.Contains(result, "disabled") {
		t.Fatalf("expected a disabled-tool error, got %q", result)
	}
	for _, s := range reg.Schemas() {
		if s.Name == "strip_mine" {
			t.Fatalf("blocked tool must not appear in Schemas()")
		}
	}
}

func TestRegistryRespectsToolEnabledFunc(t *testing.T) {
	_, accessor := newTestAccessorOnly()
	cfg := &llm.Configuration{ToolEnabled: func(name string) bool { return name != "emote" }}
	reg := NewRegistry(accessor, newTestResolver(), cfg)
	RegisterDefaults(reg)

	if reg.Has("emote") {
		t.Fatalf("expected emote to be disabled by ToolEnabled")
	}
	if !reg.Has("memory") {
		t.Fatalf("expected memory to remain enabled")
	}
}

func TestRegistryUnknownOwnerReturnsError(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), "someone-else", testCompanionName, "task_status", `{}`)
	if !strings.Contains(result, "no companion found") {
		t.Fatalf("expected a no-companion error, got %q", result)
	}
}
