package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/embercraft/companion/internal/task"
)

func TestChopTreesQueuesAsyncTask(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "chop_trees", `{"count":4}`)
	if !strings.HasPrefix(result, task.SentinelAsyncTask) {
		t.Fatalf("expected async task sentinel, got %q", result)
	}
	_, eng, _ := reg.envFor(testOwnerID)
	if eng.GetQueueSize() != 1 {
		t.Fatalf("expected exactly one task queued, got %d", eng.GetQueueSize())
	}
}

func TestMineOresRequiresItemArgument(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "mine_ores", `{}`)
	if !strings.HasPrefix(result, "Error:") {
		t.Fatalf("expected a missing-argument error, got %q", result)
	}
	_, eng, _ := reg.envFor(testOwnerID)
	if eng.GetQueueSize() != 0 {
		t.Fatalf("a rejected call must not queue a task")
	}
}

func TestFarmAreaRejectsNonFarmableItem(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "farm_area", `{"item":"minecraft:obsidian"}`)
	if !strings.Contains(result, "not a known farmable crop") {
		t.Fatalf("expected a farmable-crop rejection, got %q", result)
	}
}

func TestFarmAreaQueuesFarmTaskForKnownCrop(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "farm_area", `{"item":"minecraft:wheat","count":4}`)
	if !strings.HasPrefix(result, task.SentinelAsyncTask) {
		t.Fatalf("expected async task sentinel, got %q", result)
	}
	_, eng, _ := reg.envFor(testOwnerID)
	active := eng.PeekActiveTask()
	eng.Tick(context.Background())
	active = eng.PeekActiveTask()
	if active == nil || active.Name() != "Farm" {
		t.Fatalf("expected a Farm task active, got %v", active)
	}
}

func TestStripMineAcceptsDirectionAndLength(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "strip_mine", `{"length":16,"direction":"-z"}`)
	if !strings.Contains(result, "16 blocks") {
		t.Fatalf("expected the tunnel length echoed back, got %q", result)
	}
}

func TestGatherBlocksUnknownOwnerReturnsError(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), "nobody", testCompanionName, "gather_blocks", `{"item":"minecraft:sand","count":4}`)
	if !strings.Contains(result, "no companion found") {
		t.Fatalf("expected a no-companion error, got %q", result)
	}
}
