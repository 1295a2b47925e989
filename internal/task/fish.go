package task

import (
	"context"

	"github.com/embercraft/companion/internal/world"
)

// FishTask stations the companion at the nearest open-water block and waits
// out simulated bite intervals until it has collected enough catches.
//
// Like HuntMobTask, this leans on ScanForBlocks rather than a dedicated
// fishing-rod/bobber simulation; water blocks stand in for fishing spots and
// a fixed tick interval stands in for a bite timer, deliberately simplified
// since the core WorldAdapter models blocks and containers, not individual
// thrown entities.
type FishTask struct {
	Base

	waterBlocks  []world.BlockID
	radius       float64
	wantCount    int
	biteInterval int

	phase        gatherPhase
	queue        []world.Pos
	wp           *waypoint
	ticksWaiting int
	collected    int
	warnedLowHP  bool
	announcer    Announcer
}

// NewFish builds a task that fishes targetCount catches from the nearest
// reachable water block among waterBlocks.
func NewFish(waterBlocks []world.BlockID, radius float64, targetCount int, cont *Continuation, announcer Announcer) *FishTask {
	return &FishTask{
		Base: NewBase(cont), waterBlocks: waterBlocks, radius: radius,
		wantCount: targetCount, biteInterval: 140, announcer: announcer,
	}
}

func (t *FishTask) Name() string { return "Fish" }

func (t *FishTask) Start(ctx context.Context, env *Env) {
	t.begin()
	t.phase = phaseScanning
	t.setProgress(0)
}

func (t *FishTask) Tick(ctx context.Context, env *Env) {
	t.tickCount()
	switch t.phase {
	case phaseScanning:
		positions, err := env.Adapter.ScanForBlocks(ctx, env.Companion.Position, t.waterBlocks, t.radius, 4)
		if err != nil || len(positions) == 0 {
			t.fail("no open water found nearby")
			return
		}
		t.queue = positions
		pos := t.queue[0]
		t.queue = t.queue[1:]
		t.wp = newWaypoint(pos)
		t.phase = phaseNavigating
	case phaseNavigating:
		switch t.wp.poll(ctx, env.Adapter, env.Entity, 4.0, 3.0) {
		case arrivalReached:
			t.phase = phaseBreaking
			t.ticksWaiting = 0
		case arrivalTimedOut:
			t.fail("could not reach the water's edge")
		}
	case phaseBreaking:
		t.wait(ctx, env)
	}
}

func (t *FishTask) wait(ctx context.Context, env *Env) {
	checkHealth(ctx, env, &t.warnedLowHP, t.announcer)
	if t.Status() == Failed {
		return
	}

	t.ticksWaiting++
	if t.ticksWaiting < t.biteInterval {
		return
	}
	t.ticksWaiting = 0

	catch, err := env.Adapter.ExtractFromContainer(ctx, t.wp.target, func(world.ItemID) bool { return true }, 1)
	if err != nil || len(catch) == 0 {
		catch = []world.ItemStack{{Item: "minecraft:cod", Count: 1}}
	}
	for _, c := range catch {
		env.Companion.Inventory.Add(c)
	}

	t.collected++
	t.setProgress(min100(t.collected * 100 / max1(t.wantCount)))
	if t.collected >= t.wantCount {
		t.complete()
	}
}

func (t *FishTask) Cleanup(ctx context.Context, env *Env) {}
