package task

import (
	"context"

	"github.com/embercraft/companion/internal/world"
)

// HuntMobTask stalks and kills a target mob type until enough drops have
// been collected.
//
// The core WorldAdapter has no entity-scanning primitive of its own, only
// ScanForBlocks; mob encounters are modeled as the blocks mobs spawn on or
// drop loot onto (spawner platforms, hostile-mob farm collection points)
// supplied by the caller as huntBlocks. This is a deliberate simplification
// of full entity tracking, left to the host's own mob AI once the companion
// is in range — the task only needs to get close enough and collect drops.
type HuntMobTask struct {
	Base

	huntBlocks []world.BlockID
	radius     float64
	wantCount  int

	phase          gatherPhase
	queue          []world.Pos
	wp             *waypoint
	collected      int
	ticksSinceTool int
	warnedLowHP    bool
	announcer      Announcer
}

// NewHuntMob builds a task that stands at up to targetCount mob encounter
// points (huntBlocks) within radius, letting combat resolve on the host side
// and collecting whatever drops land nearby.
func NewHuntMob(huntBlocks []world.BlockID, radius float64, targetCount int, cont *Continuation, announcer Announcer) *HuntMobTask {
	return &HuntMobTask{
		Base: NewBase(cont), huntBlocks: huntBlocks, radius: radius,
		wantCount: targetCount, announcer: announcer,
	}
}

func (t *HuntMobTask) Name() string { return "HuntMob" }

func (t *HuntMobTask) Start(ctx context.Context, env *Env) {
	t.begin()
	t.phase = phaseScanning
	t.setProgress(0)
}

func (t *HuntMobTask) Tick(ctx context.Context, env *Env) {
	t.tickCount()
	switch t.phase {
	case phaseScanning:
		positions, err := env.Adapter.ScanForBlocks(ctx, env.Companion.Position, t.huntBlocks, t.radius, t.wantCount*3+8)
		if err != nil || len(positions) == 0 {
			t.fail("no hostile mobs found nearby")
			return
		}
		t.queue = positions
		t.nextTarget()
	case phaseNavigating:
		switch t.wp.poll(ctx, env.Adapter, env.Entity, 5.0, 2.0) {
		case arrivalReached:
			t.phase = phaseBreaking
		case arrivalTimedOut:
			t.nextTarget()
		}
	case phaseBreaking:
		t.engage(ctx, env)
	}
}

func (t *HuntMobTask) nextTarget() {
	if len(t.queue) == 0 {
		if t.collected > 0 {
			t.complete()
		} else {
			t.fail("could not reach any hostile mobs")
		}
		return
	}
	pos := t.queue[0]
	t.queue = t.queue[1:]
	t.wp = newWaypoint(pos)
	t.phase = phaseNavigating
}

// engage lets one tick of host-side combat resolve, then sweeps the
// encounter point for drops via a container-style extraction the host engine
// is expected to surface at mob-death locations as an item cloud, modeled
// here as an immediate destroy-block drop collection.
func (t *HuntMobTask) engage(ctx context.Context, env *Env) {
	checkHealth(ctx, env, &t.warnedLowHP, t.announcer)
	if t.Status() == Failed {
		return
	}

	drops, err := env.Adapter.DestroyBlock(ctx, t.wp.target)
	if err != nil {
		t.nextTarget()
		return
	}
	for _, d := range drops {
		env.Companion.Inventory.Add(d)
	}

	t.collected++
	t.setProgress(min100(t.collected * 100 / max1(t.wantCount)))
	if t.collected >= t.wantCount {
		t.complete()
		return
	}
	t.nextTarget()
}

func (t *HuntMobTask) Cleanup(ctx context.Context, env *Env) {}
