package task

import (
	"context"

	"github.com/embercraft/companion/internal/world"
)

// FarmTask harvests mature crop blocks within an area and replants the seed
// immediately after breaking each one.
type FarmTask struct {
	Base

	cropBlocks []world.BlockID
	seedItem   world.ItemID
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

// NewFarm builds a task that harvests targetCount mature crops among
// cropBlocks, replanting seedItem after each harvest.
func NewFarm(cropBlocks []world.BlockID, seedItem world.ItemID, radius float64, targetCount int, cont *Continuation, announcer Announcer) *FarmTask {
	return &FarmTask{
		Base: NewBase(cont), cropBlocks: cropBlocks, seedItem: seedItem,
		radius: radius, wantCount: targetCount, announcer: announcer,
	}
}

func (t *FarmTask) Name() string { return "Farm" }

func (t *FarmTask) Start(ctx context.Context, env *Env) {
	t.begin()
	t.phase = phaseScanning
	t.setProgress(0)
}

func (t *FarmTask) Tick(ctx context.Context, env *Env) {
	t.tickCount()
	switch t.phase {
	case phaseScanning:
		positions, err := env.Adapter.ScanForBlocks(ctx, env.Companion.Position, t.cropBlocks, t.radius, t.wantCount*4+8)
		if err != nil || len(positions) == 0 {
			t.fail("no mature crops found nearby")
			return
		}
		t.queue = positions
		t.nextTarget()
	case phaseNavigating:
		switch t.wp.poll(ctx, env.Adapter, env.Entity, 4.5, 3.0) {
		case arrivalReached:
			t.phase = phaseBreaking
		case arrivalTimedOut:
			t.nextTarget()
		}
	case phaseBreaking:
		t.harvest(ctx, env)
	}
}

func (t *FarmTask) nextTarget() {
	if len(t.queue) == 0 {
		if t.collected > 0 {
			t.complete()
		} else {
			t.fail("could not reach any mature crops")
		}
		return
	}
	pos := t.queue[0]
	t.queue = t.queue[1:]
	t.wp = newWaypoint(pos)
	t.phase = phaseNavigating
}

func (t *FarmTask) harvest(ctx context.Context, env *Env) {
	checkHealth(ctx, env, &t.warnedLowHP, t.announcer)
	if t.Status() == Failed {
		return
	}

	pos := t.wp.target
	drops, ok, _ := breakBlockSafely(ctx, env, pos)
	if !ok {
		t.nextTarget()
		return
	}
	for _, d := range drops {
		env.Companion.Inventory.Add(d)
	}
	if env.Companion.Inventory.Remove(t.seedItem, 1) == 1 {
		_ = env.Adapter.SetBlock(ctx, pos, world.BlockState{Block: t.cropBlocks[0]})
	}

	t.collected++
	t.setProgress(min100(t.collected * 100 / max1(t.wantCount)))
	if t.collected >= t.wantCount {
		t.complete()
		return
	}
	t.nextTarget()
}

func (t *FarmTask) Cleanup(ctx context.Context, env *Env) {}
