package task

import (
	"context"
	"fmt"

	"github.com/embercraft/companion/internal/world"
)

type gatherPhase int

const (
	phaseScanning gatherPhase = iota
	phaseNavigating
	phaseBreaking
	phaseDone
)

// blockGatherTask is the shared implementation behind ChopTrees, MineOres,
// and GatherBlocks: scan for matching blocks, navigate to each in distance
// order, break it under the standard safety invariants, and stop once the
// requested count has been collected.
type blockGatherTask struct {
	Base

	name         string
	targets      []world.BlockID
	radius       float64
	requiredTier world.ToolTier
	wantCount    int

	phase          gatherPhase
	queue          []world.Pos
	wp             *waypoint
	collected      int
	ticksSinceTool int
	warnedLowHP    bool
	failMessage    string
	announcer      Announcer
}

func newBlockGatherTask(name string, targets []world.BlockID, radius float64, tier world.ToolTier, count int, failMessage string, cont *Continuation, announcer Announcer) *blockGatherTask {
	return &blockGatherTask{
		Base:        NewBase(cont),
		name:        name,
		targets:     targets,
		radius:      radius,
		requiredTier: tier,
		wantCount:   count,
		failMessage: failMessage,
		announcer:   announcer,
	}
}

func (t *blockGatherTask) Name() string { return t.name }

func (t *blockGatherTask) Start(ctx context.Context, env *Env) {
	t.begin()
	t.phase = phaseScanning
	t.setProgress(0)
}

func (t *blockGatherTask) Tick(ctx context.Context, env *Env) {
	t.tickCount()

	switch t.phase {
	case phaseScanning:
		t.scan(ctx, env)
	case phaseNavigating:
		t.navigate(ctx, env)
	case phaseBreaking:
		t.breakTarget(ctx, env)
	}
}

func (t *blockGatherTask) scan(ctx context.Context, env *Env) {
	positions, err := env.Adapter.ScanForBlocks(ctx, env.Companion.Position, t.targets, t.radius, t.wantCount*4+8)
	if err != nil || len(positions) == 0 {
		if t.failMessage != "" {
			t.fail(t.failMessage)
		} else {
			t.fail(fmt.Sprintf("could not find any %s nearby", t.name))
		}
		return
	}
	t.queue = positions
	t.advanceToNextTarget()
}

func (t *blockGatherTask) advanceToNextTarget() {
	if len(t.queue) == 0 {
		if t.collected > 0 {
			t.complete()
		} else {
			if t.failMessage != "" {
				t.fail(t.failMessage)
			} else {
				t.fail(fmt.Sprintf("ran out of reachable %s", t.name))
			}
		}
		return
	}
	next := t.queue[0]
	t.queue = t.queue[1:]
	t.wp = newWaypoint(next)
	t.phase = phaseNavigating
}

func (t *blockGatherTask) navigate(ctx context.Context, env *Env) {
	switch t.wp.poll(ctx, env.Adapter, env.Entity, 4.5, 3.0) {
	case arrivalReached:
		t.phase = phaseBreaking
	case arrivalTimedOut:
		t.advanceToNextTarget()
	case arrivalPending:
		// Bounded per-tick work: one navigation dispatch at most, already
		// issued inside poll; no progress change this tick.
	}
}

func (t *blockGatherTask) breakTarget(ctx context.Context, env *Env) {
	t.ticksSinceTool++
	if t.ticksSinceTool >= ToolCheckIntervalTicks {
		t.ticksSinceTool = 0
		if ok, reason := ensureToolTier(ctx, env, t.requiredTier); !ok {
			t.fail(reason)
			return
		}
	}
	checkHealth(ctx, env, &t.warnedLowHP, t.announcer)
	if t.Status() == Failed {
		return
	}

	drops, ok, reason := breakBlockSafely(ctx, env, t.wp.target)
	if !ok {
		t.advanceToNextTarget()
		return
	}
	for _, d := range drops {
		env.Companion.Inventory.Add(d)
	}
	_ = reason
	t.collected++
	t.setProgress(min100(t.collected * 100 / max1(t.wantCount)))

	if t.collected >= t.wantCount {
		t.complete()
		return
	}
	t.advanceToNextTarget()
}

func (t *blockGatherTask) Cleanup(ctx context.Context, env *Env) {}

func min100(v int) int {
	if v > 100 {
		return 100
	}
	return v
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// NewChopTrees builds a task that fells targetCount logs of any of the
// given log block ids within radius blocks.
func NewChopTrees(logBlocks []world.BlockID, radius float64, targetCount int, cont *Continuation, announcer Announcer) Task {
	return newBlockGatherTask("ChopTrees", logBlocks, radius, world.TierNone, targetCount,
		"could not find any trees nearby", cont, announcer)
}

// NewMineOres builds a task that mines targetCount ore blocks, requiring at
// least requiredTier to succeed on any given block.
func NewMineOres(oreBlocks []world.BlockID, radius float64, requiredTier world.ToolTier, targetCount int, cont *Continuation, announcer Announcer) Task {
	return newBlockGatherTask("MineOres", oreBlocks, radius, requiredTier, targetCount,
		"Could not reach any ore blocks", cont, announcer)
}

// NewGatherBlocks builds a task that collects targetCount of the given
// generic blocks (sand, gravel, wool, etc.).
func NewGatherBlocks(blocks []world.BlockID, radius float64, targetCount int, cont *Continuation, announcer Announcer) Task {
	return newBlockGatherTask("GatherBlocks", blocks, radius, world.TierNone, targetCount,
		"", cont, announcer)
}
