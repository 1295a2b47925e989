package task

import (
	"context"

	"github.com/embercraft/companion/internal/world"
)

// StripMineTask digs a straight tunnel from an entrance position in a fixed
// direction, breaking the face block (and clearing a 1-high headroom block
// above it) every time the companion reaches the current face.
type StripMineTask struct {
	Base

	entrance  world.Pos
	direction world.Pos // unit step, e.g. {X:1}
	length    int

	dug            int
	wp             *waypoint
	ticksSinceTool int
	warnedLowHP    bool
	announcer      Announcer
}

// NewStripMine builds a strip-mine task digging length blocks from entrance
// along direction (expected to be a unit vector along one axis).
func NewStripMine(entrance, direction world.Pos, length int, cont *Continuation, announcer Announcer) *StripMineTask {
	return &StripMineTask{
		Base:      NewBase(cont),
		entrance:  entrance,
		direction: direction,
		length:    length,
		announcer: announcer,
	}
}

func (t *StripMineTask) Name() string { return "StripMine" }

func (t *StripMineTask) Start(ctx context.Context, env *Env) {
	t.begin()
	t.setProgress(0)
	t.wp = newWaypoint(t.facePos())
}

func (t *StripMineTask) facePos() world.Pos {
	return t.entrance.Add(world.Pos{
		X: t.direction.X * t.dug,
		Y: t.direction.Y * t.dug,
		Z: t.direction.Z * t.dug,
	})
}

func (t *StripMineTask) Tick(ctx context.Context, env *Env) {
	t.tickCount()

	switch t.wp.poll(ctx, env.Adapter, env.Entity, 4.0, 2.5) {
	case arrivalTimedOut:
		t.fail("Can't reach tunnel face")
		return
	case arrivalPending:
		return
	}

	t.ticksSinceTool++
	if t.ticksSinceTool >= ToolCheckIntervalTicks {
		t.ticksSinceTool = 0
		if ok, reason := ensureToolTier(ctx, env, world.TierStone); !ok {
			t.fail(reason)
			return
		}
	}
	checkHealth(ctx, env, &t.warnedLowHP, t.announcer)
	if t.Status() == Failed {
		return
	}

	face := t.facePos()
	headroom := face.Add(world.Pos{Y: 1})

	drops, ok, _ := breakBlockSafely(ctx, env, face)
	if ok {
		for _, d := range drops {
			env.Companion.Inventory.Add(d)
		}
	}
	if ok2, _, _ := breakBlockSafely(ctx, env, headroom); ok2 {
		// Headroom drops are typically stone/dirt and not worth tracking
		// separately from the face block's drops.
	}

	t.dug++
	t.setProgress(min100(t.dug * 100 / max1(t.length)))

	if t.dug >= t.length {
		t.complete()
		return
	}
	t.wp = newWaypoint(t.facePos())
}

func (t *StripMineTask) Cleanup(ctx context.Context, env *Env) {}
