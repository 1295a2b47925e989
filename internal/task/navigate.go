package task

import (
	"context"

	"github.com/embercraft/companion/internal/world"
)

// waypoint tracks arrival-gating state for navigation toward a single
// target position: re-issue navigation periodically, and time out if the
// companion never arrives.
type waypoint struct {
	target      world.Pos
	ticksWaited int
}

func newWaypoint(target world.Pos) *waypoint {
	return &waypoint{target: target}
}

// arrivalResult is the outcome of one tick's arrival check.
type arrivalResult int

const (
	arrivalPending arrivalResult = iota
	arrivalReached
	arrivalTimedOut
)

// poll re-issues navigation every NavigateReissueTicks ticks and reports
// whether the companion has now arrived, is still en route, or has been
// stuck past StuckTimeoutTicks.
func (w *waypoint) poll(ctx context.Context, adapter world.Adapter, entity world.EntityID, speed, reachRadius float64) arrivalResult {
	inReach, err := adapter.IsInReach(ctx, entity, w.target, reachRadius)
	if err == nil && inReach {
		return arrivalReached
	}

	w.ticksWaited++
	if w.ticksWaited > StuckTimeoutTicks {
		return arrivalTimedOut
	}
	if w.ticksWaited%NavigateReissueTicks == 1 {
		_ = adapter.Navigate(ctx, entity, w.target, speed)
	}
	return arrivalPending
}
