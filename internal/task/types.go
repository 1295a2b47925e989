// Package task implements the per-companion tick-driven task engine: a FIFO
// queue of finite-state-machine tasks, arrival-gated navigation, chunk
// keep-alive, and deterministic-or-LLM continuation firing.
package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/embercraft/companion/internal/companion"
	"github.com/embercraft/companion/internal/world"
)

// Status is a task's lifecycle state.
type Status int

const (
	Pending Status = iota
	Running
	Completed
	Failed
)

func (s Status) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Completed:
		return "COMPLETED"
	case Failed:
		return "FAILED"
	default:
		return "PENDING"
	}
}

// IsTerminal reports whether s is a terminal status.
func (s Status) IsTerminal() bool { return s == Completed || s == Failed }

const (
	// StuckTimeoutTicks bounds how long a task waits for arrival at a
	// waypoint before aborting that waypoint (≈3s at 20 ticks/second).
	StuckTimeoutTicks = 60
	// ToolCheckIntervalTicks is how often a block-breaking task verifies it
	// still holds a usable tool.
	ToolCheckIntervalTicks = 100
	// AnnounceIntervalTicks is how often the engine re-announces progress
	// for the active task.
	AnnounceIntervalTicks = 200
	// IdleKeepAliveTicks is how long the engine holds a chunk ticket after
	// going idle before releasing it.
	IdleKeepAliveTicks = 1200
	// NavigateReissueTicks is how often an in-progress task re-issues
	// navigation toward an unreached waypoint.
	NavigateReissueTicks = 10
)

// Env bundles everything a Task needs to observe and mutate the world on
// its own tick, without Task implementations importing the engine package
// directly.
type Env struct {
	Adapter   world.Adapter
	Companion *companion.Companion
	Entity    world.EntityID
	OwnerID   string
}

// Task is a finite-state machine encapsulating one physical-world activity.
// Start is called exactly once before the first Tick; Tick is called at
// most once per engine tick while Status() == Running; Cleanup is called
// exactly once after the task reaches a terminal status.
type Task interface {
	// Start and Tick never return an error: a task that cannot proceed
	// records its own failure via Base.Fail and the engine observes that
	// through Status(), not through a return value.
	Start(ctx context.Context, env *Env)
	Tick(ctx context.Context, env *Env)
	Cleanup(ctx context.Context, env *Env)

	Status() Status
	// ProgressPercent returns 0-100, or -1 if progress is indeterminate.
	ProgressPercent() int
	Name() string

	// FailureReason returns the reason the task failed, if Status() ==
	// Failed.
	FailureReason() string
	// Continuation returns the continuation to fire on completion or
	// failure, or nil if none is attached.
	Continuation() *Continuation
	// ID returns the task's unique identifier, for log correlation across
	// its Start/Tick/Cleanup lifecycle.
	ID() string
}

// Base is embedded by concrete Task implementations to provide the common
// status/progress bookkeeping every task needs.
type Base struct {
	id           string
	status       Status
	progress     int
	failReason   string
	continuation *Continuation
	ticksRunning int
}

// NewBase constructs a Base in Pending status with indeterminate progress,
// assigning it a unique ID (matching the teacher's practice of tagging
// every unit of agent work with a correlation ID — internal/agent/loop.go
// uses the same github.com/google/uuid for its turn/tool-call IDs).
func NewBase(cont *Continuation) Base {
	return Base{id: uuid.NewString(), status: Pending, progress: -1, continuation: cont}
}

func (b *Base) ID() string                  { return b.id }
func (b *Base) Status() Status              { return b.status }
func (b *Base) ProgressPercent() int        { return b.progress }
func (b *Base) FailureReason() string       { return b.failReason }
func (b *Base) Continuation() *Continuation { return b.continuation }

func (b *Base) setProgress(p int) {
	if p < 0 {
		b.progress = -1
		return
	}
	if p > 100 {
		p = 100
	}
	b.progress = p
}

func (b *Base) begin()              { b.status = Running }
func (b *Base) complete()           { b.status = Completed; b.progress = 100 }
func (b *Base) fail(reason string)  { b.status = Failed; b.failReason = reason }
func (b *Base) tickCount() int      { b.ticksRunning++; return b.ticksRunning }
