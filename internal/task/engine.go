package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/embercraft/companion/internal/world"
)

// ChunkKeeper holds and releases chunk tickets so a long-running task's
// location stays loaded even if the owner walks away.
type ChunkKeeper interface {
	AddChunkTicket(ctx context.Context, pos world.Pos, ttlTicks int) error
	RemoveChunkTicket(ctx context.Context, pos world.Pos) error
}

// ContinuationExecutor is implemented by the LLM dispatch layer and
// injected into the engine so task completion can fire continuations
// without this package importing the dispatcher or tool registry.
type ContinuationExecutor interface {
	// ExecuteDeterministic attempts to run toolName(argsJSON) directly on
	// the dispatcher's worker, bypassing the LLM. It returns the tool's
	// result text and whether the tool was found and its args parsed.
	ExecuteDeterministic(ownerID, toolName, argsJSON string) (resultText string, handled bool)
	// ContinueWithLLM enters a fresh agent loop seeded with the given
	// synthetic message.
	ContinueWithLLM(ownerID, syntheticMessage string)
}

// Announcer receives status lines the engine wants surfaced to the owner
// (task completion, failure, periodic progress).
type Announcer interface {
	Announce(ownerID, message string)
}

// pendingRetry is a deferred continuation invocation, scheduled in tick
// units so it survives game pauses.
type pendingRetry struct {
	continuation *Continuation
	result       string
	name         string
	attempt      int
	delayTicks   int
}

// Engine is the per-companion task scheduler.
type Engine struct {
	mu sync.Mutex

	env *Env

	queue  []Task
	active Task

	pending *pendingRetry

	chunkKeeper ChunkKeeper
	keepAlive   bool
	idleTicks   int
	lastChunk   world.Pos

	executor  ContinuationExecutor
	announcer Announcer

	ticksSinceAnnounce int
	lastAnnouncedPct   int

	tickCounter int
}

// NewEngine builds an Engine bound to env (the companion it drives) plus
// the chunk keeper, continuation executor, and announcer collaborators.
func NewEngine(env *Env, keeper ChunkKeeper, executor ContinuationExecutor, announcer Announcer) *Engine {
	return &Engine{
		env:              env,
		chunkKeeper:      keeper,
		executor:         executor,
		announcer:        announcer,
		lastAnnouncedPct: -1,
	}
}

// QueueTask appends task to the FIFO queue.
func (e *Engine) QueueTask(t Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = append(e.queue, t)
}

// QueueTaskFirst prepends task, giving it priority over whatever is queued.
func (e *Engine) QueueTaskFirst(t Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = append([]Task{t}, e.queue...)
}

// PeekActiveTask returns the currently running task, or nil.
func (e *Engine) PeekActiveTask() Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Ticks returns the number of Tick calls this engine has processed. Callers
// outside the tick thread (the tool registry's craft reentrancy guard) use
// this as a coarse clock for short expiries instead of wall-clock time,
// since a companion's tick rate is the only clock the rest of the system
// shares.
func (e *Engine) Ticks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickCounter
}

// GetQueueSize returns the number of tasks waiting behind the active one.
func (e *Engine) GetQueueSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// GetStatusSummary renders a one-line human summary of engine state.
func (e *Engine) GetStatusSummary() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		if len(e.queue) == 0 {
			return "idle, no tasks queued"
		}
		return fmt.Sprintf("idle, %d task(s) queued", len(e.queue))
	}
	pct := e.active.ProgressPercent()
	if pct < 0 {
		return fmt.Sprintf("running %s (progress indeterminate), %d queued", e.active.Name(), len(e.queue))
	}
	return fmt.Sprintf("running %s (%d%%), %d queued", e.active.Name(), pct, len(e.queue))
}

// CancelActive cancels only the active task; its Cleanup runs at the next
// tick boundary.
func (e *Engine) CancelActive(ctx context.Context) {
	e.mu.Lock()
	active := e.active
	e.active = nil
	e.mu.Unlock()
	if active != nil {
		active.Cleanup(ctx, e.env)
	}
}

// CancelAll cancels the active task and empties the queue.
func (e *Engine) CancelAll(ctx context.Context) {
	e.mu.Lock()
	active := e.active
	e.active = nil
	e.queue = nil
	e.pending = nil
	e.mu.Unlock()
	if active != nil {
		active.Cleanup(ctx, e.env)
	}
}

// SetPendingRetry schedules a deferred continuation invocation delayTicks
// from now.
func (e *Engine) SetPendingRetry(cont *Continuation, result, name string, attempt, delayTicks int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = &pendingRetry{continuation: cont, result: result, name: name, attempt: attempt, delayTicks: delayTicks}
}

// Tick runs one iteration of the engine's scheduling algorithm: finish a
// terminal active task, start the next queued task if idle, tick the active
// task, then service any pending retry and keep-alive bookkeeping.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	e.tickCounter++
	active := e.active
	e.mu.Unlock()

	if active != nil && active.Status().IsTerminal() {
		e.finishActive(ctx, active)
		e.mu.Lock()
		e.active = nil
		e.mu.Unlock()
		active = nil
	}

	e.mu.Lock()
	if e.active == nil && len(e.queue) > 0 {
		next := e.queue[0]
		e.queue = e.queue[1:]
		e.active = next
		e.ticksSinceAnnounce = 0
		e.lastAnnouncedPct = -1
		e.mu.Unlock()

		next.Start(ctx, e.env)
		e.beginKeepAlive(ctx)
		active = next
	} else {
		e.mu.Unlock()
	}

	if active != nil && active.Status() == Running {
		active.Tick(ctx, e.env)
		e.refreshKeepAlive(ctx)
		e.maybeAnnounce(active)
	}

	e.tickPendingRetry(ctx)
	e.maybeReleaseKeepAlive(ctx, active)
}

func (e *Engine) finishActive(ctx context.Context, t Task) {
	t.Cleanup(ctx, e.env)
	cont := t.Continuation()

	if t.Status() == Completed {
		if e.announcer != nil {
			e.announcer.Announce(e.env.OwnerID, fmt.Sprintf("Finished: %s", t.Name()))
		}
		if cont == nil {
			return
		}
		e.fireContinuation(cont, t.Name(), "", true)
		return
	}

	if cont == nil {
		if e.announcer != nil {
			e.announcer.Announce(e.env.OwnerID, fmt.Sprintf("Failed: %s (%s)", t.Name(), t.FailureReason()))
		}
		return
	}
	e.fireContinuation(cont, t.Name(), t.FailureReason(), false)
}

func (e *Engine) fireContinuation(cont *Continuation, taskName, failureReason string, success bool) {
	if e.executor == nil {
		return
	}
	if !success {
		// Failure always routes through the LLM, never back through a
		// deterministic tool call, so the model can choose a fallback.
		msg := cont.FailureMessage(taskName, failureReason)
		e.executor.ContinueWithLLM(cont.OwnerID, msg)
		return
	}

	if toolName, argsJSON, ok := ParseDeterministicCall(cont.NextSteps); ok {
		resultText, handled := e.executor.ExecuteDeterministic(cont.OwnerID, toolName, argsJSON)
		if handled {
			if e.announcer != nil {
				e.announcer.Announce(cont.OwnerID, fmt.Sprintf("[Task completed: %s → auto-continuing with %s] %s", taskName, toolName, resultText))
			}
			return
		}
	}
	msg := cont.SuccessMessage(taskName, "done")
	e.executor.ContinueWithLLM(cont.OwnerID, msg)
}

func (e *Engine) beginKeepAlive(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.keepAlive || e.chunkKeeper == nil {
		return
	}
	e.keepAlive = true
	e.idleTicks = 0
	e.lastChunk = e.env.Companion.Position
	_ = e.chunkKeeper.AddChunkTicket(ctx, e.lastChunk, IdleKeepAliveTicks)
}

func (e *Engine) refreshKeepAlive(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.keepAlive || e.chunkKeeper == nil {
		return
	}
	pos := e.env.Companion.Position
	if pos == e.lastChunk {
		return
	}
	old := e.lastChunk
	e.lastChunk = pos
	_ = e.chunkKeeper.AddChunkTicket(ctx, pos, IdleKeepAliveTicks)
	_ = e.chunkKeeper.RemoveChunkTicket(ctx, old)
}

func (e *Engine) maybeReleaseKeepAlive(ctx context.Context, active Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.keepAlive {
		return
	}
	if active != nil || e.pending != nil || len(e.queue) > 0 {
		e.idleTicks = 0
		return
	}
	e.idleTicks++
	if e.idleTicks < IdleKeepAliveTicks {
		return
	}
	if e.chunkKeeper != nil {
		_ = e.chunkKeeper.RemoveChunkTicket(ctx, e.lastChunk)
	}
	e.keepAlive = false
	e.idleTicks = 0
}

func (e *Engine) maybeAnnounce(active Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ticksSinceAnnounce++
	if e.ticksSinceAnnounce < AnnounceIntervalTicks {
		return
	}
	e.ticksSinceAnnounce = 0
	pct := active.ProgressPercent()
	if pct == e.lastAnnouncedPct {
		return
	}
	e.lastAnnouncedPct = pct
	if e.announcer != nil {
		if pct < 0 {
			e.announcer.Announce(e.env.OwnerID, fmt.Sprintf("%s: in progress", active.Name()))
		} else {
			e.announcer.Announce(e.env.OwnerID, fmt.Sprintf("%s: %d%%", active.Name(), pct))
		}
	}
}

func (e *Engine) tickPendingRetry(ctx context.Context) {
	e.mu.Lock()
	p := e.pending
	e.mu.Unlock()
	if p == nil {
		return
	}
	p.delayTicks--
	if p.delayTicks > 0 {
		return
	}
	e.mu.Lock()
	e.pending = nil
	e.mu.Unlock()
	if e.executor != nil {
		e.executor.ContinueWithLLM(p.continuation.OwnerID, p.continuation.SuccessMessage(p.name, p.result))
	}
}
