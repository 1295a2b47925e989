package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/embercraft/companion/internal/companion"
	"github.com/embercraft/companion/internal/llm"
	"github.com/embercraft/companion/internal/persist"
	"github.com/embercraft/companion/internal/task"
	"github.com/embercraft/companion/internal/world"
)

// ownerState bundles everything the host keeps per owner: the companion's
// durable identity, its task engine, and its conversation history. One
// ownerState exists per player that has ever summoned a companion.
type ownerState struct {
	env     *task.Env
	engine  *task.Engine
	history []llm.Message
}

// host is the only CompanionAccessor/HistoryStore/Announcer implementation
// in this tree (per registry.go's doc comment) — it owns the owner→state
// map the tool registry and dispatcher both reach through, and prints
// companion speech to stdout for this terminal harness.
type host struct {
	mu       sync.Mutex
	owners   map[string]*ownerState
	adapter  world.Adapter
	store    *persist.Store
	executor task.ContinuationExecutor
}

func newHost(adapter world.Adapter, store *persist.Store) *host {
	return &host{owners: make(map[string]*ownerState), adapter: adapter, store: store}
}

// SetExecutor wires the dispatcher in as every future engine's
// ContinuationExecutor. It must be called before the first getOrCreate for
// a given owner, since an Engine's collaborators are fixed at construction.
func (h *host) SetExecutor(executor task.ContinuationExecutor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.executor = executor
}

// getOrCreate returns the owner's state, constructing a fresh companion (or
// restoring one from the persist store) the first time ownerID is seen.
func (h *host) getOrCreate(ctx context.Context, ownerID, companionName string) *ownerState {
	h.mu.Lock()
	defer h.mu.Unlock()

	if st, ok := h.owners[ownerID]; ok {
		return st
	}

	entity := world.EntityID(ownerID + "-companion")
	var c *companion.Companion
	if h.store != nil {
		if loaded, err := h.store.LoadCompanion(ctx, ownerID); err == nil {
			c = loaded
		}
	}
	if c == nil {
		c = companion.New(companionName, ownerID, entity, 36)
	}

	env := &task.Env{Adapter: h.adapter, Companion: c, Entity: entity, OwnerID: ownerID}
	// world.Adapter's method set already covers task.ChunkKeeper (AddChunkTicket,
	// RemoveChunkTicket), so the same adapter value serves both roles.
	engine := task.NewEngine(env, h.adapter, h.executor, h)

	st := &ownerState{env: env, engine: engine}
	h.owners[ownerID] = st
	return st
}

func (h *host) Env(ownerID string) (*task.Env, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.owners[ownerID]
	if !ok {
		return nil, false
	}
	return st.env, true
}

func (h *host) Engine(ownerID string) (*task.Engine, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.owners[ownerID]
	if !ok {
		return nil, false
	}
	return st.engine, true
}

func (h *host) Announcer(ownerID string) (task.Announcer, bool) {
	h.mu.Lock()
	_, ok := h.owners[ownerID]
	h.mu.Unlock()
	if !ok {
		return nil, false
	}
	return h, true
}

// Announce implements task.Announcer and llm.Announcer: both the task
// engine's progress/completion lines and the dispatcher's final assistant
// text come through here, printed to the terminal as the companion's voice.
func (h *host) Announce(ownerID, message string) {
	fmt.Printf("[%s's companion] %s\n", ownerID, message)
}

// History implements llm.HistoryStore.
func (h *host) History(ownerID string) []llm.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.owners[ownerID]
	if !ok {
		return nil
	}
	return append([]llm.Message(nil), st.history...)
}

// Append implements llm.HistoryStore.
func (h *host) Append(ownerID string, msg llm.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if st, ok := h.owners[ownerID]; ok {
		st.history = append(st.history, msg)
	}
}

// tickAll advances every owner's task engine by one tick. The host plays
// the role the voxel engine's server tick goroutine plays in production:
// the one caller allowed to touch world.Adapter (see world.Adapter's doc
// comment on the tick-goroutine boundary).
func (h *host) tickAll(ctx context.Context) {
	h.mu.Lock()
	engines := make([]*task.Engine, 0, len(h.owners))
	for _, st := range h.owners {
		engines = append(engines, st.engine)
	}
	h.mu.Unlock()
	for _, e := range engines {
		e.Tick(ctx)
	}
}

// ageChatCooldowns decrements every owner's chat cooldown table by one
// tick. Wired into internal/chatcron so cooldowns keep counting down even
// when no task tick is running.
func (h *host) ageChatCooldowns() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, st := range h.owners {
		st.env.Companion.Chat.Age()
	}
}

// persistAll snapshots every owner's companion state, best-effort.
func (h *host) persistAll(ctx context.Context) {
	if h.store == nil {
		return
	}
	h.mu.Lock()
	companions := make([]*companion.Companion, 0, len(h.owners))
	for _, st := range h.owners {
		companions = append(companions, st.env.Companion)
	}
	h.mu.Unlock()
	for _, c := range companions {
		_ = h.store.SaveCompanion(ctx, c)
	}
}
