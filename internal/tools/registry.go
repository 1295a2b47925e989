// Package tools implements the companion's callable tool surface: the
// gather/craft/smelt family that drives internal/task, inventory and
// container logistics, status queries, and social actions. The registry is
// grounded on the teacher's Name/Description/Schema/Execute tool shape
// (internal/tools/facts, internal/tools/websearch, etc. in the teacher
// repo), collapsed to a single plain-text return value to match
// llm.ToolExecutor's Execute signature.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/embercraft/companion/internal/llm"
	"github.com/embercraft/companion/internal/recipe"
	"github.com/embercraft/companion/internal/task"
)

// CompanionAccessor locates a companion's task environment and engine by
// owner id. The wiring layer (cmd/companion) is the only implementer; the
// registry never constructs a Env or Engine itself.
type CompanionAccessor interface {
	Env(ownerID string) (*task.Env, bool)
	Engine(ownerID string) (*task.Engine, bool)
	// Announcer returns the same task.Announcer the owner's Engine was
	// constructed with, so gather tasks queued directly by a tool (rather
	// than by the engine itself) can still emit low-health warnings through
	// the one channel back to the player.
	Announcer(ownerID string) (task.Announcer, bool)
}

// MemoryStore persists the memory tool's remembered facts. internal/persist
// implements this against sqlite; a Registry with no store set falls back
// to an in-process map (see newInProcessMemoryStore), which is fine for
// tests but loses everything on restart.
type MemoryStore interface {
	RememberFact(ctx context.Context, ownerID, fact string) error
	RecallFacts(ctx context.Context, ownerID string) ([]string, error)
	ForgetFact(ctx context.Context, ownerID string, index int) error
}

// ToolFunc is the shape every concrete tool implements. args is the
// already-decoded JSON object from the model's tool call; the return value
// is either plain text for the model to read, or one of the sentinel-
// prefixed strings (task.SentinelAsyncTask, task.SentinelCannotCraft)
// signaling an async task was queued or a plan could never be completed.
type ToolFunc func(ctx context.Context, reg *Registry, ownerID, companionName string, args map[string]any) string

type registeredTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          ToolFunc
}

// Registry holds every registered tool plus the collaborators tools need
// (companion lookup, recipe resolution, craft reentrancy guard) and
// implements llm.ToolExecutor so it can be wired directly into a
// llm.Dispatcher.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]*registeredTool

	accessor CompanionAccessor
	resolver *recipe.Resolver
	cfg      *llm.Configuration
	memory   MemoryStore

	craftGuard *reentryGuard
}

// NewRegistry builds an empty Registry bound to accessor and resolver. cfg
// may be nil, in which case every tool is considered enabled. The memory
// tool starts out backed by an in-process store; call SetMemoryStore to
// wire in internal/persist before RegisterDefaults runs.
func NewRegistry(accessor CompanionAccessor, resolver *recipe.Resolver, cfg *llm.Configuration) *Registry {
	return &Registry{
		tools:      make(map[string]*registeredTool),
		accessor:   accessor,
		resolver:   resolver,
		cfg:        cfg,
		memory:     newInProcessMemoryStore(),
		craftGuard: newReentryGuard(),
	}
}

// SetMemoryStore replaces the registry's memory backend. Passing nil resets
// it to a fresh in-process store.
func (r *Registry) SetMemoryStore(m MemoryStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m == nil {
		m = newInProcessMemoryStore()
	}
	r.memory = m
}

// Register adds name to the tool set. Re-registering the same name replaces
// it and keeps its original position in Schemas().
func (r *Registry) Register(name, description string, parameters map[string]any, fn ToolFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = &registeredTool{name: name, description: description, parameters: parameters, fn: fn}
}

// Has reports whether name is registered and currently enabled.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	_, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return r.toolEnabled(name)
}

// Schemas returns every enabled tool's schema, in registration order.
func (r *Registry) Schemas() []llm.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]llm.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		if !r.toolEnabled(name) {
			continue
		}
		t := r.tools[name]
		out = append(out, llm.ToolSchema{Name: t.name, Description: t.description, Parameters: t.parameters})
	}
	return out
}

// Execute decodes argsJSON and invokes the named tool, implementing
// llm.ToolExecutor. Errors never escape as a Go error: the model sees a
// plain "Error: ..." string and decides how to react, same as every other
// tool result.
func (r *Registry) Execute(ctx context.Context, ownerID, companionName, toolName, argsJSON string) string {
	r.mu.RLock()
	t, ok := r.tools[toolName]
	r.mu.RUnlock()
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q", toolName)
	}
	if !r.toolEnabled(toolName) {
		return fmt.Sprintf("Error: tool %q is disabled", toolName)
	}

	args := map[string]any{}
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return fmt.Sprintf("Error: could not parse arguments for %q: %v", toolName, err)
		}
	}
	return t.fn(ctx, r, ownerID, companionName, args)
}

func (r *Registry) toolEnabled(name string) bool {
	if r.cfg == nil {
		return true
	}
	return r.cfg.IsToolEnabled(name)
}

// ToolNames returns every registered name in registration order, for
// diagnostics and tests.
func (r *Registry) ToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]string(nil), r.order...)
	sort.Strings(out)
	return out
}

// envFor is a small convenience wrapper every tool implementation uses to
// fetch both the Env and Engine for ownerID, failing uniformly when the
// companion isn't found.
func (r *Registry) envFor(ownerID string) (*task.Env, *task.Engine, bool) {
	env, ok := r.accessor.Env(ownerID)
	if !ok {
		return nil, nil, false
	}
	eng, ok := r.accessor.Engine(ownerID)
	if !ok {
		return nil, nil, false
	}
	return env, eng, true
}

// announcerFor returns the owner's announcer, or a no-op one if the
// accessor has none registered (e.g. in tests that don't exercise
// low-health warnings).
func (r *Registry) announcerFor(ownerID string) task.Announcer {
	if a, ok := r.accessor.Announcer(ownerID); ok && a != nil {
		return a
	}
	return noopAnnouncer{}
}

type noopAnnouncer struct{}

func (noopAnnouncer) Announce(string, string) {}
