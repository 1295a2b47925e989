package tools

import (
	"context"

	"github.com/embercraft/companion/internal/companion"
	"github.com/embercraft/companion/internal/llm"
	"github.com/embercraft/companion/internal/recipe"
	"github.com/embercraft/companion/internal/task"
	"github.com/embercraft/companion/internal/world"
)

// fakeAdapter is a minimal world.Adapter stub. scanResults lets a test
// preload what ScanForBlocks should report.
type fakeAdapter struct {
	scanResults []world.Pos
	scanErr     error
}

func (f *fakeAdapter) GetBlock(ctx context.Context, pos world.Pos) (world.BlockState, error) {
	return world.BlockState{Block: "minecraft:air"}, nil
}
func (f *fakeAdapter) SetBlock(ctx context.Context, pos world.Pos, state world.BlockState) error {
	return nil
}
func (f *fakeAdapter) DestroyBlock(ctx context.Context, pos world.Pos) ([]world.ItemStack, error) {
	return nil, nil
}
func (f *fakeAdapter) AdjacentFluidIsLava(ctx context.Context, pos world.Pos) (bool, error) {
	return false, nil
}
func (f *fakeAdapter) IsChunkLoaded(ctx context.Context, pos world.Pos) bool { return true }
func (f *fakeAdapter) AddChunkTicket(ctx context.Context, pos world.Pos, ttlTicks int) error {
	return nil
}
func (f *fakeAdapter) RemoveChunkTicket(ctx context.Context, pos world.Pos) error { return nil }
func (f *fakeAdapter) Navigate(ctx context.Context, entity world.EntityID, pos world.Pos, speed float64) error {
	return nil
}
func (f *fakeAdapter) IsInReach(ctx context.Context, entity world.EntityID, pos world.Pos, radius float64) (bool, error) {
	return true, nil
}
func (f *fakeAdapter) EquipBestToolForBlock(ctx context.Context, entity world.EntityID, state world.BlockState) error {
	return nil
}
func (f *fakeAdapter) ScanForBlocks(ctx context.Context, center world.Pos, targets []world.BlockID, radius float64, maxResults int) ([]world.Pos, error) {
	return f.scanResults, f.scanErr
}
func (f *fakeAdapter) InsertIntoContainer(ctx context.Context, pos world.Pos, stack world.ItemStack) (world.ItemStack, error) {
	return world.ItemStack{}, nil
}
func (f *fakeAdapter) ExtractFromContainer(ctx context.Context, pos world.Pos, predicate func(world.ItemID) bool, max int) ([]world.ItemStack, error) {
	return nil, nil
}
func (f *fakeAdapter) EntityHealthFraction(ctx context.Context, entity world.EntityID) (float64, error) {
	return 1.0, nil
}
func (f *fakeAdapter) EntityPosition(ctx context.Context, entity world.EntityID) (world.Pos, error) {
	return world.Pos{}, nil
}

type fakeKeeper struct{}

func (fakeKeeper) AddChunkTicket(ctx context.Context, pos world.Pos, ttlTicks int) error    { return nil }
func (fakeKeeper) RemoveChunkTicket(ctx context.Context, pos world.Pos) error               { return nil }

// fakeExecutor records every deterministic/LLM continuation fired by the
// engine, and optionally re-enters the registry's Execute method so a test
// can drive a full deterministic-chaining sequence exactly as the real
// llm.Dispatcher would.
type fakeExecutor struct {
	reg           *Registry
	ownerID       string
	companionName string

	deterministicCalls []string
	llmMessages        []string
}

func (e *fakeExecutor) ExecuteDeterministic(ownerID, toolName, argsJSON string) (string, bool) {
	e.deterministicCalls = append(e.deterministicCalls, toolName+"("+argsJSON+")")
	if e.reg == nil || !e.reg.Has(toolName) {
		return "", false
	}
	return e.reg.Execute(context.Background(), ownerID, e.companionName, toolName, argsJSON), true
}

func (e *fakeExecutor) ContinueWithLLM(ownerID, syntheticMessage string) {
	e.llmMessages = append(e.llmMessages, syntheticMessage)
}

type fakeAnnouncer struct {
	messages []string
}

func (a *fakeAnnouncer) Announce(ownerID, message string) {
	a.messages = append(a.messages, message)
}

// fakeAccessor is the CompanionAccessor used throughout this package's
// tests: a single fixed owner backed by one Env/Engine/Announcer triple.
type fakeAccessor struct {
	ownerID   string
	env       *task.Env
	engine    *task.Engine
	announcer *fakeAnnouncer
}

func (a *fakeAccessor) Env(ownerID string) (*task.Env, bool) {
	if ownerID != a.ownerID {
		return nil, false
	}
	return a.env, true
}

func (a *fakeAccessor) Engine(ownerID string) (*task.Engine, bool) {
	if ownerID != a.ownerID {
		return nil, false
	}
	return a.engine, true
}

func (a *fakeAccessor) Announcer(ownerID string) (task.Announcer, bool) {
	if ownerID != a.ownerID {
		return nil, false
	}
	return a.announcer, true
}

const testOwnerID = "owner-1"
const testCompanionName = "Bolt"

// newTestAccessorOnly builds the accessor/env/engine trio without a
// Registry, for tests that need to construct their own Registry with a
// non-default llm.Configuration.
func newTestAccessorOnly() (*fakeAdapter, *fakeAccessor) {
	adapter := &fakeAdapter{}
	comp := companion.New(testCompanionName, testOwnerID, world.EntityID("e1"), 36)
	env := &task.Env{Adapter: adapter, Companion: comp, Entity: comp.Entity, OwnerID: testOwnerID}
	announcer := &fakeAnnouncer{}
	executor := &fakeExecutor{ownerID: testOwnerID, companionName: testCompanionName}
	engine := task.NewEngine(env, fakeKeeper{}, executor, announcer)
	return adapter, &fakeAccessor{ownerID: testOwnerID, env: env, engine: engine, announcer: announcer}
}

// newTestRig builds a Registry wired to a single fake companion, plus the
// fakeExecutor the Engine will fire deterministic continuations through
// once it is told about the registry (setExecutor).
func newTestRig(resolver *recipe.Resolver) (*Registry, *fakeAccessor, *fakeAdapter, *fakeExecutor) {
	adapter := &fakeAdapter{}
	comp := companion.New(testCompanionName, testOwnerID, world.EntityID("e1"), 36)
	env := &task.Env{Adapter: adapter, Companion: comp, Entity: comp.Entity, OwnerID: testOwnerID}
	announcer := &fakeAnnouncer{}
	executor := &fakeExecutor{ownerID: testOwnerID, companionName: testCompanionName}
	engine := task.NewEngine(env, fakeKeeper{}, executor, announcer)

	accessor := &fakeAccessor{ownerID: testOwnerID, env: env, engine: engine, announcer: announcer}
	reg := NewRegistry(accessor, resolver, nil)
	RegisterDefaults(reg)
	executor.reg = reg
	return reg, accessor, adapter, executor
}

// testIndex mirrors recipe's own resolver_test fixture, scaled down to what
// this package's tests need: a one-log-deep crafting chain ending in a
// wooden pickaxe, plus a furnace smelt step.
func testIndex() *recipe.Index {
	variants := []recipe.Variant{
		{Kind: recipe.KindShaped, Result: "minecraft:oak_planks", Count: 4, Ingredients: []recipe.Ingredient{
			{Item: "minecraft:oak_log", Count: 1},
		}},
		{Kind: recipe.KindShaped, Result: "minecraft:stick", Count: 4, Ingredients: []recipe.Ingredient{
			{Tag: "minecraft:planks", Count: 2},
		}},
		{Kind: recipe.KindShaped, Result: "minecraft:wooden_pickaxe", Count: 1, Ingredients: []recipe.Ingredient{
			{Tag: "minecraft:planks", Count: 3},
			{Item: "minecraft:stick", Count: 2},
		}},
		{Kind: recipe.KindShaped, Result: "minecraft:iron_pickaxe", Count: 1, Ingredients: []recipe.Ingredient{
			{Item: "minecraft:iron_ingot", Count: 3},
			{Item: "minecraft:stick", Count: 2},
		}},
		{Kind: recipe.KindSmelt, Result: "minecraft:iron_ingot", Count: 1, SmeltInput: "minecraft:raw_iron"},
	}
	tags := map[world.TagKey][]world.ItemID{
		"minecraft:planks": {"minecraft:oak_planks", "minecraft:spruce_planks"},
	}
	return recipe.NewIndex(variants, tags)
}

func newTestResolver() *recipe.Resolver {
	return recipe.NewResolver(testIndex(), recipe.BuildOverrides(), recipe.NewClassifier(), 0)
}

var _ llm.ToolExecutor = (*Registry)(nil)
