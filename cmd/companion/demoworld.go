// The companion core only ever speaks to a host game through world.Adapter;
// it never owns a network connection or a block registry of its own. This
// binary is the reference harness the teacher's cmd/nexus played for the
// chat gateway: a small, self-contained stand-in host good enough to drive
// the dispatcher, task engine, and tool registry end to end from a
// terminal, not a production voxel-engine binding. A real mod/plugin host
// swaps demoWorld out for its own Adapter implementation; nothing else in
// this tree changes.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/embercraft/companion/internal/world"
)

// demoWorld is an in-memory world.Adapter: a sparse block map seeded with a
// handful of resource veins, one entity, and no real physics. Navigate
// "arrives" immediately; there is no tick-by-tick movement to simulate.
type demoWorld struct {
	mu sync.Mutex

	blocks map[world.Pos]world.BlockState
	pos    map[world.EntityID]world.Pos
	health map[world.EntityID]float64
	tags   map[world.Pos]int // chunk ticket refcount, keyed by a coarse region
}

func newDemoWorld() *demoWorld {
	w := &demoWorld{
		blocks: make(map[world.Pos]world.BlockState),
		pos:    make(map[world.EntityID]world.Pos),
		health: make(map[world.EntityID]float64),
		tags:   make(map[world.Pos]int),
	}
	w.seed()
	return w
}

// seed scatters a small resource field around the origin so gather/mine
// tools have something to find without a real chunk generator.
func (w *demoWorld) seed() {
	veins := []world.BlockID{"minecraft:oak_log", "minecraft:stone", "minecraft:iron_ore", "minecraft:coal_ore"}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 40; i++ {
		pos := world.Pos{X: r.Intn(40) - 20, Y: r.Intn(8) + 60, Z: r.Intn(40) - 20}
		w.blocks[pos] = world.BlockState{Block: veins[r.Intn(len(veins))]}
	}
}

func (w *demoWorld) GetBlock(_ context.Context, pos world.Pos) (world.BlockState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if state, ok := w.blocks[pos]; ok {
		return state, nil
	}
	return world.BlockState{Block: "minecraft:air"}, nil
}

func (w *demoWorld) SetBlock(_ context.Context, pos world.Pos, state world.BlockState) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.blocks[pos] = state
	return nil
}

func (w *demoWorld) DestroyBlock(_ context.Context, pos world.Pos) ([]world.ItemStack, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	state, ok := w.blocks[pos]
	if !ok {
		return nil, nil
	}
	delete(w.blocks, pos)
	return []world.ItemStack{{Item: world.ItemID(state.Block), Count: 1}}, nil
}

func (w *demoWorld) AdjacentFluidIsLava(_ context.Context, _ world.Pos) (bool, error) {
	return false, nil
}

func (w *demoWorld) IsChunkLoaded(_ context.Context, _ world.Pos) bool { return true }

func (w *demoWorld) AddChunkTicket(_ context.Context, pos world.Pos, _ int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tags[pos]++
	return nil
}

func (w *demoWorld) RemoveChunkTicket(_ context.Context, pos world.Pos) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tags[pos] > 0 {
		w.tags[pos]--
	}
	return nil
}

func (w *demoWorld) Navigate(_ context.Context, entity world.EntityID, pos world.Pos, _ float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pos[entity] = pos
	return nil
}

func (w *demoWorld) IsInReach(_ context.Context, entity world.EntityID, pos world.Pos, radius float64) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cur, ok := w.pos[entity]
	if !ok {
		return false, nil
	}
	return float64(cur.DistanceSq(pos)) <= radius*radius, nil
}

func (w *demoWorld) EquipBestToolForBlock(_ context.Context, _ world.EntityID, _ world.BlockState) error {
	return nil
}

func (w *demoWorld) ScanForBlocks(_ context.Context, center world.Pos, targets []world.BlockID, radius float64, maxResults int) ([]world.Pos, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	want := make(map[world.BlockID]bool, len(targets))
	for _, t := range targets {
		want[t] = true
	}
	var found []world.Pos
	for pos, state := range w.blocks {
		if !want[state.Block] {
			continue
		}
		if float64(center.DistanceSq(pos)) > radius*radius {
			continue
		}
		found = append(found, pos)
	}
	sort.Slice(found, func(i, j int) bool {
		return center.DistanceSq(found[i]) < center.DistanceSq(found[j])
	})
	if len(found) > maxResults {
		found = found[:maxResults]
	}
	return found, nil
}

func (w *demoWorld) InsertIntoContainer(_ context.Context, _ world.Pos, stack world.ItemStack) (world.ItemStack, error) {
	// No container storage simulated; everything "fits".
	return world.ItemStack{}, nil
}

func (w *demoWorld) ExtractFromContainer(_ context.Context, _ world.Pos, _ func(world.ItemID) bool, _ int) ([]world.ItemStack, error) {
	return nil, nil
}

func (w *demoWorld) EntityHealthFraction(_ context.Context, entity world.EntityID) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if h, ok := w.health[entity]; ok {
		return h, nil
	}
	return 1.0, nil
}

func (w *demoWorld) EntityPosition(_ context.Context, entity world.EntityID) (world.Pos, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pos[entity], nil
}

var _ world.Adapter = (*demoWorld)(nil)

func (w *demoWorld) describe() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fmt.Sprintf("%d blocks seeded", len(w.blocks))
}
