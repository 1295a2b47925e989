package task

import (
	"context"

	"github.com/embercraft/companion/internal/companion"
	"github.com/embercraft/companion/internal/world"
)

// TransferItemsTask moves a quantity of one item between two tagged
// positions: out of a source container (or the companion's own inventory if
// source is nil) and into a destination container (or the companion's own
// inventory if dest is nil).
type TransferItemsTask struct {
	Base

	source, dest *world.Pos
	item         world.ItemID
	count        int
	wp           *waypoint
	arrived      bool
	done         bool
}

// NewTransferItems builds a task moving count units of item from source to
// dest. Either pointer may be nil to mean "the companion's own inventory".
func NewTransferItems(source, dest *world.Pos, item world.ItemID, count int, cont *Continuation) *TransferItemsTask {
	return &TransferItemsTask{Base: NewBase(cont), source: source, dest: dest, item: item, count: count}
}

func (t *TransferItemsTask) Name() string { return "TransferItems" }

func (t *TransferItemsTask) Start(ctx context.Context, env *Env) {
	t.begin()
	t.setProgress(0)
	if t.source != nil {
		t.wp = newWaypoint(*t.source)
	} else if t.dest != nil {
		t.wp = newWaypoint(*t.dest)
	} else {
		t.arrived = true
	}
}

func (t *TransferItemsTask) Tick(ctx context.Context, env *Env) {
	t.tickCount()
	if t.done {
		return
	}
	if !t.arrived && t.wp != nil {
		switch t.wp.poll(ctx, env.Adapter, env.Entity, 4.0, 3.0) {
		case arrivalReached:
			t.arrived = true
		case arrivalTimedOut:
			t.fail("could not reach the container")
			return
		default:
			return
		}
	}

	var held []world.ItemStack
	if t.source != nil {
		held, _ = env.Adapter.ExtractFromContainer(ctx, *t.source, func(id world.ItemID) bool { return id == t.item }, t.count)
	} else {
		got := env.Companion.Inventory.Remove(t.item, t.count)
		if got > 0 {
			held = []world.ItemStack{{Item: t.item, Count: got}}
		}
	}
	total := 0
	for _, h := range held {
		total += h.Count
	}
	if total == 0 {
		t.fail("no " + string(t.item) + " available to transfer")
		t.done = true
		return
	}

	if t.dest != nil {
		for _, h := range held {
			remainder, err := env.Adapter.InsertIntoContainer(ctx, *t.dest, h)
			if err == nil && remainder.Count > 0 {
				env.Companion.Inventory.Add(remainder)
			}
		}
	} else {
		for _, h := range held {
			env.Companion.Inventory.Add(h)
		}
	}

	t.setProgress(100)
	t.done = true
	t.complete()
}

func (t *TransferItemsTask) Cleanup(ctx context.Context, env *Env) {}

// InteractContainerTask opens (navigates to) a tagged container and runs a
// single deposit or withdraw operation against it, used by the owner's
// direct container commands rather than autonomous logistics.
type InteractContainerTask struct {
	Base

	pos      world.Pos
	withdraw bool
	item     world.ItemID
	count    int
	wp       *waypoint
	done     bool
}

// NewInteractContainer builds a task that withdraws (withdraw=true) or
// deposits count units of item at pos.
func NewInteractContainer(pos world.Pos, withdraw bool, item world.ItemID, count int, cont *Continuation) *InteractContainerTask {
	return &InteractContainerTask{Base: NewBase(cont), pos: pos, withdraw: withdraw, item: item, count: count}
}

func (t *InteractContainerTask) Name() string { return "InteractContainer" }

func (t *InteractContainerTask) Start(ctx context.Context, env *Env) {
	t.begin()
	t.setProgress(0)
	t.wp = newWaypoint(t.pos)
}

func (t *InteractContainerTask) Tick(ctx context.Context, env *Env) {
	t.tickCount()
	if t.done {
		return
	}
	switch t.wp.poll(ctx, env.Adapter, env.Entity, 4.0, 3.0) {
	case arrivalTimedOut:
		t.fail("could not reach the container")
		t.done = true
		return
	case arrivalPending:
		return
	}

	if t.withdraw {
		stacks, err := env.Adapter.ExtractFromContainer(ctx, t.pos, func(id world.ItemID) bool { return id == t.item }, t.count)
		if err != nil || len(stacks) == 0 {
			t.fail("container has no " + string(t.item))
			t.done = true
			return
		}
		for _, s := range stacks {
			env.Companion.Inventory.Add(s)
		}
	} else {
		got := env.Companion.Inventory.Remove(t.item, t.count)
		if got == 0 {
			t.fail("no " + string(t.item) + " in inventory to deposit")
			t.done = true
			return
		}
		remainder, err := env.Adapter.InsertIntoContainer(ctx, t.pos, world.ItemStack{Item: t.item, Count: got})
		if err == nil && remainder.Count > 0 {
			env.Companion.Inventory.Add(remainder)
		}
	}

	t.setProgress(100)
	t.done = true
	t.complete()
}

func (t *InteractContainerTask) Cleanup(ctx context.Context, env *Env) {}

// FindAndFetchItemTask searches nearby STORAGE-tagged containers for an item
// before falling back to scanning the world for its source block, then
// brings up to count units back to the companion's own inventory.
type FindAndFetchItemTask struct {
	Base

	item         world.ItemID
	count        int
	searchBlocks []world.BlockID
	radius       float64

	storageLeft []world.Pos
	wp          *waypoint
	have        int
	phase       gatherPhase
	queue       []world.Pos
}

// NewFindAndFetchItem builds a task that tries STORAGE containers first,
// then scans for searchBlocks (e.g. ore blocks matching item) within radius.
func NewFindAndFetchItem(item world.ItemID, count int, searchBlocks []world.BlockID, radius float64, cont *Continuation) *FindAndFetchItemTask {
	return &FindAndFetchItemTask{Base: NewBase(cont), item: item, count: count, searchBlocks: searchBlocks, radius: radius}
}

func (t *FindAndFetchItemTask) Name() string { return "FindAndFetchItem" }

func (t *FindAndFetchItemTask) Start(ctx context.Context, env *Env) {
	t.begin()
	t.setProgress(0)
	t.storageLeft = env.Companion.BlocksWithRole(companion.RoleStorage)
	t.phase = phaseScanning
}

func (t *FindAndFetchItemTask) Tick(ctx context.Context, env *Env) {
	t.tickCount()
	if t.have >= t.count {
		t.complete()
		return
	}

	if t.wp != nil {
		switch t.wp.poll(ctx, env.Adapter, env.Entity, 4.0, 3.0) {
		case arrivalPending:
			return
		case arrivalTimedOut:
			t.wp = nil
		case arrivalReached:
			t.collectAtCurrent(ctx, env)
			t.wp = nil
			if t.have >= t.count {
				t.complete()
				return
			}
		}
	}

	if len(t.storageLeft) > 0 {
		pos := t.storageLeft[0]
		t.storageLeft = t.storageLeft[1:]
		t.wp = newWaypoint(pos)
		return
	}

	if t.phase == phaseScanning {
		positions, err := env.Adapter.ScanForBlocks(ctx, env.Companion.Position, t.searchBlocks, t.radius, t.count*4+8)
		if err != nil || len(positions) == 0 {
			t.fail("could not find " + string(t.item) + " in storage or nearby")
			return
		}
		t.queue = positions
		t.phase = phaseNavigating
	}
	if len(t.queue) == 0 {
		if t.have > 0 {
			t.complete()
		} else {
			t.fail("could not find " + string(t.item) + " in storage or nearby")
		}
		return
	}
	pos := t.queue[0]
	t.queue = t.queue[1:]
	t.wp = newWaypoint(pos)
}

func (t *FindAndFetchItemTask) collectAtCurrent(ctx context.Context, env *Env) {
	pos := t.wp.target
	if stacks, err := env.Adapter.ExtractFromContainer(ctx, pos, func(id world.ItemID) bool { return id == t.item }, t.count-t.have); err == nil && len(stacks) > 0 {
		for _, s := range stacks {
			env.Companion.Inventory.Add(s)
			t.have += s.Count
		}
		t.setProgress(min100(t.have * 100 / max1(t.count)))
		return
	}
	if drops, ok, _ := breakBlockSafely(ctx, env, pos); ok {
		for _, d := range drops {
			env.Companion.Inventory.Add(d)
			if d.Item == t.item {
				t.have += d.Count
			}
		}
		t.setProgress(min100(t.have * 100 / max1(t.count)))
	}
}

func (t *FindAndFetchItemTask) Cleanup(ctx context.Context, env *Env) {}
