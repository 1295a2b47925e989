package companion

import (
	"sync"

	"github.com/embercraft/companion/internal/world"
)

// Inventory is a bounded ordered list of slots, each holding at most
// MaxStackSize of one item.
type Inventory struct {
	mu    sync.Mutex
	slots []world.ItemStack // zero-value ItemStack (empty Item) means empty slot
}

// NewInventory builds an inventory with the given slot count.
func NewInventory(slots int) *Inventory {
	if slots <= 0 {
		slots = 36
	}
	return &Inventory{slots: make([]world.ItemStack, slots)}
}

// Add inserts stack into the inventory, filling existing same-item slots up
// to MaxStackSize before opening new ones. It returns whatever did not fit.
func (inv *Inventory) Add(stack world.ItemStack) world.ItemStack {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	remaining := stack.Count
	for i := range inv.slots {
		if remaining == 0 {
			break
		}
		if inv.slots[i].Item != stack.Item || inv.slots[i].Count == 0 {
			continue
		}
		room := MaxStackSize - inv.slots[i].Count
		if room <= 0 {
			continue
		}
		take := min(room, remaining)
		inv.slots[i].Count += take
		remaining -= take
	}
	for i := range inv.slots {
		if remaining == 0 {
			break
		}
		if inv.slots[i].Count != 0 {
			continue
		}
		take := min(MaxStackSize, remaining)
		inv.slots[i] = world.ItemStack{Item: stack.Item, Count: take}
		remaining -= take
	}
	return world.ItemStack{Item: stack.Item, Count: remaining}
}

// CountOf returns the total quantity of item held across all slots.
func (inv *Inventory) CountOf(item world.ItemID) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	total := 0
	for _, s := range inv.slots {
		if s.Item == item {
			total += s.Count
		}
	}
	return total
}

// Remove deducts up to count units of item, returning how many were
// actually removed.
func (inv *Inventory) Remove(item world.ItemID, count int) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	removed := 0
	for i := range inv.slots {
		if removed == count {
			break
		}
		if inv.slots[i].Item != item || inv.slots[i].Count == 0 {
			continue
		}
		take := min(inv.slots[i].Count, count-removed)
		inv.slots[i].Count -= take
		removed += take
		if inv.slots[i].Count == 0 {
			inv.slots[i] = world.ItemStack{}
		}
	}
	return removed
}

// Has reports whether the inventory holds at least count units of item.
func (inv *Inventory) Has(item world.ItemID, count int) bool {
	return inv.CountOf(item) >= count
}

// Snapshot returns a defensive copy of non-empty slots, for display or
// persistence.
func (inv *Inventory) Snapshot() []world.ItemStack {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := make([]world.ItemStack, 0, len(inv.slots))
	for _, s := range inv.slots {
		if s.Count > 0 {
			out = append(out, s)
		}
	}
	return out
}

// FreeSlots counts empty slots.
func (inv *Inventory) FreeSlots() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	n := 0
	for _, s := range inv.slots {
		if s.Count == 0 {
			n++
		}
	}
	return n
}
