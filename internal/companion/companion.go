// Package companion models the companion entity's durable state: inventory,
// equipped gear, tagged blocks, home area, and proactive-speech cooldowns.
// It owns no network or persistence concerns; those are reached through
// internal/persist.
package companion

import (
	"sync"

	"github.com/embercraft/companion/internal/world"
)

// MaxStackSize bounds every inventory slot.
const MaxStackSize = 64

// BehaviorMode governs how a companion reacts to its owner absent explicit
// task instructions.
type BehaviorMode int

const (
	Follow BehaviorMode = iota
	Stay
	Auto
	Guard
)

func (m BehaviorMode) String() string {
	switch m {
	case Stay:
		return "STAY"
	case Auto:
		return "AUTO"
	case Guard:
		return "GUARD"
	default:
		return "FOLLOW"
	}
}

// EquipSlot names a single equipped gear slot.
type EquipSlot int

const (
	SlotMainHand EquipSlot = iota
	SlotOffHand
	SlotHelmet
	SlotChestplate
	SlotLeggings
	SlotBoots
)

// BlockRole is the logistics role a TaggedBlock plays.
type BlockRole int

const (
	RoleInput BlockRole = iota
	RoleOutput
	RoleStorage
)

func (r BlockRole) String() string {
	switch r {
	case RoleInput:
		return "INPUT"
	case RoleOutput:
		return "OUTPUT"
	default:
		return "STORAGE"
	}
}

// TaggedBlock flags a block position with a logistics role. Its lifecycle is
// owned by the companion: created by the owner's wand, destroyed when the
// underlying block is broken or its role is cleared.
type TaggedBlock struct {
	Pos  world.Pos
	Role BlockRole
}

// Companion is the stable per-owner identity the rest of the core operates
// against. All mutation happens on the tick thread; see internal/task for
// the TaskEngine this struct embeds.
type Companion struct {
	mu sync.Mutex

	Name    string
	OwnerID string
	Entity  world.EntityID

	Inventory *Inventory
	Equipped  map[EquipSlot]world.ItemStack

	Position world.Pos
	Health   float64 // fraction in [0,1]
	Behavior BehaviorMode

	TaggedBlocks []TaggedBlock
	HomeArea     *world.Box // nil means no home-area restriction

	Chat *Chat
}

// New constructs a Companion with an empty bounded inventory and default
// behavior.
func New(name, ownerID string, entity world.EntityID, slots int) *Companion {
	return &Companion{
		Name:      name,
		OwnerID:   ownerID,
		Entity:    entity,
		Inventory: NewInventory(slots),
		Equipped:  make(map[EquipSlot]world.ItemStack),
		Behavior:  Follow,
		Chat:      NewChat(),
	}
}

// TagBlock records pos as playing role, replacing any existing tag there.
func (c *Companion) TagBlock(pos world.Pos, role BlockRole) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, tb := range c.TaggedBlocks {
		if tb.Pos == pos {
			c.TaggedBlocks[i].Role = role
			return
		}
	}
	c.TaggedBlocks = append(c.TaggedBlocks, TaggedBlock{Pos: pos, Role: role})
}

// UntagBlock removes any tag at pos.
func (c *Companion) UntagBlock(pos world.Pos) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, tb := range c.TaggedBlocks {
		if tb.Pos == pos {
			c.TaggedBlocks = append(c.TaggedBlocks[:i], c.TaggedBlocks[i+1:]...)
			return
		}
	}
}

// IsTagged reports whether pos carries any tag.
func (c *Companion) IsTagged(pos world.Pos) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tb := range c.TaggedBlocks {
		if tb.Pos == pos {
			return true
		}
	}
	return false
}

// BlocksWithRole returns every tagged position currently holding role.
func (c *Companion) BlocksWithRole(role BlockRole) []world.Pos {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []world.Pos
	for _, tb := range c.TaggedBlocks {
		if tb.Role == role {
			out = append(out, tb.Pos)
		}
	}
	return out
}

// InHomeArea reports whether pos falls inside the companion's protected
// home area. A nil HomeArea protects nothing.
func (c *Companion) InHomeArea(pos world.Pos) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.HomeArea != nil && c.HomeArea.Contains(pos)
}

// CanBreak reports whether the companion is permitted to break the block at
// pos: never inside HomeArea, never on a tagged block.
func (c *Companion) CanBreak(pos world.Pos) bool {
	return !c.InHomeArea(pos) && !c.IsTagged(pos)
}

// SetHealth stores the companion's current health fraction, clamped to
// [0, 1].
func (c *Companion) SetHealth(frac float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	c.Health = frac
}

// HealthFraction returns the last recorded health fraction.
func (c *Companion) HealthFraction() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Health
}
