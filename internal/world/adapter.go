package world

import "context"

// EntityID identifies the companion entity inside the host engine.
type EntityID string

// Adapter is the capability surface the companion core consumes from the
// host voxel engine. It intentionally says nothing about rendering, packet
// framing, the mod registry, or pathfinding internals — those stay on the
// other side of this interface.
//
// Every method must be safe to call only from the server tick goroutine;
// the core never calls Adapter from the LLM worker pool (see
// internal/llm for the boundary).
type Adapter interface {
	// GetBlock reads the block state at pos.
	GetBlock(ctx context.Context, pos Pos) (BlockState, error)

	// SetBlock writes a block state at pos.
	SetBlock(ctx context.Context, pos Pos, state BlockState) error

	// DestroyBlock breaks the block at pos and returns its drops.
	DestroyBlock(ctx context.Context, pos Pos) ([]ItemStack, error)

	// AdjacentFluidIsLava reports whether any of the six faces adjacent to
	// pos currently holds lava.
	AdjacentFluidIsLava(ctx context.Context, pos Pos) (bool, error)

	// IsChunkLoaded reports whether the chunk containing pos is loaded.
	IsChunkLoaded(ctx context.Context, pos Pos) bool

	// AddChunkTicket keeps the chunk containing pos loaded for ttl ticks.
	AddChunkTicket(ctx context.Context, pos Pos, ttlTicks int) error

	// RemoveChunkTicket releases a previously added chunk ticket.
	RemoveChunkTicket(ctx context.Context, pos Pos) error

	// Navigate asynchronously dispatches the entity toward pos at the given
	// speed. It returns immediately; arrival is observed via IsInReach.
	Navigate(ctx context.Context, entity EntityID, pos Pos, speed float64) error

	// IsInReach reports whether entity is within radius blocks of pos.
	IsInReach(ctx context.Context, entity EntityID, pos Pos, radius float64) (bool, error)

	// EquipBestToolForBlock swaps the entity's main hand to whichever
	// inventory item best suits breaking state, if any.
	EquipBestToolForBlock(ctx context.Context, entity EntityID, state BlockState) error

	// ScanForBlocks returns up to maxResults positions within radius of
	// center matching any of targets, sorted by ascending distance.
	ScanForBlocks(ctx context.Context, center Pos, targets []BlockID, radius float64, maxResults int) ([]Pos, error)

	// InsertIntoContainer attempts to insert stack into the container at
	// pos, returning whatever could not fit.
	InsertIntoContainer(ctx context.Context, pos Pos, stack ItemStack) (ItemStack, error)

	// ExtractFromContainer pulls up to max items matching predicate out of
	// the container at pos.
	ExtractFromContainer(ctx context.Context, pos Pos, predicate func(ItemID) bool, max int) ([]ItemStack, error)

	// EntityHealthFraction returns the entity's current health as a
	// fraction of max health, in [0, 1].
	EntityHealthFraction(ctx context.Context, entity EntityID) (float64, error)

	// EntityPosition returns the entity's current position.
	EntityPosition(ctx context.Context, entity EntityID) (Pos, error)
}
