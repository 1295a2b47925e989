package recipe

import (
	"errors"
	"fmt"

	"github.com/embercraft/companion/internal/world"
)

// ErrorKind enumerates the resolver's closed error set. Only Unknown ever
// surfaces to a caller; Cycle and
// DepthExceeded are internal signals the resolver converts to backtracking
// or, at the root, to Unknown.
type ErrorKind int

const (
	// KindCycle means the branch re-entered an item already on the current
	// resolution path; the resolver backtracks to the next variant.
	KindCycle ErrorKind = iota
	// KindUnknown means no resolution was possible for the item.
	KindUnknown
	// KindDepthExceeded means the recursion passed the depth cap (16);
	// treated identically to Unknown by the emitting branch.
	KindDepthExceeded
)

// ResolveError is the resolver's error value type. It is never panicked;
// callers receive it as a normal return value.
type ResolveError struct {
	Kind   ErrorKind
	Item   world.ItemID
	Advice string // populated for KindUnknown
}

func (e *ResolveError) Error() string {
	switch e.Kind {
	case KindCycle:
		return fmt.Sprintf("recipe: cycle detected resolving %s", e.Item)
	case KindDepthExceeded:
		return fmt.Sprintf("recipe: depth exceeded resolving %s", e.Item)
	default:
		if e.Advice != "" {
			return fmt.Sprintf("recipe: unknown item %s (%s)", e.Item, e.Advice)
		}
		return fmt.Sprintf("recipe: unknown item %s", e.Item)
	}
}

// IsUnknown reports whether err is a ResolveError carrying KindUnknown
// (possibly converted from KindDepthExceeded at the emitting branch).
func IsUnknown(err error) bool {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Kind == KindUnknown
	}
	return false
}

func cycleErr(item world.ItemID) *ResolveError {
	return &ResolveError{Kind: KindCycle, Item: item}
}

func depthExceededErr(item world.ItemID) *ResolveError {
	return &ResolveError{Kind: KindDepthExceeded, Item: item}
}

func unknownErr(item world.ItemID, advice string) *ResolveError {
	return &ResolveError{Kind: KindUnknown, Item: item, Advice: advice}
}
