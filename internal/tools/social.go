package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// inProcessMemoryStore is the zero-value MemoryStore: a per-owner fact list
// that disappears on restart. It exists so a Registry is usable without
// internal/persist wired in (tests, quick manual runs); production wiring
// calls SetMemoryStore with a *persist.Store instead.
type inProcessMemoryStore struct {
	mu    sync.Mutex
	facts map[string][]string
}

func newInProcessMemoryStore() *inProcessMemoryStore {
	return &inProcessMemoryStore{facts: make(map[string][]string)}
}

func (m *inProcessMemoryStore) RememberFact(_ context.Context, ownerID, fact string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facts[ownerID] = append(m.facts[ownerID], fact)
	return nil
}

func (m *inProcessMemoryStore) RecallFacts(_ context.Context, ownerID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.facts[ownerID]...), nil
}

func (m *inProcessMemoryStore) ForgetFact(_ context.Context, ownerID string, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	facts := m.facts[ownerID]
	if index < 0 || index >= len(facts) {
		return fmt.Errorf("no remembered note at index %d", index)
	}
	m.facts[ownerID] = append(facts[:index], facts[index+1:]...)
	return nil
}

// registerSocialTools registers memory and emote — the only two tools with
// no world-state footprint at all: memory persists a short note about the
// player for later recall, emote speaks an expressive line back through the
// announcer (the core WorldAdapter has no gesture/animation primitive, so
// emotes are modeled as chat the same way HuntMobTask models combat as a
// block-drop collection).
func registerSocialTools(r *Registry) {
	r.Register("memory",
		"Remembers or recalls short notes about the player, e.g. preferences or past requests.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"action": map[string]any{"type": "string", "description": "One of remember, recall, forget"},
				"fact":   map[string]any{"type": "string", "description": "The note to remember (required for action=remember)"},
				"index":  map[string]any{"type": "integer", "description": "Which remembered note to forget (required for action=forget)"},
			},
			"required": []string{"action"},
		},
		func(ctx context.Context, reg *Registry, ownerID, _ string, args map[string]any) string {
			action, _ := argString(args, "action")
			switch action {
			case "remember":
				fact, ok := argString(args, "fact")
				if !ok {
					return "Error: missing required argument \"fact\""
				}
				if err := reg.memory.RememberFact(ctx, ownerID, fact); err != nil {
					return fmt.Sprintf("Error: could not remember that: %v", err)
				}
				return "Remembered."
			case "recall":
				facts, err := reg.memory.RecallFacts(ctx, ownerID)
				if err != nil {
					return fmt.Sprintf("Error: could not recall notes: %v", err)
				}
				if len(facts) == 0 {
					return "Nothing remembered yet."
				}
				var b strings.Builder
				b.WriteString("Remembered notes:")
				for i, f := range facts {
					fmt.Fprintf(&b, "\n%d. %s", i, f)
				}
				return b.String()
			case "forget":
				index := argInt(args, "index", -1)
				if err := reg.memory.ForgetFact(ctx, ownerID, index); err != nil {
					return "Error: no remembered note at that index"
				}
				return "Forgotten."
			default:
				return fmt.Sprintf("Error: unknown memory action %q (expected remember, recall, or forget)", action)
			}
		},
	)

	r.Register("emote",
		"Expresses a short reaction through the companion (wave, nod, laugh, etc.).",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"gesture": map[string]any{"type": "string", "description": "The gesture to perform, e.g. wave, nod, laugh, shrug"},
			},
			"required": []string{"gesture"},
		},
		func(_ context.Context, reg *Registry, ownerID, companionName string, args map[string]any) string {
			gesture, ok := argString(args, "gesture")
			if !ok {
				return "Error: missing required argument \"gesture\""
			}
			reg.announcerFor(ownerID).Announce(ownerID, fmt.Sprintf("* %s %s *", companionName, gesture))
			return "Done."
		},
	)
}
