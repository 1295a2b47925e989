package tools

import (
	"context"
	"strings"
	"testing"
)

func TestMemoryRememberAndRecall(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())

	if result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "memory", `{"action":"recall"}`); result != "Nothing remembered yet." {
		t.Fatalf("expected nothing remembered yet, got %q", result)
	}

	remembered := reg.Execute(context.Background(), testOwnerID, testCompanionName, "memory", `{"action":"remember","fact":"prefers oak over spruce"}`)
	if remembered != "Remembered." {
		t.Fatalf("expected confirmation, got %q", remembered)
	}

	recalled := reg.Execute(context.Background(), testOwnerID, testCompanionName, "memory", `{"action":"recall"}`)
	if !strings.Contains(recalled, "prefers oak over spruce") {
		t.Fatalf("expected the remembered fact back, got %q", recalled)
	}
}

func TestMemoryForgetByIndex(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	reg.Execute(context.Background(), testOwnerID, testCompanionName, "memory", `{"action":"remember","fact":"first"}`)
	reg.Execute(context.Background(), testOwnerID, testCompanionName, "memory", `{"action":"remember","fact":"second"}`)

	forgot := reg.Execute(context.Background(), testOwnerID, testCompanionName, "memory", `{"action":"forget","index":0}`)
	if forgot != "Forgotten." {
		t.Fatalf("expected confirmation, got %q", forgot)
	}
	recalled := reg.Execute(context.Background(), testOwnerID, testCompanionName, "memory", `{"action":"recall"}`)
	if strings.Contains(recalled, "first") || !strings.Contains(recalled, "second") {
		t.Fatalf("expected only the second fact to remain, got %q", recalled)
	}
}

func TestMemoryForgetOutOfRangeErrors(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "memory", `{"action":"forget","index":5}`)
	if !strings.HasPrefix(result, "Error:") {
		t.Fatalf("expected an out-of-range error, got %q", result)
	}
}

func TestMemoryUnknownActionErrors(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "memory", `{"action":"dance"}`)
	if !strings.HasPrefix(result, "Error:") {
		t.Fatalf("expected an unknown-action error, got %q", result)
	}
}

func TestEmoteAnnouncesGesture(t *testing.T) {
	reg, accessor, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "emote", `{"gesture":"wave"}`)
	if result != "Done." {
		t.Fatalf("expected confirmation, got %q", result)
	}
	if len(accessor.announcer.messages) == 0 {
		t.Fatalf("expected the gesture to be announced")
	}
	last := accessor.announcer.messages[len(accessor.announcer.messages)-1]
	if !strings.Contains(last, testCompanionName) || !strings.Contains(last, "wave") {
		t.Fatalf("expected the companion name and gesture in the announcement, got %q", last)
	}
}

func TestEmoteRequiresGesture(t *testing.T) {
	reg, _, _, _ := newTestRig(newTestResolver())
	result := reg.Execute(context.Background(), testOwnerID, testCompanionName, "emote", `{}`)
	if !strings.HasPrefix(result, "Error:") {
		t.Fatalf("expected a missing-argument error, got %q", result)
	}
}
