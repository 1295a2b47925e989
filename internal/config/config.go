// Package config loads the companion's TOML configuration file and
// translates it into the typed configuration structs each subsystem
// actually consumes (internal/llm, internal/persist, internal/chatcron,
// internal/observability).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// CurrentVersion is the latest supported configuration file version.
const CurrentVersion = 1

// VersionError describes a configuration version mismatch.
type VersionError struct {
	Version int
	Current int
	Reason  string
}

func (e *VersionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason == "newer than this build" {
		return fmt.Sprintf("config version %d is newer than this build (current: %d); upgrade the companion to continue", e.Version, e.Current)
	}
	return fmt.Sprintf("config version %d is %s (current: %d)", e.Version, e.Reason, e.Current)
}

// ValidateVersion ensures the provided config version is supported.
func ValidateVersion(version int) error {
	switch {
	case version <= 0:
		return &VersionError{Version: version, Current: CurrentVersion, Reason: "missing or outdated"}
	case version < CurrentVersion:
		return &VersionError{Version: version, Current: CurrentVersion, Reason: "outdated"}
	case version > CurrentVersion:
		return &VersionError{Version: version, Current: CurrentVersion, Reason: "newer than this build"}
	default:
		return nil
	}
}

// File is the root shape of companion.toml.
type File struct {
	Version       int                  `toml:"version"`
	AI            AISection            `toml:"ai"`
	Persist       PersistSection       `toml:"persist"`
	ChatCron      ChatCronSection      `toml:"chatcron"`
	Observability ObservabilitySection `toml:"observability"`
}

// AISection mirrors the [ai] family of tables, which together populate an
// llm.Configuration (see LLMConfiguration).
type AISection struct {
	Temperature                  float64  `toml:"temperature"`
	MaxTokens                    int      `toml:"max_tokens"`
	MaxToolIterations            int      `toml:"max_tool_iterations"`
	TimeoutMS                    int      `toml:"timeout_ms"`
	ProviderFailureCooldownTicks int      `toml:"provider_failure_cooldown_ticks"`
	BlockedCommands              []string `toml:"blocked_commands"`

	Cloud struct {
		URL   string `toml:"url"`
		Key   string `toml:"key"`
		Model string `toml:"model"`
	} `toml:"cloud"`

	CloudFallback struct {
		URL   string `toml:"url"`
		Key   string `toml:"key"`
		Model string `toml:"model"`
	} `toml:"cloud_fallback"`

	Local struct {
		URL   string `toml:"url"`
		Model string `toml:"model"`
	} `toml:"local"`
}

// PersistSection configures the sqlite-backed companion store.
type PersistSection struct {
	Path string `toml:"path"`
}

// ChatCronSection configures the wall-clock job scheduler that ages chat
// cooldowns and prunes stale memories while no Minecraft tick is running.
type ChatCronSection struct {
	AgingSchedule string `toml:"aging_schedule"`
	PruneSchedule string `toml:"prune_schedule"`
}

// ObservabilitySection configures structured logging.
type ObservabilitySection struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// defaults mirrors what a freshly-generated companion.toml would contain.
func defaults() File {
	f := File{Version: CurrentVersion}
	f.AI.Temperature = 0.7
	f.AI.MaxTokens = 1024
	f.AI.MaxToolIterations = 8
	f.AI.TimeoutMS = 30000
	f.AI.ProviderFailureCooldownTicks = 1200
	f.Persist.Path = "companion.db"
	f.ChatCron.AgingSchedule = "@every 1s"
	f.ChatCron.PruneSchedule = "@every 1h"
	f.Observability.Level = "info"
	f.Observability.Format = "text"
	return f
}

// Load reads and decodes path, expanding ${VAR} references against the
// process environment before parsing (so API keys never need to be
// committed to companion.toml), and applying defaults for anything the
// file leaves unset.
func Load(path string) (*File, error) {
	f := defaults()
	if path == "" {
		return &f, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(raw))
	if _, err := toml.Decode(expanded, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if f.Version == 0 {
		f.Version = CurrentVersion
	}
	if err := ValidateVersion(f.Version); err != nil {
		return nil, err
	}
	return &f, nil
}
