// Command companion is the reference harness for the companion agent core:
// it wires internal/config, internal/observability, internal/persist,
// internal/llm, internal/recipe, internal/task, and internal/tools together
// against an in-memory demo world (see demoworld.go) and exposes a terminal
// chat loop. A production host (the voxel engine's own mod/plugin runtime)
// replaces demoWorld with its own world.Adapter and drives tickAll from its
// own server tick goroutine; everything else below is what that host wires
// up too.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/embercraft/companion/internal/chatcron"
	"github.com/embercraft/companion/internal/config"
	"github.com/embercraft/companion/internal/llm"
	"github.com/embercraft/companion/internal/llm/providers"
	"github.com/embercraft/companion/internal/observability"
	"github.com/embercraft/companion/internal/persist"
	"github.com/embercraft/companion/internal/recipe"
	"github.com/embercraft/companion/internal/tools"
)

func main() {
	configPath := flag.String("config", "", "path to companion.toml (defaults applied when omitted)")
	owner := flag.String("owner", "player1", "owner id to chat as in this session")
	companionName := flag.String("name", "Ember", "the companion's display name")
	tickInterval := flag.Duration("tick", 250*time.Millisecond, "simulated world-tick interval")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Observability.Level,
		Format: cfg.Observability.Format,
	})
	ctx := observability.WithCompanion(context.Background(), *companionName)
	logger.Info(ctx, "starting companion harness", "owner", *owner, "persist_path", cfg.Persist.Path)

	store, err := persist.Open(cfg.Persist.Path)
	if err != nil {
		logger.Error(ctx, "failed to open persist store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	demoAdapter := newDemoWorld()
	h := newHost(demoAdapter, store)

	variants, tagMembers := seedRecipes()
	index := recipe.NewIndex(variants, tagMembers)
	classifier := recipe.NewClassifier()
	overrides := recipe.BuildOverrides()
	resolver := recipe.NewResolver(index, overrides, classifier, 0)

	llmCfg := cfg.LLMConfiguration()
	if llmCfg.PrimaryURL != "" {
		// Validate clamps temperature/max_tokens/iterations/timeout into
		// range; it requires a primary URL, which a local-only harness run
		// legitimately omits, so it's only enforced once one is set.
		if err := llmCfg.Validate(); err != nil {
			logger.Error(ctx, "invalid ai configuration", "error", err)
			os.Exit(1)
		}
	}

	registry := tools.NewRegistry(h, resolver, &llmCfg)
	registry.SetMemoryStore(store)
	tools.RegisterDefaults(registry)

	var primary, fallback llm.Provider
	if llmCfg.PrimaryURL != "" {
		primary = providers.NewCloudProvider("primary", llmCfg.PrimaryURL, llmCfg.PrimaryKey, llmCfg.PrimaryModel)
	}
	if llmCfg.FallbackURL != "" {
		fallback = providers.NewCloudProvider("fallback", llmCfg.FallbackURL, llmCfg.FallbackKey, llmCfg.FallbackModel)
	}
	local := providers.NewLocalProvider(llmCfg.LocalURL, llmCfg.LocalModel, time.Duration(llmCfg.TimeoutMS)*time.Millisecond)

	dispatcher := llm.NewDispatcher(llmCfg, primary, fallback, local, registry, h, h, *companionName, nil)
	h.SetExecutor(dispatcher)

	scheduler := chatcron.New(chatcron.WithLogger(slog.Default()))
	if err := scheduler.AddAgingJob(cfg.ChatCron.AgingSchedule, h.ageChatCooldowns); err != nil {
		logger.Error(ctx, "failed to schedule cooldown aging", "error", err)
		os.Exit(1)
	}
	if err := scheduler.AddJob("persist-snapshot", cfg.ChatCron.PruneSchedule, func(jobCtx context.Context) error {
		h.persistAll(jobCtx)
		return nil
	}); err != nil {
		logger.Error(ctx, "failed to schedule persistence snapshots", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = scheduler.Stop(stopCtx)
	}()

	// Prime the owner's state before the tick loop and REPL both touch it.
	h.getOrCreate(ctx, *owner, *companionName)

	tickCtx, stopTicks := context.WithCancel(context.Background())
	defer stopTicks()
	go runTickLoop(tickCtx, h, *tickInterval)

	fmt.Printf("%s is ready. Type a message and press enter (Ctrl-D to quit).\n", *companionName)
	runChatREPL(ctx, dispatcher, *owner)

	h.persistAll(context.Background())
}

func runTickLoop(ctx context.Context, h *host, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.tickAll(ctx)
		}
	}
}

func runChatREPL(ctx context.Context, dispatcher *llm.Dispatcher, owner string) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		dispatcher.RunAgentLoop(ctx, owner, line)
	}
}
